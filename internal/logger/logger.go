// Package logger provides leveled console logging with optional file output.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"
)

// Logger writes leveled messages to stdout, with color support and an
// optional logfile that always receives the color-stripped text.
type Logger struct {
	debug       bool
	noColors    bool
	logfile     *os.File
	logfilePath string
	mu          sync.Mutex
}

// New creates a Logger. When logfilePath is non-empty the file is created,
// rotating to a numbered name if it already exists.
func New(debug, noColors bool, logfilePath string) *Logger {
	l := &Logger{
		debug:    debug,
		noColors: noColors,
	}

	if logfilePath != "" {
		l.openLogFile(logfilePath)
	}

	return l
}

// openLogFile opens a log file, handling rotation if the file exists.
func (l *Logger) openLogFile(path string) {
	finalPath := path

	if _, err := os.Stat(path); err == nil {
		// File exists, find a new name
		k := 1
		for {
			newPath := fmt.Sprintf("%s.%d", path, k)
			if _, err := os.Stat(newPath); os.IsNotExist(err) {
				finalPath = newPath
				break
			}
			k++
		}
	}

	dir := filepath.Dir(finalPath)
	if dir != "" && dir != "." {
		os.MkdirAll(dir, 0755)
	}

	file, err := os.Create(finalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create log file %s: %v\n", finalPath, err)
		return
	}

	l.logfile = file
	l.logfilePath = finalPath
	l.Debug("Writing logs to logfile: '" + finalPath + "'")
}

// Close closes the log file if one is open.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logfile != nil {
		l.logfile.Close()
		l.logfile = nil
	}
}

func timestamp() string {
	now := time.Now()
	return now.Format("2006-01-02 15:04:05") + fmt.Sprintf(".%03d", now.Nanosecond()/1e6)
}

// stripAnsiCodes removes ANSI escape codes from a string.
func stripAnsiCodes(s string) string {
	re := regexp.MustCompile(`\x1b\[[0-9;]+m`)
	return re.ReplaceAllString(s, "")
}

func (l *Logger) emit(tag, coloredTag, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := timestamp()
	noColorMessage := stripAnsiCodes(message)

	if l.noColors {
		fmt.Printf("[%s] [%s] %s\n", ts, tag, noColorMessage)
	} else {
		fmt.Printf("[%s] [%s] %s\n", ts, coloredTag, message)
	}

	l.writeToLogFile(fmt.Sprintf("[%s] [%s] %s", ts, tag, noColorMessage))
}

// Print prints a message without a level tag.
func (l *Logger) Print(message string) {
	l.emit("-----", "-----", message)
}

// Info logs a message at the INFO level.
func (l *Logger) Info(message string) {
	l.emit("info-", "\x1b[1;92minfo-\x1b[0m", message)
}

// Debug logs a message at the DEBUG level if debugging is enabled.
func (l *Logger) Debug(message string) {
	if !l.debug {
		return
	}
	l.emit("debug", "\x1b[1;93mdebug\x1b[0m", message)
}

// Warning logs a message at the WARNING level.
func (l *Logger) Warning(message string) {
	l.emit("warn-", "\x1b[1;95mwarn-\x1b[0m", message)
}

// Error logs a message at the ERROR level.
func (l *Logger) Error(message string) {
	l.emit("error", "\x1b[1;91merror\x1b[0m", message)
}

// writeToLogFile writes a message to the log file.
func (l *Logger) writeToLogFile(message string) {
	if l.logfile == nil {
		return
	}
	io.WriteString(l.logfile, message+"\n")
}
