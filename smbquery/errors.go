package smbquery

import (
	"errors"
	"strings"
)

var (
	ErrConnectionFailed = errors.New("smbquery: connection failed")
	ErrAuthFailed       = errors.New("smbquery: authentication failed")
	ErrSessionClosed    = errors.New("smbquery: session is closed")
	ErrNotMounted       = errors.New("smbquery: no share mounted")
)

// Error categories for classified SMB failures.
const (
	ErrorCategoryProtocol = "PROTOCOL"
	ErrorCategoryAuth     = "AUTH"
	ErrorCategoryNetwork  = "NETWORK"
	ErrorCategoryUnknown  = "UNKNOWN"
)

// ErrorClassification describes a classified SMB error.
type ErrorClassification struct {
	Category    string
	Message     string
	ShouldRetry bool
}

// ClassifyError sorts an SMB error into a category. The SMB library wraps
// NT status codes into plain error strings, so matching is textual.
func ClassifyError(err error) ErrorClassification {
	if err == nil {
		return ErrorClassification{Category: ErrorCategoryUnknown, Message: "no error"}
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "not supported") ||
		strings.Contains(errStr, "dialect") ||
		strings.Contains(errStr, "unsupported") {
		return ErrorClassification{
			Category:    ErrorCategoryProtocol,
			Message:     "SMB dialect or feature not supported by server",
			ShouldRetry: true,
		}
	}

	if strings.Contains(errStr, "logon failure") ||
		strings.Contains(errStr, "access denied") ||
		strings.Contains(errStr, "authentication") ||
		strings.Contains(errStr, "password") {
		return ErrorClassification{
			Category: ErrorCategoryAuth,
			Message:  "authentication rejected by server",
		}
	}

	if strings.Contains(errStr, "refused") ||
		strings.Contains(errStr, "unreachable") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "timed out") ||
		strings.Contains(errStr, "reset") {
		return ErrorClassification{
			Category:    ErrorCategoryNetwork,
			Message:     "network error talking to server",
			ShouldRetry: true,
		}
	}

	return ErrorClassification{Category: ErrorCategoryUnknown, Message: err.Error()}
}
