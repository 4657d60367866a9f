// Package smbquery fetches security descriptors from remote SMB servers.
// It mounts a share and issues QUERY_INFO requests for the raw self-relative
// descriptor, which is then owned and interpreted by the secdesc package.
package smbquery

import (
	"context"
	"fmt"
	"net"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/medianexapp/go-smb2"

	"github.com/specterops/secdesc"
)

// Credentials holds the authentication material for an SMB session. NTHash
// takes precedence over Password when set.
type Credentials struct {
	Username string
	Password string
	Domain   string
	NTHash   []byte
}

// Logger receives debug traces from a session. The zero value of Session
// discards them.
type Logger interface {
	Debug(message string)
}

type nopLogger struct{}

func (nopLogger) Debug(string) {}

// Session is an authenticated connection to one SMB server with at most one
// share mounted at a time. It is safe for concurrent queries; Mount and
// Close serialize against them.
type Session struct {
	host    string
	port    int
	timeout time.Duration
	log     Logger

	mu           sync.Mutex
	conn         net.Conn
	session      *smb2.Session
	share        *smb2.Share
	currentShare string
}

// Option adjusts a session before it connects.
type Option func(*Session)

// WithPort overrides the default SMB port 445.
func WithPort(port int) Option {
	return func(s *Session) { s.port = port }
}

// WithTimeout bounds the TCP connect and authentication handshake.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithLogger routes debug traces to log.
func WithLogger(log Logger) Option {
	return func(s *Session) { s.log = log }
}

// Dial connects and authenticates to an SMB server. The context bounds the
// handshake; queries made later are bounded by the session timeout.
func Dial(ctx context.Context, host string, creds Credentials, opts ...Option) (*Session, error) {
	s := &Session{
		host:    host,
		port:    445,
		timeout: 30 * time.Second,
		log:     nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	address := net.JoinHostPort(s.host, fmt.Sprintf("%d", s.port))
	s.log.Debug(fmt.Sprintf("[>] Connecting to remote SMB server '%s'...", address))

	conn, err := net.DialTimeout("tcp", address, s.timeout)
	if err != nil {
		s.log.Debug(fmt.Sprintf("[NETWORK] Could not connect to '%s': %v", address, err))
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	dialer := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     creds.Username,
			Password: creds.Password,
			Domain:   creds.Domain,
			Hash:     creds.NTHash,
		},
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session, err := dialer.DialConn(dialCtx, conn, address)
	if err != nil {
		classification := ClassifyError(err)
		s.log.Debug(fmt.Sprintf("[%s] Authentication failed: %s", classification.Category, classification.Message))
		conn.Close()
		return nil, fmt.Errorf("%w: %s", ErrAuthFailed, classification.Message)
	}

	s.conn = conn
	s.session = session
	s.log.Debug(fmt.Sprintf("[+] Successfully authenticated to '%s' as '%s\\%s'!",
		s.host, creds.Domain, creds.Username))
	return s, nil
}

// Mount attaches the session to a share, unmounting any previous one.
func (s *Session) Mount(share string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ErrSessionClosed
	}
	if s.share != nil && s.currentShare == share {
		return nil
	}

	if s.share != nil {
		s.share.Umount()
		s.share = nil
		s.currentShare = ""
	}

	mounted, err := s.session.Mount(share)
	if err != nil {
		s.log.Debug(fmt.Sprintf("Could not mount share '%s': %v", share, err))
		return fmt.Errorf("mounting %q: %w", share, err)
	}

	s.share = mounted
	s.currentShare = share
	s.log.Debug(fmt.Sprintf("[+] Mounted share '%s'.", share))
	return nil
}

// infoFlags converts the package-independent selector into the request
// flags the SMB2 QUERY_INFO call expects; the wire values are identical.
func infoFlags(info secdesc.SecurityInformation) smb2.SecurityInformationRequestFlags {
	return smb2.SecurityInformationRequestFlags(info)
}

// QuerySecurity fetches the security descriptor of a file on the mounted
// share and returns it as an owned descriptor. Servers commonly refuse the
// SACL bits without extra privileges; use OwnerSecurityInformation |
// GroupSecurityInformation | DACLSecurityInformation for ordinary files.
func (s *Session) QuerySecurity(filePath string, info secdesc.SecurityInformation) (*secdesc.LocalBox[secdesc.SecurityDescriptor], error) {
	raw, err := s.QuerySecurityRaw(filePath, info)
	if err != nil {
		return nil, err
	}
	box, err := secdesc.NewFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("descriptor for %q: %w", filePath, err)
	}
	return box, nil
}

// QuerySecurityRaw fetches the raw self-relative descriptor blob.
func (s *Session) QuerySecurityRaw(filePath string, info secdesc.SecurityInformation) ([]byte, error) {
	s.mu.Lock()
	share := s.share
	s.mu.Unlock()
	if share == nil {
		return nil, ErrNotMounted
	}

	normalized := normalizePath(filePath)
	raw, err := share.SecurityInfoRaw(normalized, infoFlags(info))
	if err != nil {
		return nil, fmt.Errorf("querying security of %q: %w", filePath, err)
	}
	return raw, nil
}

// normalizePath converts slash-separated paths to the backslash form SMB2
// expects, relative to the share root.
func normalizePath(p string) string {
	cleaned := path.Clean("/" + strings.ReplaceAll(p, `\`, "/"))
	return strings.ReplaceAll(strings.TrimPrefix(cleaned, "/"), "/", `\`)
}

// Close unmounts, logs off and drops the TCP connection. Safe to call once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.share != nil {
		s.share.Umount()
		s.share = nil
	}
	if s.session != nil {
		s.session.Logoff()
		s.session = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.log.Debug("[+] SMB connection closed successfully.")
	return nil
}
