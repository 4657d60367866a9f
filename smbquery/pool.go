package smbquery

import (
	"context"
	"sync"
)

// Pool reuses authenticated sessions per host, so querying many files on
// the same server does not renegotiate SMB for each one.
type Pool struct {
	maxIdlePerHost int

	mu   sync.Mutex
	idle map[string][]*Session
}

// NewPool creates a Pool keeping at most maxIdlePerHost parked sessions per
// host.
func NewPool(maxIdlePerHost int) *Pool {
	if maxIdlePerHost < 1 {
		maxIdlePerHost = 1
	}
	return &Pool{
		maxIdlePerHost: maxIdlePerHost,
		idle:           make(map[string][]*Session),
	}
}

// Get returns a parked session for the host, or dials a new one.
func (p *Pool) Get(ctx context.Context, host string, creds Credentials, opts ...Option) (*Session, error) {
	p.mu.Lock()
	if conns := p.idle[host]; len(conns) > 0 {
		s := conns[len(conns)-1]
		p.idle[host] = conns[:len(conns)-1]
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	return Dial(ctx, host, creds, opts...)
}

// Put parks a session for reuse. Sessions over the per-host cap are closed
// instead.
func (p *Pool) Put(host string, s *Session) {
	if s == nil {
		return
	}
	p.mu.Lock()
	if len(p.idle[host]) < p.maxIdlePerHost {
		p.idle[host] = append(p.idle[host], s)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	s.Close()
}

// CloseAll closes every parked session.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	idle := p.idle
	p.idle = make(map[string][]*Session)
	p.mu.Unlock()

	for _, conns := range idle {
		for _, s := range conns {
			s.Close()
		}
	}
}
