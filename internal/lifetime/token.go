package lifetime

import (
	"fmt"
	"sync/atomic"
)

var globalTokens uint64

// Token is the validity guard shared by all snapshots of one analysis session.
type Token struct {
	id      uint64
	name    string
	expired atomic.Bool
}

// NewToken creates a live token. name is only used in error messages.
func NewToken(name string) *Token {
	return &Token{
		id:   atomic.AddUint64(&globalTokens, 1),
		name: name,
	}
}

// ID returns a process-unique token number.
func (t *Token) ID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Name returns the session label given at creation.
func (t *Token) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// IsLive reports whether snapshots bound to t may still be read.
// A nil token is never live.
func (t *Token) IsLive() bool {
	return t != nil && !t.expired.Load()
}

// AssertLive returns a *StaleAccessError once t has been invalidated.
func (t *Token) AssertLive() error {
	if t.IsLive() {
		return nil
	}
	return &StaleAccessError{TokenID: t.ID(), TokenName: t.Name()}
}

// Invalidate ends the token's lifetime. It reports whether this call performed
// the transition; repeated calls are no-ops.
func (t *Token) Invalidate() bool {
	if t == nil {
		return false
	}
	return t.expired.CompareAndSwap(false, true)
}

func (t *Token) String() string {
	state := "live"
	if !t.IsLive() {
		state = "expired"
	}
	return fmt.Sprintf("token#%d(%s, %s)", t.ID(), t.Name(), state)
}
