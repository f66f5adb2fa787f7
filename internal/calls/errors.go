package calls

import (
	"errors"
	"fmt"

	"callmodel/internal/diag"
	"callmodel/internal/lifetime"
	"callmodel/internal/source"
)

// ErrInvariant matches every *InvariantError via errors.Is.
var ErrInvariant = errors.New("call construction invariant violated")

// InvariantError rejects a snapshot before it is published.
type InvariantError struct {
	Code    diag.Code
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code.ID(), e.Message)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

func violation(code diag.Code, format string, args ...any) *InvariantError {
	return &InvariantError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the diagnostic code of a construction error, or
// diag.UnknownCode when err is not an *InvariantError.
func CodeOf(err error) diag.Code {
	var inv *InvariantError
	if errors.As(err, &inv) {
		return inv.Code
	}
	return diag.UnknownCode
}

// Report forwards a construction error to r at span and returns err unchanged.
// Stale tokens are reported as diag.SessClosed.
func Report(r diag.Reporter, span source.Span, err error) error {
	if err == nil || r == nil {
		return err
	}
	var inv *InvariantError
	switch {
	case errors.As(err, &inv):
		r.Report(inv.Code, diag.SevError, span, inv.Message, nil)
	case errors.Is(err, lifetime.ErrStale):
		r.Report(diag.SessClosed, diag.SevError, span, err.Error(), nil)
	default:
		r.Report(diag.UnknownCode, diag.SevError, span, err.Error(), nil)
	}
	return err
}

// checkToken verifies tok is live and shared by every owner.
func checkToken(tok *lifetime.Token, owners ...lifetime.Owner) error {
	if err := tok.AssertLive(); err != nil {
		return err
	}
	if !lifetime.Same(tok, owners...) {
		return violation(diag.CallTokenMismatch, "components are bound to different sessions")
	}
	return nil
}

// isNil reports whether v is the zero value of a pointer- or interface-typed S.
func isNil[S comparable](v S) bool {
	var zero S
	return v == zero
}
