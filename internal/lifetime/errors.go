package lifetime

import (
	"errors"
	"fmt"
)

// ErrStale matches every *StaleAccessError via errors.Is.
var ErrStale = errors.New("stale analysis snapshot")

// StaleAccessError reports a read of a snapshot whose session already ended.
// It is a usage bug in the caller and never retryable.
type StaleAccessError struct {
	TokenID   uint64
	TokenName string
}

func (e *StaleAccessError) Error() string {
	if e.TokenName == "" {
		return fmt.Sprintf("access to snapshot of expired token #%d", e.TokenID)
	}
	return fmt.Sprintf("access to snapshot of expired token #%d (%s)", e.TokenID, e.TokenName)
}

func (e *StaleAccessError) Is(target error) bool {
	return target == ErrStale
}

// Recover converts a stale-access panic into an error. Other panics propagate.
//
//	func read(call calls.Call) (err error) {
//		defer lifetime.Recover(&err)
//		...
//	}
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if stale, ok := r.(*StaleAccessError); ok {
		*errp = stale
		return
	}
	panic(r)
}
