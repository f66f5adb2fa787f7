package lifetime

// Owner is implemented by every snapshot bound to a Token.
type Owner interface {
	Token() *Token
}

// Assert panics with *StaleAccessError when owner's token is no longer live.
// Accessors call it before returning any value.
func Assert(owner Owner) {
	if err := Check(owner); err != nil {
		panic(err)
	}
}

// Check is the non-panicking form of Assert.
func Check(owner Owner) error {
	if owner == nil {
		return &StaleAccessError{}
	}
	return owner.Token().AssertLive()
}

// Valid returns v after asserting owner is live.
func Valid[T any](owner Owner, v T) T {
	Assert(owner)
	return v
}

// Same reports whether all owners share one token instance.
func Same(tok *Token, owners ...Owner) bool {
	for _, o := range owners {
		if o == nil {
			continue
		}
		if o.Token() != tok {
			return false
		}
	}
	return true
}
