// Package lifetime bounds how long analysis snapshots may be read.
//
// Every value produced by call resolution references a Token owned by the
// analysis session that created it. The session invalidates the token when it
// ends; from that moment every accessor on every snapshot tied to the token
// fails with a StaleAccessError instead of returning data computed against a
// world that no longer exists.
//
// # Usage
//
//	tok := lifetime.NewToken("sema:main")
//	call := ... // snapshot storing tok
//	lifetime.Assert(call)  // ok
//	tok.Invalidate()
//	lifetime.Assert(call)  // panics with *StaleAccessError
//
// The liveness flag is atomic: invalidation performed on one goroutine is
// observed by every later accessor call on any goroutine.
package lifetime
