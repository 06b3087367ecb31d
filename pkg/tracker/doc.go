// Package tracker maintains the append-only audit trail around the session
// core: session lifecycle events, authentication attempts (login,
// registration, password reset) and account-level actions.
//
// Writes are best-effort by contract. The tracker is invoked from the side
// of primary operations such as creating a session or logging a user in; a
// tracking failure must never turn a successful primary operation into a
// failed one. Record methods therefore return nothing; failures go to the
// logger.
//
// Reads (AuthHistory, FailedAttempts) do return errors: they are primary
// operations for their callers, typically an ops dashboard or a lockout
// policy.
package tracker
