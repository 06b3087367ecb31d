// Package lockout implements a failed-login guard: failures per key (an
// email, an IP) are counted within a fixed window, and callers deny
// further attempts once the count crosses the configured threshold.
//
// It complements tracker.FailedAttempts: the tracker gives the durable
// audit view, this package gives the cheap hot-path counter the login
// handler consults on every attempt.
//
//	guard := lockout.New(lockout.NewRedisStore(client))
//
//	if !guard.Allowed(ctx, email) {
//	    // reject before touching credentials
//	}
//	// on failed password check:
//	guard.RecordFailure(ctx, email)
//	// on success:
//	guard.Reset(ctx, email)
package lockout
