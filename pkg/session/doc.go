// Package session implements dual-token session lifecycle management:
// issuing, validating, refreshing, expiring and revoking sessions backed by
// a tabular store.
//
// # Model
//
// Each session binds an opaque access token (short-lived) and refresh token
// (long-lived) to a user. Both tokens are 256-bit crypto/rand values and are
// unique across all live sessions. A session is live iff its row exists:
// expiry is enforced by deletion, not by a status flag, so an expired row
// still present in the store is treated as absent on the next read and
// purged there.
//
// Expired sessions are removed along two independent paths:
//
//   - lazily, inside Validate and Refresh, when an expired token is
//     presented (attacker/client-controlled timing);
//   - by the periodic sweep (StartSweep / CleanupExpired) for tokens that
//     are never presented again.
//
// Refresh rotates the pair: the replacement session is durably created
// before the old row is deleted, so a crash mid-rotation leaves the user
// with a valid session rather than none. The store offers no cross-row
// transactions; the transient two-live-sessions window is accepted.
//
// # Failure posture
//
// No operation propagates store errors to callers. Validate and Refresh
// return ErrSessionNotFound for every negative outcome, Delete and
// DeleteAllForUser degrade to false, CleanupExpired to zero. Operators get
// the distinguishing cause from the logs; callers deliberately do not.
// Lifecycle events emitted through the Recorder are best-effort in the same
// way.
//
// # Usage
//
//	manager := session.New(store,
//	    session.WithConfig(cfg),
//	    session.WithRecorder(tracker),
//	    session.WithLogger(log),
//	)
//
//	pair, err := manager.Create(ctx, userID, device)
//	userID, err := manager.Validate(ctx, pair.AccessToken)
//	pair, err = manager.Refresh(ctx, pair.RefreshToken, device)
//	manager.StartSweep(ctx)
package session
