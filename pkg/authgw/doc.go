// Package authgw is the HTTP authentication gateway in front of the session
// core. It extracts a bearer credential from the Authorization header,
// delegates to session.Manager.Validate, and either rejects the request
// with a 401 or forwards it with the resolved identity in the request
// context.
//
// RequireAuth is a plain func(http.Handler) http.Handler, so it mounts on
// any router:
//
//	gw := authgw.New(sessionManager, authgw.WithLogger(log))
//
//	r := chi.NewRouter()
//	r.Group(func(r chi.Router) {
//	    r.Use(gw.RequireAuth)
//	    r.Get("/profile", profileHandler)
//	})
//
// Handlers read the identity back with UserIDFromContext and
// TokenFromContext. Both are request-scoped: nothing survives the request,
// and concurrent requests never observe each other's identity.
package authgw
