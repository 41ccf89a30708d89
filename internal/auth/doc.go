// Package auth provides authentication for grove-ledger.
//
// # Tokens
//
// Callers authenticate with JWT bearer tokens signed HS256 with the
// configured jwt_secret (at least 32 bytes). The verified "sub" claim is the
// caller identity; the ledger core treats it as opaque.
//
//	verifier, err := auth.NewJWTVerifier(secret)
//	token, err := verifier.Generate(userID, 30*24*time.Hour)
//	userID, err := verifier.Verify(token)
//
// # Request context
//
// HTTPAuthMiddleware validates the Authorization header on every request and
// attaches an AuthContext:
//
//	authCtx := auth.MustFromContext(r.Context())
//	callerID := authCtx.UserID
//
// The middleware does not consult the user store. A valid token for an
// identity with no user record still passes: registration is an
// authenticated operation, and several ledger operations are defined for
// unregistered callers. Role-based gates (for the admin surface) are applied
// by the handlers through the ledger service.
package auth
