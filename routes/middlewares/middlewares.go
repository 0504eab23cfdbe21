package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"

	"github.com/openpulse/openpulse/httpx"
)

// Authenticated rejects requests without a valid bearer token.
func Authenticated(tokenAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator(tokenAuth),
		).Handler(next)
	}
}

// AnonymousOnly rejects requests that already carry a valid token: logged-in
// users have no business registering or logging in again. Invalid or expired
// tokens are treated as anonymous.
func AnonymousOnly(tokenAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(jwtauth.Verifier(tokenAuth), anonymous).Handler(next)
	}
}

func anonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err == nil && token != nil {
			httpx.Status(w, r, http.StatusForbidden, "auth.anonymous_only", "already logged in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID extracts the authenticated user id from the request token, or ""
// when there is none worth trusting.
func UserID(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	id, _ := claims["user_id"].(string)
	return id
}
