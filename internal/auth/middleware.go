package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue uses any as the key type. If you use a plain string like
// "userID", ANY package that knows the string can read or shadow your value.
// A package-private type prevents collisions: only this package can create a
// key of type contextKey.
type contextKey string

const userIDKey contextKey = "userID"

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "token"

// RequireAuth is a middleware that enforces authentication on protected API
// routes.
//
// It reads the JWT from the session cookie, validates it, and stores the
// userID in the request context. If the token is missing or invalid, it
// returns 401 Unauthorized and stops the chain — the handler never runs, so
// no downstream work (database queries included) happens for anonymous
// requests.
//
// tokens may be nil when the server is started without a JWT secret; every
// protected route then answers 401, which is the fail-safe default.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity if a valid session is present but
// does NOT block the request if it's missing or invalid.
//
// The public generation endpoint uses this: anonymous visitors can generate
// content, while logged-in users get the request attributed to them for
// analytics. Handlers check via UserIDFromContext — ("", false) means
// anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			// Always continue — no 401 even without a token
			next.ServeHTTP(w, r)
		})
	}
}

// PageGate is the browser-navigation counterpart of RequireAuth. It applies
// the session policy to HTML page routes:
//
//   - unauthenticated visits to protected pages ("/" and "/dashboard")
//     redirect to /auth/login?redirectTo=<original path>
//   - authenticated visits to auth pages (/auth/login, /auth/signup)
//     redirect back to "/"
//   - API and static asset paths pass through untouched
//
// When auth is entirely unconfigured (tokens == nil), nobody can be
// authenticated, so protected pages still redirect to login — the fail-safe
// default — while API routes remain unaffected.
//
// Only GET requests are gated: redirects are a navigation concern, and
// rewriting a POST (login form submit, logout) into a redirect would break
// those flows.
func PageGate(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if r.Method != http.MethodGet || exemptFromGate(path) {
				next.ServeHTTP(w, r)
				return
			}

			authed := false
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				authed = true
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}

			isAuthPage := strings.HasPrefix(path, "/auth/")
			isProtected := path == "/" || strings.HasPrefix(path, "/dashboard")

			if isProtected && !authed {
				target := "/auth/login?redirectTo=" + url.QueryEscape(path)
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			if isAuthPage && authed {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// exemptFromGate reports whether a path is outside the gate's jurisdiction:
// API routes answer with JSON errors instead of redirects, and static assets
// are public.
func exemptFromGate(path string) bool {
	return strings.HasPrefix(path, "/api/") ||
		strings.HasPrefix(path, "/static/") ||
		path == "/favicon.ico"
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context.
//
// Returns ("", false) if the request is anonymous (no valid token present).
//
// Usage in handlers:
//
//	userID, ok := auth.UserIDFromContext(r.Context())
//	if !ok {
//	    // anonymous user
//	}
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// UserIDOrAnonymous returns the authenticated user's ID, or "anonymous" for
// requests without a session. Analytics events use this as the distinct ID.
func UserIDOrAnonymous(ctx context.Context) string {
	if id, ok := UserIDFromContext(ctx); ok {
		return id
	}
	return "anonymous"
}

// extractUserID reads the session cookie and validates it.
// Shared by RequireAuth, OptionalAuth, and PageGate.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if tokens == nil {
		return "", http.ErrNoCookie
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		// http.ErrNoCookie means the cookie isn't present — not an error,
		// just an anonymous request.
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
