package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/yvoloshyn/contactsgo/internal/auth"
	"github.com/yvoloshyn/contactsgo/internal/domain"
	"github.com/yvoloshyn/contactsgo/internal/service"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type contextKey string

const userContextKey contextKey = "user"

// userFromContext returns the authenticated user set by Authenticate, or nil.
func userFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// credentialsFromRequest builds the ordered credential chain: Authorization
// bearer header first, then the access-token cookie, then the refresh-token
// cookie.
func credentialsFromRequest(r *http.Request) []service.Credential {
	creds := make([]service.Credential, 0, 3)

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		creds = append(creds, service.Credential{
			Scope: auth.ScopeAccess,
			Value: strings.TrimPrefix(header, "Bearer "),
		})
	}
	if c, err := r.Cookie(accessTokenCookie); err == nil {
		creds = append(creds, service.Credential{Scope: auth.ScopeAccess, Value: c.Value})
	}
	if c, err := r.Cookie(refreshTokenCookie); err == nil {
		creds = append(creds, service.Credential{Scope: auth.ScopeRefresh, Value: c.Value})
	}

	return creds
}

// Authenticate resolves the request identity through the credential chain.
// When resolution falls through to a refresh token, the freshly minted pair
// is re-issued as cookies before the request proceeds.
func Authenticate(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pair, err := sessions.Resolve(r.Context(), credentialsFromRequest(r))
			if err != nil {
				writeAppError(w, r, err)
				return
			}

			if pair != nil {
				setAuthCookies(w, pair)
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to the given roles. It must run after
// Authenticate.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := service.Authorize(userFromContext(r.Context()), roles...); err != nil {
				writeAppError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setAuthCookies mirrors a token pair into HttpOnly cookies so browser
// clients stay authenticated without handling tokens in script.
func setAuthCookies(w http.ResponseWriter, pair *domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		Expires:  pair.AccessTokenExpiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.RefreshToken,
		Path:     "/",
		Expires:  pair.RefreshTokenExpiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ContentTypeJSON enforces that requests with a body have Content-Type:
// application/json. Bodyless requests pass through regardless of method: a
// cookie-only POST (browser fetch without a body) sends no Content-Type.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ContentLength is -1 for chunked bodies; only a known-empty body skips the check.
		if r.ContentLength != 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string
	Environment    string
}

// CORS returns a middleware that sets Cross-Origin Resource Sharing headers.
// In development mode (or when AllowedOrigins contains "*"), a wildcard origin is used.
// In non-development modes, only the explicitly listed origins are allowed and the
// request Origin header is validated against the list.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowWildcard := cfg.Environment == "development"
	originSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowWildcard = true
		}
		originSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if allowWildcard {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin != "" {
				if _, ok := originSet[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Correlation-ID")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
