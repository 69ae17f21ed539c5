package middleware

import (
	"context"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"melhado-backend/internal/access"
	"melhado-backend/internal/auth"
	"melhado-backend/internal/models"
	"melhado-backend/pkg/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

type UserClaims struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	SessionID string      `json:"-"`
}

// SessionChecker reports whether a login session is still live.
type SessionChecker interface {
	SessionExists(ctx context.Context, id string, now int64) (bool, error)
}

// bearerToken reads the Authorization header. With allowQuery it falls back
// to the token query parameter, which browsers need for websocket upgrades.
func bearerToken(r *http.Request, allowQuery bool) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			log.Printf("❌ Invalid authorization header format (parts: %d)", len(parts))
			return "", false
		}
		return parts[1], true
	}
	if !allowQuery {
		return "", false
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// Auth validates the bearer token and its session, then adds the user claims
// to the request context.
func Auth(tokens *auth.TokenManager, sessions SessionChecker) func(http.Handler) http.Handler {
	return authenticate(tokens, sessions, false)
}

// AuthWS is Auth for the websocket endpoint only: it also accepts ?token=.
func AuthWS(tokens *auth.TokenManager, sessions SessionChecker) func(http.Handler) http.Handler {
	return authenticate(tokens, sessions, true)
}

func authenticate(tokens *auth.TokenManager, sessions SessionChecker, allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r, allowQuery)
			if !ok {
				log.Printf("❌ No bearer token: %s %s", r.Method, r.URL.Path)
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				log.Printf("❌ Invalid token on %s %s: %v", r.Method, r.URL.Path, err)
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			live, err := sessions.SessionExists(r.Context(), claims.ID, time.Now().Unix())
			if err != nil {
				log.Printf("❌ Session lookup failed: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !live {
				log.Printf("❌ Session %s ended for %s", claims.ID, claims.Email)
				utils.RespondError(w, http.StatusUnauthorized, "Session expired")
				return
			}

			userClaims := UserClaims{
				UserID:    claims.UserID,
				Email:     claims.Email,
				Role:      claims.Role,
				SessionID: claims.ID,
			}
			ctx := context.WithValue(r.Context(), UserContextKey, userClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole middleware checks if user has one of the roles (must be used after Auth)
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims, ok := GetUserFromContext(r)
			if !ok {
				log.Println("❌ User claims not found in context")
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			if !slices.Contains(roles, userClaims.Role) {
				log.Printf("❌ Insufficient permissions: required %v, got %s", roles, userClaims.Role)
				utils.RespondError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission checks the role permission table (must be used after Auth).
// Row-level scope is left to the handler.
func RequirePermission(resource access.Resource, action access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims, ok := GetUserFromContext(r)
			if !ok {
				utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !access.HasPermission(userClaims.Role, resource, action, "") {
				log.Printf("❌ %s may not %s %s", userClaims.Role, action, resource)
				utils.RespondError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) (UserClaims, bool) {
	userClaims, ok := r.Context().Value(UserContextKey).(UserClaims)
	return userClaims, ok
}

// WithUser returns ctx carrying claims, for handler tests.
func WithUser(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
