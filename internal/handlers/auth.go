package handlers

import (
	"log"
	"net/http"
	"time"

	"melhado-backend/internal/access"
	"melhado-backend/internal/auth"
	"melhado-backend/internal/database"
	"melhado-backend/internal/middleware"
	"melhado-backend/internal/models"
	"melhado-backend/pkg/utils"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	OK    bool                 `json:"ok"`
	Token string               `json:"token,omitempty"`
	User  *models.UserResponse `json:"user,omitempty"`
}

// Login checks the credentials, persists a session and returns a bearer
// token for it. Failures carry no detail.
func Login(authn *auth.Authenticator, tokens *auth.TokenManager, store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.RespondJSON(w, http.StatusBadRequest, LoginResponse{OK: false})
			return
		}

		log.Printf("🔐 Login attempt for: %s", req.Email)

		user, ok := authn.Authenticate(r.Context(), req.Email, req.Password)
		if !ok {
			utils.RespondJSON(w, http.StatusUnauthorized, LoginResponse{OK: false})
			return
		}

		tokenString, claims, err := tokens.Issue(user)
		if err != nil {
			log.Printf("❌ Failed to create token: %v", err)
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}

		session := models.Session{
			ID:        claims.ID,
			UserID:    user.ID,
			CreatedAt: time.Now().Unix(),
			ExpiresAt: claims.ExpiresAt.Unix(),
		}
		if err := store.CreateSession(r.Context(), session); err != nil {
			log.Printf("❌ Failed to persist session: %v", err)
			utils.RespondJSON(w, http.StatusInternalServerError, LoginResponse{OK: false})
			return
		}

		userResponse := user.ToUserResponse()
		log.Printf("✅ Login successful: %s (%s)", user.Email, user.Role)

		utils.RespondJSON(w, http.StatusOK, LoginResponse{
			OK:    true,
			Token: tokenString,
			User:  &userResponse,
		})
	}
}

// Logout ends the caller's session. The token stops working immediately.
func Logout(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := store.DeleteSession(r.Context(), claims.SessionID); err != nil {
			log.Printf("❌ Failed to clear session for %s: %v", claims.Email, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to log out")
			return
		}

		log.Printf("👋 Logout: %s", claims.Email)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
	}
}

type AuthStatusResponse struct {
	OK          bool                 `json:"ok"`
	User        *models.UserResponse `json:"user"`
	Permissions []access.Permission  `json:"permissions"`
}

// GetAuthStatus returns the logged-in user and their permissions.
func GetAuthStatus(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := store.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			log.Printf("❌ User %s not found: %v", claims.UserID, err)
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userResponse := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusOK, AuthStatusResponse{
			OK:          true,
			User:        &userResponse,
			Permissions: access.PermissionsFor(user.Role),
		})
	}
}

type NavigationResponse struct {
	View        access.View       `json:"view"`
	Screen      access.Screen     `json:"screen"`
	Menu        []access.MenuItem `json:"menu"`
	Permissions []string          `json:"permissions"`
}

// GetNavigation resolves ?view= to the screen the caller's role sees, with
// the sidebar menu and permission labels for the settings page.
func GetNavigation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		requested := access.View(r.URL.Query().Get("view"))
		if requested == "" {
			requested = access.ViewDashboard
		}
		view, screen, ok := access.Resolve(claims.Role, requested)
		if !ok {
			utils.RespondError(w, http.StatusForbidden, "Unknown role")
			return
		}

		var labels []string
		for _, p := range access.PermissionsFor(claims.Role) {
			for _, a := range p.Actions {
				labels = append(labels, access.PermissionLabel(p.Resource, a))
			}
		}

		utils.RespondJSON(w, http.StatusOK, NavigationResponse{
			View:        view,
			Screen:      screen,
			Menu:        access.Menu(claims.Role),
			Permissions: labels,
		})
	}
}
