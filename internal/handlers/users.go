package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"melhado-backend/internal/auth"
	"melhado-backend/internal/database"
	"melhado-backend/internal/models"
	"melhado-backend/pkg/utils"
)

type CreateUserResponse struct {
	Success bool                 `json:"success"`
	User    *models.UserResponse `json:"user,omitempty"`
	Message string               `json:"message,omitempty"`
}

// GetUsers lists accounts, optionally filtered by ?role=.
// Requires admin authentication
func GetUsers(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := models.Role(r.URL.Query().Get("role"))
		if role != "" && !role.IsValid() {
			utils.RespondError(w, http.StatusBadRequest, "Role must be 'client', 'landlord', or 'admin'")
			return
		}

		users, err := store.ListUsers(r.Context(), role)
		if err != nil {
			log.Printf("❌ Failed to list users: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list users")
			return
		}

		resp := make([]models.UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, users[i].ToUserResponse())
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

// CreateUser creates a new client, landlord or admin account.
// Requires admin authentication
func CreateUser(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("📥 REQUEST: POST /api/users - Create new user")

		var req models.CreateUserRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			log.Printf("❌ Invalid request body: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		req.Name = strings.TrimSpace(req.Name)

		// Validate required fields
		if req.Email == "" || req.Password == "" || req.Name == "" || req.Role == "" {
			log.Println("❌ Missing required fields")
			utils.RespondError(w, http.StatusBadRequest, "Email, password, name, and role are required")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			log.Printf("❌ Invalid email: %s", req.Email)
			utils.RespondError(w, http.StatusBadRequest, "Invalid email address")
			return
		}
		if !req.Role.IsValid() {
			log.Printf("❌ Invalid role: %s", req.Role)
			utils.RespondError(w, http.StatusBadRequest, "Role must be 'client', 'landlord', or 'admin'")
			return
		}

		log.Printf("   📧 Email: %s", req.Email)
		log.Printf("   👤 Name: %s", req.Name)
		log.Printf("   🔑 Role: %s", req.Role)

		log.Println("🔒 Hashing password...")
		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		now := time.Now().Unix()
		user := models.User{
			Email:     req.Email,
			Password:  hashedPassword,
			Name:      req.Name,
			Role:      req.Role,
			CreatedAt: now,
			UpdatedAt: now,
		}

		log.Println("💾 Inserting user into database...")
		if err := store.CreateUser(r.Context(), &user); err != nil {
			if errors.Is(err, database.ErrConflict) {
				log.Printf("❌ User already exists: %s", req.Email)
				utils.RespondError(w, http.StatusConflict, "User with this email already exists")
				return
			}
			log.Printf("❌ Database error: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Printf("✅ USER CREATED SUCCESSFULLY")
		log.Printf("   📧 Email: %s", user.Email)
		log.Printf("   👤 Name: %s", user.Name)
		log.Printf("   🔑 Role: %s", user.Role)
		log.Printf("   🆔 ID: %s", user.ID)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

		userResponse := user.ToUserResponse()
		utils.RespondJSON(w, http.StatusCreated, CreateUserResponse{
			Success: true,
			User:    &userResponse,
			Message: "User created successfully",
		})
	}
}
