package models

import "time"

// Role is one of the three dashboard audiences.
type Role string

const (
	RoleClient   Role = "client" // inspector
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// AllRoles lists every role, used as the default access list for documents
// everyone may see.
var AllRoles = []Role{RoleClient, RoleLandlord, RoleAdmin}

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string  `json:"id" db:"id"`
	Email     string  `json:"email" db:"email"`
	Password  string  `json:"-" db:"password"` // Never return password in JSON
	Name      string  `json:"name" db:"name"`
	Role      Role    `json:"role" db:"role"`
	Avatar    *string `json:"avatar,omitempty" db:"avatar"`
	CreatedAt int64   `json:"created_at" db:"created_at"`
	UpdatedAt int64   `json:"updated_at" db:"updated_at"`
}

type UserResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Role         Role    `json:"role"`
	Avatar       *string `json:"avatar,omitempty"`
	CreatedAt    int64   `json:"created_at"`
	CreatedAtIso string  `json:"created_at_iso"`
}

func (u *User) ToUserResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Avatar:       u.Avatar,
		CreatedAt:    u.CreatedAt,
		CreatedAtIso: time.Unix(u.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}

// CreateUserRequest is the admin payload for adding an account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// Session is a persisted login. Logging out deletes the row, which
// invalidates the token carrying its id.
type Session struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}
