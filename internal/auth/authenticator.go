// Package auth checks credentials and issues the bearer tokens that carry a
// login session.
package auth

import (
	"context"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"melhado-backend/internal/models"
)

//go:generate mockgen -source=authenticator.go -destination=authenticator_mock_test.go -package=auth

// UserFinder looks up accounts by email.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator is the credential check behind login. It waits Delay before
// answering, whatever the outcome, and gives no reason on failure.
type Authenticator struct {
	Users UserFinder
	Delay time.Duration
}

func NewAuthenticator(users UserFinder, delay time.Duration) *Authenticator {
	return &Authenticator{Users: users, Delay: delay}
}

// Authenticate returns the user on success. A cancelled context ends the
// wait early and fails the attempt.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*models.User, bool) {
	if a.Delay > 0 {
		timer := time.NewTimer(a.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("⚠️  Login for %s cancelled: %v", email, ctx.Err())
			return nil, false
		case <-timer.C:
		}
	}

	email = strings.TrimSpace(strings.ToLower(email))
	user, err := a.Users.GetUserByEmail(ctx, email)
	if err != nil {
		log.Printf("❌ User lookup failed for %s: %v", email, err)
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("❌ Invalid password for: %s", email)
		return nil, false
	}
	return user, true
}

// HashPassword hashes a password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
