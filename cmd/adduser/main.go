// Command adduser creates accounts directly in the database, for bootstrapping
// the first admin when demo seeding is off.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"melhado-backend/internal/auth"
	"melhado-backend/internal/database"
	"melhado-backend/internal/models"
)

var (
	email    string
	name     string
	role     string
	password string
)

var rootCmd = &cobra.Command{
	Use:          "adduser",
	Short:        "Create a user account",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}

		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return errors.New("DATABASE_URL environment variable not set")
		}
		if password == "" {
			password = os.Getenv("ADDUSER_PASSWORD")
		}
		user, err := newUser(email, name, role, password)
		if err != nil {
			return err
		}

		db, err := database.Connect(dbURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		log.Println("🔌 Connected to database")

		if err := database.Migrate(db); err != nil {
			return err
		}

		err = database.NewStore(db).CreateUser(cmd.Context(), user)
		if errors.Is(err, database.ErrConflict) {
			log.Printf("⚠️  User already exists: %s", user.Email)
			return nil
		}
		if err != nil {
			return err
		}
		log.Printf("✅ Created %s user: %s", user.Role, user.Email)
		return nil
	},
}

// newUser validates the flags and returns a user with a hashed password.
func newUser(email, name, role, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid --email is required")
	}
	r := models.Role(role)
	if !r.IsValid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}
	if len(password) < 8 {
		return nil, errors.New("password must be at least 8 characters (--password or ADDUSER_PASSWORD)")
	}
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	now := time.Now().Unix()
	return &models.User{
		Email:     email,
		Password:  hash,
		Name:      strings.TrimSpace(name),
		Role:      r,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func main() {
	rootCmd.Flags().StringVar(&email, "email", "", "account email")
	rootCmd.Flags().StringVar(&name, "name", "", "display name (defaults to the email's local part)")
	rootCmd.Flags().StringVar(&role, "role", string(models.RoleAdmin), "client, landlord or admin")
	rootCmd.Flags().StringVar(&password, "password", "", "initial password")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
