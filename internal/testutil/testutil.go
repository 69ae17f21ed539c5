// Package testutil provides shared helpers for tests that need a database.
package testutil

import (
	"context"
	"testing"

	"melhado-backend/internal/database"
	"melhado-backend/internal/models"
)

// DemoPassword is the password of the seeded demo accounts.
const DemoPassword = "demo123"

// NewTestStore creates an in-memory SQLite store with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *database.Store {
	t.Helper()

	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrating test store: %v", err)
	}

	s := database.NewStore(db)
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})
	return s
}

// NewSeededStore is NewTestStore plus the demo users, properties and
// documents.
func NewSeededStore(t *testing.T) *database.Store {
	t.Helper()

	s := NewTestStore(t)
	if err := database.SeedUsers(s.DB(), DemoPassword); err != nil {
		t.Fatalf("seeding users: %v", err)
	}
	if err := database.SeedDemoData(s.DB()); err != nil {
		t.Fatalf("seeding demo data: %v", err)
	}
	return s
}

// User fetches a seeded account by email.
func User(t *testing.T, s *database.Store, email string) *models.User {
	t.Helper()
	u, err := s.GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("loading user %s: %v", email, err)
	}
	return u
}

// PropertyByAddress fetches a seeded property.
func PropertyByAddress(t *testing.T, s *database.Store, address string) *models.Property {
	t.Helper()
	props, err := s.ListProperties(context.Background(), database.PropertyFilter{})
	if err != nil {
		t.Fatalf("listing properties: %v", err)
	}
	for i := range props {
		if props[i].Address == address {
			return &props[i]
		}
	}
	t.Fatalf("property %q not seeded", address)
	return nil
}

// StrPtr creates a pointer to a string.
func StrPtr(s string) *string {
	return &s
}
