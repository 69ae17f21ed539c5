package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know the bindvar for.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// driverFor maps a database URL to a driver name and DSN. postgres:// and
// postgresql:// go to lib/pq; sqlite://path, file: URIs and :memory: go to
// the embedded SQLite driver.
func driverFor(dbURL string) (string, string, error) {
	switch {
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return "postgres", dbURL, nil
	case strings.HasPrefix(dbURL, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dbURL, "sqlite://"), nil
	case strings.HasPrefix(dbURL, "file:"), dbURL == ":memory:":
		return "sqlite", dbURL, nil
	}
	return "", "", fmt.Errorf("unsupported database URL scheme: %s", dbURL[:min(12, len(dbURL))])
}

func Connect(dbURL string) (*sqlx.DB, error) {
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🔌 DATABASE CONNECTION ATTEMPT")
	log.Printf("   📍 Database URL length: %d characters", len(dbURL))

	driver, dsn, err := driverFor(dbURL)
	if err != nil {
		log.Printf("❌ %v", err)
		return nil, err
	}
	log.Printf("   📍 Driver: %s", driver)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	log.Println("🔄 Step 1: Attempting sqlx.Connect()...")
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ DATABASE CONNECTION FAILED AT sqlx.Connect()")
		log.Printf("   Error type: %T", err)
		log.Printf("   Error message: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("✅ Step 1 Complete: sqlx.Connect() succeeded")

	if driver == "sqlite" {
		log.Println("🔄 Step 2: Configuring SQLite...")
		// One connection: an in-memory database exists per connection, and
		// a single writer avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to run %s: %w", pragma, err)
			}
		}
		log.Println("✅ Step 2 Complete: WAL and foreign keys enabled")
	}

	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("✅ DATABASE CONNECTION SUCCESSFUL")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	return db, nil
}

// Migrate creates the schema. Every statement is idempotent and valid on
// both Postgres and SQLite.
func Migrate(db *sqlx.DB) error {
	migrations := []string{
		// Create users table
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL CHECK(role IN ('client', 'landlord', 'admin')),
			avatar TEXT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,

		// Login sessions, keyed by the token id
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,

		// Create properties table
		`CREATE TABLE IF NOT EXISTS properties (
			id TEXT PRIMARY KEY,
			landlord_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			assigned_inspector TEXT REFERENCES users(id) ON DELETE SET NULL,
			address TEXT NOT NULL,
			type TEXT NOT NULL CHECK(type IN ('house', 'flat', 'bungalow')),
			mot_status TEXT NOT NULL DEFAULT 'pending'
				CHECK(mot_status IN ('passed', 'failed', 'needs-review', 'pending', 'overdue')),
			next_due BIGINT,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_landlord_id ON properties(landlord_id)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_assigned_inspector ON properties(assigned_inspector)`,

		// Rooms in display order
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_property_id ON rooms(property_id, position)`,

		// Inspection record headers; summary columns are rewritten on every save
		`CREATE TABLE IF NOT EXISTS inspections (
			id TEXT PRIMARY KEY,
			property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			inspector_id TEXT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL
				CHECK(status IN ('in-progress', 'completed', 'submitted', 'approved', 'rejected')),
			overall_result TEXT NOT NULL CHECK(overall_result IN ('passed', 'failed', 'needs-review')),
			started_at BIGINT NOT NULL,
			completed_at BIGINT,
			submitted_at BIGINT,
			approved_by TEXT,
			approved_at BIGINT,
			rejection_reason TEXT,
			total_items INTEGER NOT NULL DEFAULT 0,
			completed_items INTEGER NOT NULL DEFAULT 0,
			ok_items INTEGER NOT NULL DEFAULT 0,
			fault_items INTEGER NOT NULL DEFAULT 0,
			action_needed_items INTEGER NOT NULL DEFAULT 0,
			critical_issues INTEGER NOT NULL DEFAULT 0,
			report_document_id TEXT,
			version INTEGER NOT NULL DEFAULT 1,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_property_id ON inspections(property_id, started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_inspector_id ON inspections(inspector_id, started_at DESC)`,

		// Checklist items; evidence variants stored as JSON text
		`CREATE TABLE IF NOT EXISTS inspection_items (
			id TEXT PRIMARY KEY,
			inspection_id TEXT NOT NULL REFERENCES inspections(id) ON DELETE CASCADE,
			room_id TEXT,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			input_type TEXT NOT NULL,
			required BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			value TEXT NOT NULL DEFAULT '',
			options TEXT NOT NULL DEFAULT '[]',
			priority TEXT NOT NULL,
			visual_evidence TEXT NOT NULL DEFAULT '{}',
			fixtures TEXT NOT NULL DEFAULT '{}',
			damage_or_wear TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inspection_items_inspection_id ON inspection_items(inspection_id, position)`,

		// Compliance documents and saved MOT reports
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
			inspection_id TEXT REFERENCES inspections(id) ON DELETE SET NULL,
			filename TEXT NOT NULL,
			original_name TEXT NOT NULL,
			url TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			uploaded_by TEXT NOT NULL,
			uploaded_at BIGINT NOT NULL,
			document_type TEXT NOT NULL,
			expiry_date BIGINT,
			epc_rating TEXT CHECK(epc_rating IS NULL OR epc_rating IN ('A', 'B', 'C', 'D', 'E', 'F', 'G')),
			epc_score INTEGER,
			access_roles TEXT NOT NULL DEFAULT '[]',
			tags TEXT NOT NULL DEFAULT '[]',
			file_size BIGINT NOT NULL DEFAULT 0,
			mime_type TEXT NOT NULL,
			is_archived BOOLEAN NOT NULL DEFAULT FALSE,
			version INTEGER NOT NULL DEFAULT 1,
			description TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_property_id ON documents(property_id)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_expiry_date ON documents(expiry_date)`,

		// Create notifications table
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type TEXT NOT NULL
				CHECK(type IN ('mot-due', 'inspection-complete', 'issue-flagged', 'document-expiry', 'system')),
			title TEXT NOT NULL,
			message TEXT NOT NULL,
			priority TEXT NOT NULL CHECK(priority IN ('low', 'medium', 'high')),
			action_url TEXT,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, created_at DESC)`,

		// Create FCM tokens table
		`CREATE TABLE IF NOT EXISTS fcm_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token TEXT NOT NULL UNIQUE,
			device_type TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fcm_tokens_user_id ON fcm_tokens(user_id)`,

		// Audit trail of inspection changes
		`CREATE TABLE IF NOT EXISTS inspection_history (
			id TEXT PRIMARY KEY,
			inspection_id TEXT NOT NULL REFERENCES inspections(id) ON DELETE CASCADE,
			action_type TEXT NOT NULL CHECK(action_type IN ('started', 'item_updated', 'media_attached',
				'room_added', 'room_removed', 'completed', 'submitted')),
			actor_id TEXT NOT NULL,
			actor_name TEXT NOT NULL,
			actor_role TEXT,
			previous_status TEXT,
			new_status TEXT,
			item_id TEXT,
			item_label TEXT,
			room_name TEXT,
			notes TEXT,
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inspection_history_inspection_id ON inspection_history(inspection_id, created_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	log.Println("✓ Database migrations completed")
	return nil
}

// Tables lists the schema's tables in creation order.
var Tables = []string{
	"users", "sessions", "properties", "rooms", "inspections", "inspection_items",
	"documents", "notifications", "fcm_tokens", "inspection_history",
}
