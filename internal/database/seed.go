package database

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
)

// SeedUsers creates the three demo accounts, all with the given password.
func SeedUsers(db *sqlx.DB, password string) error {
	// Check if users already exist
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding demo users...")

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	users := []map[string]interface{}{
		{"email": "client@demo.com", "name": "John Inspector", "role": models.RoleClient},
		{"email": "landlord@demo.com", "name": "Sarah Property", "role": models.RoleLandlord},
		{"email": "admin@demo.com", "name": "Mike Admin", "role": models.RoleAdmin},
	}

	for _, user := range users {
		user["id"] = uuid.New().String()
		user["password"] = string(hash)
		user["created_at"] = now
		user["updated_at"] = now

		query := `
			INSERT INTO users (id, email, password, name, role, created_at, updated_at)
			VALUES (:id, :email, :password, :name, :role, :created_at, :updated_at)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			return err
		}
		log.Printf("  ✓ Created user: %s (%s)", user["email"], user["role"])
	}

	log.Println("✓ Successfully seeded demo users")
	log.Printf("  📧 Inspector: client@demo.com / %s", password)
	log.Printf("  📧 Landlord:  landlord@demo.com / %s", password)
	log.Printf("  📧 Admin:     admin@demo.com / %s", password)
	return nil
}

type demoDocument struct {
	Type        models.DocumentType
	File        string
	Expiry      string
	EPCRating   string
	EPCScore    int
	AccessRoles []models.Role
}

type demoProperty struct {
	Address   string
	Type      inspection.PropertyType
	Status    models.MOTStatus
	Inspector bool
	Rooms     []models.RoomRequest
	Documents []demoDocument
}

var demoProperties = []demoProperty{
	{
		Address:   "123 Main St, London SW1A 1AA",
		Type:      inspection.PropertyHouse,
		Status:    models.MOTPassed,
		Inspector: true,
		Rooms: []models.RoomRequest{
			{Name: "Kitchen", Type: inspection.RoomKitchen},
			{Name: "Living Room", Type: inspection.RoomLivingRoom},
			{Name: "Bedroom 1", Type: inspection.RoomBedroom},
			{Name: "Bedroom 2", Type: inspection.RoomBedroom},
			{Name: "Bathroom", Type: inspection.RoomBathroom},
			{Name: "Hallway", Type: inspection.RoomHallway},
		},
		Documents: []demoDocument{
			{Type: models.DocEPCCertificate, File: "epc-certificate-main-st.pdf", Expiry: "2033-01-15", EPCRating: "B", EPCScore: 82},
			{Type: models.DocGasSafety, File: "gas-safety-main-st.pdf", Expiry: "2025-01-15"},
			{Type: models.DocElectricalReport, File: "electrical-report-main-st.pdf", Expiry: "2024-06-15"},
		},
	},
	{
		Address: "456 Oak Ave, Manchester M1 1AA",
		Type:    inspection.PropertyFlat,
		Status:  models.MOTNeedsReview,
		Rooms: []models.RoomRequest{
			{Name: "Kitchen", Type: inspection.RoomKitchen},
			{Name: "Living Room", Type: inspection.RoomLivingRoom},
			{Name: "Bedroom", Type: inspection.RoomBedroom},
			{Name: "Bathroom", Type: inspection.RoomBathroom},
		},
		Documents: []demoDocument{
			{Type: models.DocEPCCertificate, File: "epc-certificate-oak-ave.pdf", Expiry: "2032-03-10", EPCRating: "C", EPCScore: 68},
			{Type: models.DocGasSafety, File: "gas-safety-oak-ave.pdf", Expiry: "2024-04-01"},
		},
	},
	{
		Address: "789 Pine Rd, Birmingham B1 1AA",
		Type:    inspection.PropertyBungalow,
		Status:  models.MOTFailed,
		Rooms: []models.RoomRequest{
			{Name: "Kitchen", Type: inspection.RoomKitchen},
			{Name: "Living Room", Type: inspection.RoomLivingRoom},
			{Name: "Bedroom 1", Type: inspection.RoomBedroom},
			{Name: "Bedroom 2", Type: inspection.RoomBedroom},
			{Name: "Bathroom", Type: inspection.RoomBathroom},
		},
		Documents: []demoDocument{
			{Type: models.DocEPCCertificate, File: "epc-certificate-pine-rd.pdf", Expiry: "2031-08-20", EPCRating: "D", EPCScore: 55},
			{Type: models.DocInsurance, File: "insurance-pine-rd.pdf", Expiry: "2024-03-01",
				AccessRoles: []models.Role{models.RoleAdmin, models.RoleLandlord}},
		},
	},
}

// SeedDemoData creates the demo landlord's properties with their rooms and
// compliance documents. It needs the demo users and skips if any property
// exists.
func SeedDemoData(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM properties"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Properties already seeded, skipping...")
		return nil
	}

	var landlordID, inspectorID string
	if err := db.Get(&landlordID, db.Rebind("SELECT id FROM users WHERE email = ?"), "landlord@demo.com"); err != nil {
		return fmt.Errorf("demo landlord not found: %w", err)
	}
	if err := db.Get(&inspectorID, db.Rebind("SELECT id FROM users WHERE email = ?"), "client@demo.com"); err != nil {
		return fmt.Errorf("demo inspector not found: %w", err)
	}

	log.Printf("🌱 Seeding %d demo properties...", len(demoProperties))

	now := time.Now()
	for _, p := range demoProperties {
		propertyID := uuid.New().String()
		property := map[string]interface{}{
			"id":                 propertyID,
			"landlord_id":        landlordID,
			"assigned_inspector": nil,
			"address":            p.Address,
			"type":               p.Type,
			"mot_status":         p.Status,
			"created_at":         now.Unix(),
			"updated_at":         now.Unix(),
		}
		if p.Inspector {
			property["assigned_inspector"] = inspectorID
		}

		_, err := db.NamedExec(`
			INSERT INTO properties (id, landlord_id, assigned_inspector, address, type, mot_status, created_at, updated_at)
			VALUES (:id, :landlord_id, :assigned_inspector, :address, :type, :mot_status, :created_at, :updated_at)
		`, property)
		if err != nil {
			return err
		}

		for i, r := range p.Rooms {
			_, err := db.NamedExec(`
				INSERT INTO rooms (id, property_id, name, type, position, created_at)
				VALUES (:id, :property_id, :name, :type, :position, :created_at)
			`, map[string]interface{}{
				"id":          uuid.New().String(),
				"property_id": propertyID,
				"name":        r.Name,
				"type":        r.Type,
				"position":    i,
				"created_at":  now.Unix(),
			})
			if err != nil {
				return err
			}
		}

		for _, d := range p.Documents {
			if err := seedDocument(db, propertyID, landlordID, d, now); err != nil {
				return err
			}
		}

		log.Printf("  ✓ Created property: %s (%d rooms, %d documents)", p.Address, len(p.Rooms), len(p.Documents))
	}

	log.Println("✓ Successfully seeded demo properties")
	return nil
}

func seedDocument(db *sqlx.DB, propertyID, uploaderID string, d demoDocument, now time.Time) error {
	expiry, err := time.Parse("2006-01-02", d.Expiry)
	if err != nil {
		return fmt.Errorf("demo document %s: %w", d.File, err)
	}
	expiryUnix := expiry.Unix()

	roles := d.AccessRoles
	if roles == nil {
		roles = models.AllRoles
	}

	doc := &models.Document{
		ID:               uuid.New().String(),
		PropertyID:       propertyID,
		Filename:         d.File,
		OriginalName:     d.File,
		URL:              "/uploads/demo/" + d.File,
		StorageKey:       "demo/" + d.File,
		UploadedByUserID: uploaderID,
		UploadedAt:       now.Unix(),
		DocumentType:     d.Type,
		ExpiryDate:       &expiryUnix,
		AccessRoles:      models.JSONList[models.Role](roles),
		Tags:             models.JSONList[string]{string(d.Type)},
		MimeType:         "application/pdf",
		Version:          1,
	}
	if d.EPCRating != "" {
		rating, score := d.EPCRating, d.EPCScore
		doc.EPCRating = &rating
		doc.EPCScore = &score
	}

	_, err = db.NamedExec(`
		INSERT INTO documents (`+documentColumns+`)
		VALUES (:id, :property_id, :inspection_id, :filename, :original_name, :url, :storage_key, :uploaded_by,
			:uploaded_at, :document_type, :expiry_date, :epc_rating, :epc_score, :access_roles, :tags, :file_size,
			:mime_type, :is_archived, :version, :description)
	`, doc)
	return err
}
