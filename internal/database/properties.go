package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
)

const propertyColumns = `id, landlord_id, assigned_inspector, address, type, mot_status, next_due, created_at, updated_at`

// PropertyFilter narrows ListProperties. Empty fields match everything.
type PropertyFilter struct {
	LandlordID  string
	InspectorID string
}

func (s *Store) ListProperties(ctx context.Context, f PropertyFilter) ([]models.Property, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.LandlordID != "" {
		where = append(where, "landlord_id = ?")
		args = append(args, f.LandlordID)
	}
	if f.InspectorID != "" {
		where = append(where, "assigned_inspector = ?")
		args = append(args, f.InspectorID)
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, address`

	properties := []models.Property{}
	if err := selectAll(ctx, s.db, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	return properties, nil
}

func (s *Store) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var p models.Property
	if err := get(ctx, s.db, &p, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("getting property %s: %w", id, err)
	}
	return &p, nil
}

// CreateProperty inserts the property and its rooms in order. Empty IDs are
// filled in, and the created rooms are returned.
func (s *Store) CreateProperty(ctx context.Context, p *models.Property, rooms []models.RoomRequest) ([]models.Room, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.MOTStatus == "" {
		p.MOTStatus = models.MOTPending
	}

	created := make([]models.Room, 0, len(rooms))
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO properties (`+propertyColumns+`)
			VALUES (:id, :landlord_id, :assigned_inspector, :address, :type, :mot_status, :next_due, :created_at, :updated_at)
		`, p)
		if err != nil {
			return fmt.Errorf("inserting property: %w", err)
		}
		for i, r := range rooms {
			room := models.Room{
				ID:         uuid.New().String(),
				PropertyID: p.ID,
				Name:       r.Name,
				Type:       r.Type,
				Position:   i,
				CreatedAt:  p.CreatedAt,
			}
			if err := insertRoom(ctx, tx, room); err != nil {
				return err
			}
			created = append(created, room)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}
	return created, nil
}

func (s *Store) UpdateProperty(ctx context.Context, p *models.Property) error {
	n, err := exec(ctx, s.db, `
		UPDATE properties
		SET address = ?, type = ?, assigned_inspector = ?, updated_at = ?
		WHERE id = ?
	`, p.Address, p.Type, p.AssignedInspector, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating property %s: %w", p.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("updating property %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// UpdatePropertyStatus records the outcome of the latest inspection.
func (s *Store) UpdatePropertyStatus(ctx context.Context, id string, status models.MOTStatus, nextDue *int64, now int64) error {
	return updatePropertyStatus(ctx, s.db, id, status, nextDue, now)
}

func updatePropertyStatus(ctx context.Context, q queryer, id string, status models.MOTStatus, nextDue *int64, now int64) error {
	n, err := exec(ctx, q, `
		UPDATE properties SET mot_status = ?, next_due = ?, updated_at = ? WHERE id = ?
	`, status, nextDue, now, id)
	if err != nil {
		return fmt.Errorf("updating status of property %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("updating status of property %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteProperty removes the property. Rooms, inspections and documents go
// with it through ON DELETE CASCADE.
func (s *Store) DeleteProperty(ctx context.Context, id string) error {
	n, err := exec(ctx, s.db, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting property %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("deleting property %s: %w", id, ErrNotFound)
	}
	return nil
}

const roomColumns = `id, property_id, name, type, position, created_at`

func insertRoom(ctx context.Context, q queryer, room models.Room) error {
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO rooms (`+roomColumns+`)
		VALUES (:id, :property_id, :name, :type, :position, :created_at)
	`, room)
	if err != nil {
		return fmt.Errorf("inserting room %s: %w", room.Name, err)
	}
	return nil
}

// ListRooms returns the property's rooms in display order.
func (s *Store) ListRooms(ctx context.Context, propertyID string) ([]models.Room, error) {
	rooms := []models.Room{}
	err := selectAll(ctx, s.db, &rooms, `
		SELECT `+roomColumns+` FROM rooms WHERE property_id = ? ORDER BY position
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	return rooms, nil
}

// RoomsByProperty loads the rooms of several properties in one query.
func (s *Store) RoomsByProperty(ctx context.Context, propertyIDs []string) (map[string][]models.Room, error) {
	byProperty := make(map[string][]models.Room, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return byProperty, nil
	}
	var rooms []models.Room
	err := selectIn(ctx, s.db, &rooms, `
		SELECT `+roomColumns+` FROM rooms WHERE property_id IN (?) ORDER BY property_id, position
	`, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	for _, r := range rooms {
		byProperty[r.PropertyID] = append(byProperty[r.PropertyID], r)
	}
	return byProperty, nil
}

// NewRoom returns an unsaved room of the property. Its position is assigned
// when it is added.
func NewRoom(propertyID string, req models.RoomRequest, now time.Time) models.Room {
	return models.Room{
		ID:         uuid.New().String(),
		PropertyID: propertyID,
		Name:       req.Name,
		Type:       req.Type,
		CreatedAt:  now.Unix(),
	}
}

// AddRoom appends a room after the property's last one.
func (s *Store) AddRoom(ctx context.Context, propertyID string, req models.RoomRequest, now time.Time) (*models.Room, error) {
	room := NewRoom(propertyID, req, now)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return appendRoom(ctx, tx, &room, now)
	})
	if err != nil {
		return nil, fmt.Errorf("adding room to property %s: %w", propertyID, err)
	}
	return &room, nil
}

// AddInspectionRoom appends room to its property and saves rec, which must
// already hold the room's checklist items, in one transaction.
func (s *Store) AddInspectionRoom(ctx context.Context, room *models.Room, rec *inspection.Record, now time.Time) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := appendRoom(ctx, tx, room, now); err != nil {
			return err
		}
		return saveInspection(ctx, tx, rec, now)
	})
	if err != nil {
		return fmt.Errorf("adding room %s to inspection %s: %w", room.Name, rec.ID, err)
	}
	rec.Version++
	return nil
}

func appendRoom(ctx context.Context, q queryer, room *models.Room, now time.Time) error {
	var next int
	if err := get(ctx, q, &next, `SELECT COALESCE(MAX(position) + 1, 0) FROM rooms WHERE property_id = ?`, room.PropertyID); err != nil {
		return err
	}
	room.Position = next
	if err := insertRoom(ctx, q, *room); err != nil {
		return err
	}
	_, err := exec(ctx, q, `UPDATE properties SET updated_at = ? WHERE id = ?`, now.Unix(), room.PropertyID)
	return err
}

// RemoveRoom deletes the room and its checklist items from every open
// inspection of the property. Submitted records keep their items. The
// updated open records are returned.
func (s *Store) RemoveRoom(ctx context.Context, propertyID, roomID string, now time.Time) ([]inspection.Record, error) {
	var updated []inspection.Record
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, `DELETE FROM rooms WHERE id = ? AND property_id = ?`, roomID, propertyID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}

		var ids []string
		err = selectAll(ctx, tx, &ids, `
			SELECT id FROM inspections WHERE property_id = ? AND status IN (?, ?)
		`, propertyID, inspection.RecordInProgress, inspection.RecordCompleted)
		if err != nil {
			return err
		}
		for _, id := range ids {
			_, rec, err := getInspection(ctx, tx, id)
			if err != nil {
				return err
			}
			if _, err := rec.RemoveRoom(roomID, now); err != nil {
				return err
			}
			if err := saveInspection(ctx, tx, &rec, now); err != nil {
				return err
			}
			rec.Version++
			updated = append(updated, rec)
		}

		_, err = exec(ctx, tx, `UPDATE properties SET updated_at = ? WHERE id = ?`, now.Unix(), propertyID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("room %s: %w", roomID, ErrNotFound)
		}
		return nil, fmt.Errorf("removing room %s: %w", roomID, err)
	}
	return updated, nil
}
