package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
)

const inspectionColumns = `id, property_id, inspector_id, status, overall_result, started_at, completed_at,
	submitted_at, approved_by, approved_at, rejection_reason, total_items, completed_items, ok_items,
	fault_items, action_needed_items, critical_issues, report_document_id, version, updated_at`

const inspectionItemColumns = `id, inspection_id, room_id, position, label, description, category, input_type,
	required, status, notes, value, options, priority, visual_evidence, fixtures, damage_or_wear`

// SaveInspection writes the record header and replaces its items. A record
// loaded from the store is only written if nobody saved it in between;
// otherwise the error wraps ErrStale. rec.Version is advanced on success.
func (s *Store) SaveInspection(ctx context.Context, rec *inspection.Record, now time.Time) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		return saveInspection(ctx, tx, rec, now)
	})
	if err != nil {
		return err
	}
	rec.Version++
	return nil
}

// saveInspection inserts a new record (version 0) or updates the header of
// the stored one at rec.Version, leaving report_document_id alone, then
// rewrites the item rows in record order. It does not touch rec.
func saveInspection(ctx context.Context, q queryer, rec *inspection.Record, now time.Time) error {
	header, items := models.NewInspectionRows(*rec, now)

	if rec.Version == 0 {
		header.Version = 1
		_, err := q.NamedExecContext(ctx, `
			INSERT INTO inspections (id, property_id, inspector_id, status, overall_result, started_at,
				completed_at, submitted_at, approved_by, approved_at, rejection_reason, total_items,
				completed_items, ok_items, fault_items, action_needed_items, critical_issues, version, updated_at)
			VALUES (:id, :property_id, :inspector_id, :status, :overall_result, :started_at,
				:completed_at, :submitted_at, :approved_by, :approved_at, :rejection_reason, :total_items,
				:completed_items, :ok_items, :fault_items, :action_needed_items, :critical_issues, :version, :updated_at)
		`, header)
		if err != nil {
			return fmt.Errorf("saving inspection %s: %w", rec.ID, err)
		}
	} else {
		res, err := q.NamedExecContext(ctx, `
			UPDATE inspections SET
				status = :status,
				overall_result = :overall_result,
				completed_at = :completed_at,
				submitted_at = :submitted_at,
				approved_by = :approved_by,
				approved_at = :approved_at,
				rejection_reason = :rejection_reason,
				total_items = :total_items,
				completed_items = :completed_items,
				ok_items = :ok_items,
				fault_items = :fault_items,
				action_needed_items = :action_needed_items,
				critical_issues = :critical_issues,
				version = version + 1,
				updated_at = :updated_at
			WHERE id = :id AND version = :version
		`, header)
		if err != nil {
			return fmt.Errorf("saving inspection %s: %w", rec.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("saving inspection %s: %w", rec.ID, err)
		}
		if n == 0 {
			return fmt.Errorf("inspection %s changed since version %d: %w", rec.ID, rec.Version, ErrStale)
		}
	}

	if _, err := exec(ctx, q, `DELETE FROM inspection_items WHERE inspection_id = ?`, rec.ID); err != nil {
		return fmt.Errorf("clearing items of inspection %s: %w", rec.ID, err)
	}
	if len(items) == 0 {
		return nil
	}
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO inspection_items (`+inspectionItemColumns+`)
		VALUES (:id, :inspection_id, :room_id, :position, :label, :description, :category, :input_type,
			:required, :status, :notes, :value, :options, :priority, :visual_evidence, :fixtures, :damage_or_wear)
	`, items)
	if err != nil {
		return fmt.Errorf("saving items of inspection %s: %w", rec.ID, err)
	}
	return nil
}

// GetInspection loads a record with its items in order.
func (s *Store) GetInspection(ctx context.Context, id string) (*models.Inspection, inspection.Record, error) {
	return getInspection(ctx, s.db, id)
}

func getInspection(ctx context.Context, q queryer, id string) (*models.Inspection, inspection.Record, error) {
	var header models.Inspection
	if err := get(ctx, q, &header, `SELECT `+inspectionColumns+` FROM inspections WHERE id = ?`, id); err != nil {
		return nil, inspection.Record{}, fmt.Errorf("getting inspection %s: %w", id, err)
	}
	var items []models.InspectionItem
	err := selectAll(ctx, q, &items, `
		SELECT `+inspectionItemColumns+` FROM inspection_items WHERE inspection_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, inspection.Record{}, fmt.Errorf("getting items of inspection %s: %w", id, err)
	}
	return &header, header.ToRecord(items), nil
}

const inspectionSummarySelect = `
	SELECT i.id, i.property_id, i.inspector_id, COALESCE(u.name, '') AS inspector_name,
		i.status, i.overall_result, i.started_at, i.submitted_at,
		i.total_items, i.completed_items, i.fault_items, i.critical_issues
	FROM inspections i
	LEFT JOIN users u ON u.id = i.inspector_id`

// ListInspectionsForProperty returns the property's inspection history,
// newest first.
func (s *Store) ListInspectionsForProperty(ctx context.Context, propertyID string) ([]models.InspectionSummaryRow, error) {
	rows := []models.InspectionSummaryRow{}
	err := selectAll(ctx, s.db, &rows, inspectionSummarySelect+`
		WHERE i.property_id = ? ORDER BY i.started_at DESC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("listing inspections: %w", err)
	}
	return rows, nil
}

// ListInspectionsByInspector returns the inspector's records, newest first.
func (s *Store) ListInspectionsByInspector(ctx context.Context, inspectorID string) ([]models.InspectionSummaryRow, error) {
	rows := []models.InspectionSummaryRow{}
	err := selectAll(ctx, s.db, &rows, inspectionSummarySelect+`
		WHERE i.inspector_id = ? ORDER BY i.started_at DESC
	`, inspectorID)
	if err != nil {
		return nil, fmt.Errorf("listing inspections: %w", err)
	}
	return rows, nil
}

// SubmitInspection stores a submitted record together with its report
// document and the property's new MOT status, in one transaction. Only a
// record still open at rec.Version can be submitted; a second submit of the
// same record fails with ErrStale.
func (s *Store) SubmitInspection(ctx context.Context, rec *inspection.Record, report *models.Document, nextDue *int64, now time.Time) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		n, err := exec(ctx, tx, `
			UPDATE inspections SET status = ? WHERE id = ? AND status IN (?, ?) AND version = ?
		`, inspection.RecordSubmitted, rec.ID, inspection.RecordInProgress, inspection.RecordCompleted, rec.Version)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("inspection %s is no longer open at version %d: %w", rec.ID, rec.Version, ErrStale)
		}
		if err := saveInspection(ctx, tx, rec, now); err != nil {
			return err
		}
		if err := insertDocument(ctx, tx, report); err != nil {
			return err
		}
		if _, err := exec(ctx, tx, `
			UPDATE inspections SET report_document_id = ? WHERE id = ?
		`, report.ID, rec.ID); err != nil {
			return fmt.Errorf("linking report: %w", err)
		}
		return updatePropertyStatus(ctx, tx, rec.PropertyID, models.MOTStatusFor(rec.OverallResult), nextDue, now.Unix())
	})
	if err != nil {
		return fmt.Errorf("submitting inspection %s: %w", rec.ID, err)
	}
	rec.Version++
	return nil
}

const historyColumns = `id, inspection_id, action_type, actor_id, actor_name, actor_role, previous_status,
	new_status, item_id, item_label, room_name, notes, created_at`

// ListInspectionHistory returns the audit trail oldest first.
func (s *Store) ListInspectionHistory(ctx context.Context, inspectionID string) ([]models.InspectionHistory, error) {
	history := []models.InspectionHistory{}
	err := selectAll(ctx, s.db, &history, `
		SELECT `+historyColumns+` FROM inspection_history WHERE inspection_id = ? ORDER BY created_at, id
	`, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("listing inspection history: %w", err)
	}
	return history, nil
}
