package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"melhado-backend/internal/models"
)

const notificationColumns = `id, user_id, type, title, message, priority, action_url, read, created_at`

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (:id, :user_id, :type, :title, :message, :priority, :action_url, :read, :created_at)
	`, n)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := selectAll(ctx, s.db, &notifications, `
		SELECT `+notificationColumns+` FROM notifications WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags one of the user's notifications as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID string) error {
	n, err := exec(ctx, s.db, `UPDATE notifications SET read = ? WHERE id = ? AND user_id = ?`, true, id, userID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// HasNotification reports whether the user already has a notification of
// this type pointing at actionURL.
func (s *Store) HasNotification(ctx context.Context, userID string, typ models.NotificationType, actionURL string) (bool, error) {
	var count int
	err := get(ctx, s.db, &count, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND type = ? AND action_url = ?
	`, userID, typ, actionURL)
	if err != nil {
		return false, fmt.Errorf("checking notifications: %w", err)
	}
	return count > 0, nil
}

// UpsertFCMToken registers a device token, moving it to userID if another
// account registered it before.
func (s *Store) UpsertFCMToken(ctx context.Context, userID string, req models.RegisterFCMTokenRequest, now time.Time) error {
	token := models.FCMToken{
		ID:         uuid.New().String(),
		UserID:     userID,
		Token:      req.Token,
		DeviceType: req.DeviceType,
		CreatedAt:  now.Unix(),
		UpdatedAt:  now.Unix(),
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO fcm_tokens (id, user_id, token, device_type, created_at, updated_at)
		VALUES (:id, :user_id, :token, :device_type, :created_at, :updated_at)
		ON CONFLICT (token) DO UPDATE SET
			user_id = excluded.user_id,
			device_type = excluded.device_type,
			updated_at = excluded.updated_at
	`, token)
	if err != nil {
		return fmt.Errorf("saving FCM token: %w", err)
	}
	return nil
}

// GetFCMTokensForUsers returns every device token registered to the users.
func (s *Store) GetFCMTokensForUsers(ctx context.Context, userIDs []string) ([]string, error) {
	tokens := []string{}
	if len(userIDs) == 0 {
		return tokens, nil
	}
	if err := selectIn(ctx, s.db, &tokens, `SELECT token FROM fcm_tokens WHERE user_id IN (?)`, userIDs); err != nil {
		return nil, fmt.Errorf("listing FCM tokens: %w", err)
	}
	return tokens, nil
}

// DeleteFCMToken drops a token FCM reported as unregistered.
func (s *Store) DeleteFCMToken(ctx context.Context, token string) error {
	if _, err := exec(ctx, s.db, `DELETE FROM fcm_tokens WHERE token = ?`, token); err != nil {
		return fmt.Errorf("deleting FCM token: %w", err)
	}
	return nil
}
