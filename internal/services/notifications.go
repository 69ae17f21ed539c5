package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"melhado-backend/internal/access"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
)

//go:generate mockgen -source=notifications.go -destination=notifications_mock_test.go -package=services

// Notifier delivers push messages to devices. FCMService implements it.
type Notifier interface {
	Send(ctx context.Context, tokens []string, p Push) ([]string, error)
}

// NotificationStore is the persistence the notification service needs.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	HasNotification(ctx context.Context, userID string, typ models.NotificationType, actionURL string) (bool, error)
	GetFCMTokensForUsers(ctx context.Context, userIDs []string) ([]string, error)
	DeleteFCMToken(ctx context.Context, token string) error
	ListExpiringDocuments(ctx context.Context, until int64) ([]models.Document, error)
	GetProperty(ctx context.Context, id string) (*models.Property, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)
}

// NotificationService writes in-app notifications and mirrors them as push
// messages when a Notifier is configured.
type NotificationService struct {
	store   NotificationStore
	push    Notifier
	windows compliance.Windows
	now     func() time.Time
}

// NewNotificationService returns a service. push may be nil, which disables
// push delivery.
func NewNotificationService(store NotificationStore, push Notifier, windows compliance.Windows) *NotificationService {
	return &NotificationService{store: store, push: push, windows: windows, now: time.Now}
}

// Notify stores a copy of n for each user and pushes it to their devices.
// Push failures are logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, userIDs []string, n models.Notification, data map[string]string) error {
	if len(userIDs) == 0 {
		return nil
	}
	n.CreatedAt = s.now().Unix()
	for _, userID := range userIDs {
		row := n
		row.UserID = userID
		if err := s.store.CreateNotification(ctx, &row); err != nil {
			return err
		}
	}

	if s.push == nil {
		return nil
	}
	tokens, err := s.store.GetFCMTokensForUsers(ctx, userIDs)
	if err != nil {
		log.Printf("⚠️  Failed to load FCM tokens: %v", err)
		return nil
	}
	if len(tokens) == 0 {
		return nil
	}

	if data == nil {
		data = map[string]string{}
	}
	data["type"] = string(n.Type)
	stale, err := s.push.Send(ctx, tokens, Push{Title: n.Title, Body: n.Message, Data: data})
	if err != nil {
		log.Printf("⚠️  Failed to send push notification: %v", err)
		return nil
	}
	for _, token := range stale {
		if err := s.store.DeleteFCMToken(ctx, token); err != nil {
			log.Printf("⚠️  Failed to delete stale FCM token: %v", err)
		}
	}
	return nil
}

// recipients returns the property's landlord plus every admin.
func (s *NotificationService) recipients(ctx context.Context, property *models.Property) ([]models.User, error) {
	admins, err := s.store.ListUsers(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	users := []models.User{{ID: property.LandlordID, Role: models.RoleLandlord}}
	for _, a := range admins {
		if a.ID != property.LandlordID {
			users = append(users, a)
		}
	}
	return users, nil
}

func resultPriority(r inspection.OverallResult) string {
	switch r {
	case inspection.ResultFailed:
		return "high"
	case inspection.ResultNeedsReview:
		return "medium"
	}
	return "low"
}

// InspectionSubmitted tells the landlord and admins about a submitted MOT.
func (s *NotificationService) InspectionSubmitted(ctx context.Context, rec inspection.Record, property *models.Property) error {
	users, err := s.recipients(ctx, property)
	if err != nil {
		return fmt.Errorf("loading recipients: %w", err)
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	actionURL := "/inspections/" + rec.ID
	n := models.Notification{
		Type:  models.NotifyInspectionComplete,
		Title: "MOT inspection submitted",
		Message: fmt.Sprintf("%s: %s (%d faults, %d actions needed)", property.Address,
			rec.OverallResult, rec.Summary.FaultItems, rec.Summary.ActionNeededItems),
		Priority:  resultPriority(rec.OverallResult),
		ActionURL: &actionURL,
	}
	return s.Notify(ctx, ids, n, map[string]string{
		"inspection_id":  rec.ID,
		"property_id":    property.ID,
		"overall_result": string(rec.OverallResult),
	})
}

func expiryMessage(doc *models.Document, address string, e compliance.Expiry) (string, string, string) {
	label := string(doc.DocumentType)
	if info, ok := compliance.Info(doc.DocumentType); ok {
		label = info.Label
	}
	if e.Status == compliance.ExpiryExpired {
		return label + " expired", fmt.Sprintf("%s: %s expired %d days ago", address, doc.OriginalName, e.Days), "high"
	}
	return label + " expiring", fmt.Sprintf("%s: %s expires in %d days", address, doc.OriginalName, e.Days), "medium"
}

// ScanExpiringDocuments notifies the landlord and admins about every document
// that is expired or inside the expiring window. Each user hears about a
// document once per expiry status. It returns the number of users notified.
func (s *NotificationService) ScanExpiringDocuments(ctx context.Context) (int, error) {
	now := s.now()
	until := now.AddDate(0, 0, s.windows.DocumentExpiringDays).Unix()
	docs, err := s.store.ListExpiringDocuments(ctx, until)
	if err != nil {
		return 0, err
	}

	log.Printf("🔎 Expiry scan: %d documents expired or expiring within %d days", len(docs), s.windows.DocumentExpiringDays)

	properties := map[string]*models.Property{}
	sent := 0
	for i := range docs {
		doc := &docs[i]
		e := compliance.ExpiryOf(doc, now, s.windows.DocumentExpiringDays)
		if e.Status != compliance.ExpiryExpired && e.Status != compliance.ExpiryExpiring {
			continue
		}

		property, ok := properties[doc.PropertyID]
		if !ok {
			if property, err = s.store.GetProperty(ctx, doc.PropertyID); err != nil {
				return sent, err
			}
			properties[doc.PropertyID] = property
		}
		users, err := s.recipients(ctx, property)
		if err != nil {
			return sent, err
		}

		actionURL := fmt.Sprintf("/documents/%s?status=%s", doc.ID, e.Status)
		var ids []string
		for _, u := range users {
			if !access.CanAccessDocument(u.Role, doc.AccessRoles) {
				continue
			}
			seen, err := s.store.HasNotification(ctx, u.ID, models.NotifyDocumentExpiry, actionURL)
			if err != nil {
				return sent, err
			}
			if !seen {
				ids = append(ids, u.ID)
			}
		}
		if len(ids) == 0 {
			continue
		}

		title, message, priority := expiryMessage(doc, property.Address, e)
		n := models.Notification{
			Type:      models.NotifyDocumentExpiry,
			Title:     title,
			Message:   message,
			Priority:  priority,
			ActionURL: &actionURL,
		}
		if err := s.Notify(ctx, ids, n, map[string]string{"document_id": doc.ID, "property_id": doc.PropertyID}); err != nil {
			return sent, err
		}
		sent += len(ids)
	}

	log.Printf("✅ Expiry scan complete: %d notifications", sent)
	return sent, nil
}

// RunExpiryScans scans once per interval until ctx is cancelled.
func (s *NotificationService) RunExpiryScans(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.ScanExpiringDocuments(ctx); err != nil {
			log.Printf("❌ Expiry scan failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
