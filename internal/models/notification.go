package models

import "time"

type NotificationType string

const (
	NotifyMOTDue             NotificationType = "mot-due"
	NotifyInspectionComplete NotificationType = "inspection-complete"
	NotifyIssueFlagged       NotificationType = "issue-flagged"
	NotifyDocumentExpiry     NotificationType = "document-expiry"
	NotifySystem             NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Priority  string           `json:"priority" db:"priority"` // low, medium, high
	ActionURL *string          `json:"action_url,omitempty" db:"action_url"`
	Read      bool             `json:"read" db:"read"`
	CreatedAt int64            `json:"created_at" db:"created_at"`
}

type NotificationResponse struct {
	Notification
	TimestampIso string `json:"timestamp"`
}

func (n *Notification) ToNotificationResponse() NotificationResponse {
	return NotificationResponse{
		Notification: *n,
		TimestampIso: time.Unix(n.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
}

// FCMToken is a device registration for push notifications.
type FCMToken struct {
	ID         string `json:"id" db:"id"`
	UserID     string `json:"user_id" db:"user_id"`
	Token      string `json:"token" db:"token"`
	DeviceType string `json:"device_type" db:"device_type"`
	CreatedAt  int64  `json:"created_at" db:"created_at"`
	UpdatedAt  int64  `json:"updated_at" db:"updated_at"`
}

type RegisterFCMTokenRequest struct {
	Token      string `json:"token"`
	DeviceType string `json:"device_type"`
}
