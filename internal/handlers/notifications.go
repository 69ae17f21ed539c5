package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/database"
	"melhado-backend/internal/middleware"
	"melhado-backend/internal/models"
	"melhado-backend/pkg/utils"
)

// GetNotifications lists the caller's notifications, newest first.
func GetNotifications(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		notifications, err := store.ListNotifications(r.Context(), claims.UserID)
		if err != nil {
			log.Printf("❌ Failed to list notifications for %s: %v", claims.Email, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list notifications")
			return
		}

		resp := make([]models.NotificationResponse, 0, len(notifications))
		unread := 0
		for i := range notifications {
			if !notifications[i].Read {
				unread++
			}
			resp = append(resp, notifications[i].ToNotificationResponse())
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"notifications": resp,
			"unread":        unread,
		})
	}
}

func MarkNotificationRead(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		id := chi.URLParam(r, "id")
		if err := store.MarkNotificationRead(r.Context(), id, claims.UserID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.RespondError(w, http.StatusNotFound, "Notification not found")
				return
			}
			log.Printf("❌ Failed to mark notification %s read: %v", id, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to update notification")
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// RegisterFCMToken stores the device token used for push notifications. A
// token already registered to another account moves to the caller.
func RegisterFCMToken(store *database.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetUserFromContext(r)
		if !ok {
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req models.RegisterFCMTokenRequest
		if err := utils.DecodeJSON(w, r, &req); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Token = strings.TrimSpace(req.Token)
		if req.Token == "" {
			utils.RespondError(w, http.StatusBadRequest, "token is required")
			return
		}
		if req.DeviceType == "" {
			req.DeviceType = "web"
		}

		if err := store.UpsertFCMToken(r.Context(), claims.UserID, req, time.Now()); err != nil {
			log.Printf("❌ Failed to register FCM token for %s: %v", claims.Email, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to register token")
			return
		}

		log.Printf("📱 FCM token registered for %s (%s)", claims.Email, req.DeviceType)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// TriggerExpiryScan runs the expiring-document check now instead of waiting
// for the next scheduled pass.
func TriggerExpiryScan(scanner ExpiryScanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("📥 REQUEST: POST /api/admin/expiry-scan")

		sent, err := scanner.ScanExpiringDocuments(r.Context())
		if err != nil {
			log.Printf("❌ Expiry scan failed: %v", err)
			utils.RespondError(w, http.StatusInternalServerError, "Expiry scan failed")
			return
		}

		log.Printf("✅ Expiry scan sent %d notifications", sent)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"sent":    sent,
		})
	}
}
