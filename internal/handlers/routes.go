package handlers

import (
	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/access"
	"melhado-backend/internal/auth"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/database"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/middleware"
	"melhado-backend/internal/models"
	"melhado-backend/internal/storage"
)

// API bundles what the /api routes share.
type API struct {
	Store    *database.Store
	Authn    *auth.Authenticator
	Tokens   *auth.TokenManager
	Builder  *inspection.Builder
	Files    storage.FileStore
	Events   Broadcaster
	Notifier SubmissionNotifier
	Scanner  ExpiryScanner
	Windows  compliance.Windows
}

// Routes registers every /api route on r.
func (a *API) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", Login(a.Authn, a.Tokens, a.Store))

		// Protected routes (require authentication)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(a.Tokens, a.Store))

			r.Post("/auth/logout", Logout(a.Store))
			r.Get("/auth/status", GetAuthStatus(a.Store))
			r.Get("/navigation", GetNavigation())

			// Users
			r.With(middleware.RequirePermission(access.ResourceUsers, access.ActionRead)).Get("/users", GetUsers(a.Store))
			r.With(middleware.RequirePermission(access.ResourceUsers, access.ActionCreate)).Post("/users", CreateUser(a.Store))

			// Properties and rooms
			r.Get("/properties", GetProperties(a.Store))
			r.Post("/properties", CreateProperty(a.Store))
			r.Get("/properties/{id}", GetProperty(a.Store))
			r.Patch("/properties/{id}", UpdateProperty(a.Store))
			r.Delete("/properties/{id}", DeleteProperty(a.Store, a.Files))
			r.Post("/properties/{id}/rooms", AddPropertyRoom(a.Store))
			r.Delete("/properties/{id}/rooms/{roomId}", DeletePropertyRoom(a.Store, a.Events))
			r.Get("/properties/{id}/inspections", GetPropertyInspections(a.Store))

			// Inspections
			r.Get("/inspections", GetMyInspections(a.Store))
			r.Post("/inspections", StartInspection(a.Store, a.Builder, a.Events))
			r.Get("/inspections/{id}", GetInspection(a.Store))
			r.Patch("/inspections/{id}/items/{itemId}", UpdateInspectionItem(a.Store, a.Events))
			r.Post("/inspections/{id}/items/{itemId}/media", UploadItemMedia(a.Store, a.Files, a.Events))
			r.Post("/inspections/{id}/rooms", AddInspectionRoom(a.Store, a.Builder, a.Events))
			r.Delete("/inspections/{id}/rooms/{roomId}", DeleteInspectionRoom(a.Store, a.Events))
			r.Post("/inspections/{id}/complete", CompleteInspection(a.Store, a.Events))
			r.Get("/inspections/{id}/report", GetInspectionReport(a.Store))
			r.Post("/inspections/{id}/submit", SubmitInspection(a.Store, a.Files, a.Notifier, a.Windows, a.Events))
			r.Get("/inspections/{id}/history", GetInspectionHistory(a.Store))

			// Compliance documents
			r.Get("/properties/{id}/documents", GetPropertyDocuments(a.Store, a.Windows))
			r.Post("/properties/{id}/documents", UploadDocument(a.Store, a.Files, a.Windows))
			r.Delete("/documents/{id}", DeleteDocument(a.Store, a.Files))
			r.Get("/documents/{id}/download", DownloadDocument(a.Store, a.Files))

			// Reports
			r.Get("/reports/{type}", GetReport(a.Store, a.Windows))

			// Notifications
			r.Get("/notifications", GetNotifications(a.Store))
			r.Patch("/notifications/{id}/read", MarkNotificationRead(a.Store))
			r.Post("/fcm-token", RegisterFCMToken(a.Store))

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/admin/expiry-scan", TriggerExpiryScan(a.Scanner))
			})
		})
	})
}
