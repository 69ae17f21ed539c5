package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/access"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/database"
	"melhado-backend/internal/helpers"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
	"melhado-backend/internal/storage"
	"melhado-backend/pkg/utils"
)

const maxEvidenceUpload = 10 << 20

type MediaUploadResponse struct {
	Applied    bool                      `json:"applied"`
	File       *inspection.MediaFile     `json:"file,omitempty"`
	Inspection models.InspectionResponse `json:"inspection"`
}

// UploadItemMedia stores an evidence photo and appends it to the item's
// visual or damage evidence (?kind=visual|damage). Items that do not take
// that kind of evidence, and unknown item ids, leave the record unchanged.
func UploadItemMedia(store *database.Store, files storage.FileStore, events Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceInspections, access.ActionUpdate)
		if !ok {
			return
		}

		kind := inspection.EvidenceKind(r.URL.Query().Get("kind"))
		if kind == "" {
			kind = inspection.EvidenceVisual
		}
		if kind != inspection.EvidenceVisual && kind != inspection.EvidenceDamage {
			utils.RespondError(w, http.StatusBadRequest, "kind must be 'visual' or 'damage'")
			return
		}

		li, ok := editableInspection(w, r, store, claims)
		if !ok {
			return
		}
		rec := li.Record
		if !rec.Status.Editable() {
			utils.RespondError(w, http.StatusConflict, "Inspection can no longer be changed")
			return
		}

		itemID := chi.URLParam(r, "itemId")
		item, found := rec.Item(itemID)
		if !found {
			log.Printf("⚠️  Item %s not on inspection %s, upload ignored", itemID, rec.ID)
			utils.RespondJSON(w, http.StatusOK, MediaUploadResponse{
				Applied:    false,
				Inspection: models.NewInspectionResponse(rec, li.Row.ReportDocumentID),
			})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxEvidenceUpload)
		if err := r.ParseMultipartForm(maxEvidenceUpload); err != nil {
			log.Printf("❌ Invalid upload: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "File must be a multipart upload of at most 10 MB")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			log.Printf("❌ Rejected evidence upload of type %q", contentType)
			utils.RespondError(w, http.StatusUnsupportedMediaType, "Evidence must be an image")
			return
		}

		now := time.Now()
		name := storage.SanitizeFilename(header.Filename)
		key := storage.Key("inspections", rec.ID, itemID, compliance.StoredFilename(name, now))
		url, size, err := files.Save(r.Context(), key, contentType, file)
		if err != nil {
			log.Printf("❌ Failed to store %s: %v", key, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to store file")
			return
		}

		media := storage.NewMediaFile(itemID, name, url, contentType, size, now)
		applied, err := rec.AttachMedia(itemID, kind, media, now)
		if err != nil || !applied {
			if delErr := files.Delete(r.Context(), key); delErr != nil {
				log.Printf("⚠️  Failed to remove unused upload %s: %v", key, delErr)
			}
			if err != nil {
				respondInspectionError(w, err)
				return
			}
			log.Printf("⚠️  Item %s does not take %s evidence", itemID, kind)
			utils.RespondJSON(w, http.StatusOK, MediaUploadResponse{
				Applied:    false,
				Inspection: models.NewInspectionResponse(rec, li.Row.ReportDocumentID),
			})
			return
		}

		if err := store.SaveInspection(r.Context(), &rec, now); err != nil {
			if delErr := files.Delete(r.Context(), key); delErr != nil {
				log.Printf("⚠️  Failed to remove unused upload %s: %v", key, delErr)
			}
			respondSaveError(w, rec, err, "Failed to save inspection")
			return
		}

		helpers.LogMediaAttached(store.DB(), rec.ID, item, media, actor(r.Context(), store, claims))
		broadcastInspection(events, rec, li.Property)

		log.Printf("📷 %s evidence attached to %q on %s (%d bytes)", kind, item.Label, rec.ID, size)
		utils.RespondJSON(w, http.StatusCreated, MediaUploadResponse{
			Applied:    true,
			File:       &media,
			Inspection: models.NewInspectionResponse(rec, li.Row.ReportDocumentID),
		})
	}
}
