package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/access"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/database"
	"melhado-backend/internal/middleware"
	"melhado-backend/internal/models"
	"melhado-backend/internal/storage"
	"melhado-backend/pkg/utils"
)

const maxDocumentUpload = 20 << 20

type DocumentListResponse struct {
	Documents       []models.DocumentResponse `json:"documents"`
	MissingRequired []compliance.TypeInfo     `json:"missing_required"`
}

// GetPropertyDocuments lists the property's documents the caller's role may
// see. Query parameters: search, type, sort (name, date, type, expiry).
func GetPropertyDocuments(store *database.Store, windows compliance.Windows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceDocuments, access.ActionRead)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		docs, err := store.ListDocuments(r.Context(), property.ID)
		if err != nil {
			log.Printf("❌ Failed to list documents of %s: %v", property.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to list documents")
			return
		}

		q := r.URL.Query()
		visible := compliance.FilterDocuments(docs, claims.Role, compliance.Filter{
			Search: q.Get("search"),
			Type:   models.DocumentType(q.Get("type")),
		})
		compliance.SortDocuments(visible, compliance.SortBy(q.Get("sort")))

		now := time.Now()
		resp := DocumentListResponse{
			Documents:       make([]models.DocumentResponse, 0, len(visible)),
			MissingRequired: compliance.MissingRequired(docs),
		}
		for i := range visible {
			resp.Documents = append(resp.Documents, compliance.DocumentResponse(&visible[i], now, windows))
		}
		if resp.MissingRequired == nil {
			resp.MissingRequired = []compliance.TypeInfo{}
		}
		utils.RespondJSON(w, http.StatusOK, resp)
	}
}

// parseDocumentForm reads the metadata fields of a document upload. Without
// an expiry date the type's renewal period is applied.
func parseDocumentForm(r *http.Request, now time.Time) (models.CreateDocumentRequest, error) {
	req := models.CreateDocumentRequest{
		DocumentType: models.DocumentType(r.FormValue("document_type")),
	}
	if !compliance.IsValidType(req.DocumentType) {
		return req, fmt.Errorf("unknown document type %q", req.DocumentType)
	}
	if req.DocumentType == models.DocMOTReport {
		return req, errors.New("MOT reports are created by submitting an inspection")
	}

	if v := r.FormValue("expiry_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return req, errors.New("expiry_date must be YYYY-MM-DD")
		}
		req.ExpiryDate = &t
	} else if t, ok := compliance.SuggestedExpiry(req.DocumentType, now); ok {
		req.ExpiryDate = &t
	}

	if v := strings.ToUpper(r.FormValue("epc_rating")); v != "" {
		if !compliance.IsValidEPCRating(v) {
			return req, errors.New("epc_rating must be A to G")
		}
		req.EPCRating = &v
	}
	if v := r.FormValue("epc_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return req, errors.New("epc_score must be between 1 and 100")
		}
		req.EPCScore = &n
	}
	if v := strings.TrimSpace(r.FormValue("description")); v != "" {
		req.Description = &v
	}
	for _, tag := range strings.Split(r.FormValue("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			req.Tags = append(req.Tags, tag)
		}
	}
	return req, nil
}

// UploadDocument stores a compliance document for the property. Landlord
// uploads are hidden from inspectors; admin uploads are shared with them.
func UploadDocument(store *database.Store, files storage.FileStore, windows compliance.Windows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Println("📥 REQUEST: POST /api/properties/{id}/documents - Upload document")

		claims, ok := authorize(w, r, access.ResourceDocuments, access.ActionCreate)
		if !ok {
			return
		}
		property, ok := visibleProperty(w, r, store, claims, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxDocumentUpload)
		if err := r.ParseMultipartForm(maxDocumentUpload); err != nil {
			log.Printf("❌ Invalid upload: %v", err)
			utils.RespondError(w, http.StatusBadRequest, "File must be a multipart upload of at most 20 MB")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		now := time.Now()
		req, err := parseDocumentForm(r, now)
		if err != nil {
			log.Printf("❌ Invalid document fields: %v", err)
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}

		uploader, err := store.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			log.Printf("❌ Uploader %s not found: %v", claims.UserID, err)
			utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		originalName := storage.SanitizeFilename(header.Filename)
		key := storage.Key("documents", property.ID, compliance.StoredFilename(originalName, now))

		url, size, err := files.Save(r.Context(), key, contentType, file)
		if err != nil {
			log.Printf("❌ Failed to store %s: %v", key, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to store file")
			return
		}

		doc := compliance.NewUploadedDocument(property.ID, uploader, req, originalName, url, key, contentType, size, now)
		if err := store.CreateDocument(r.Context(), &doc); err != nil {
			log.Printf("❌ Failed to save document %s: %v", doc.OriginalName, err)
			if err := files.Delete(r.Context(), key); err != nil {
				log.Printf("⚠️  Failed to remove orphaned file %s: %v", key, err)
			}
			utils.RespondError(w, http.StatusInternalServerError, "Failed to save document")
			return
		}

		log.Printf("📄 Document uploaded: %s (%s, %d bytes) for %s", doc.OriginalName, doc.DocumentType, size, property.Address)
		utils.RespondJSON(w, http.StatusCreated, compliance.DocumentResponse(&doc, now, windows))
	}
}

// accessibleDocument loads the {id} document and checks both the property
// scope and the document's access roles.
func accessibleDocument(w http.ResponseWriter, r *http.Request, store *database.Store, claims middleware.UserClaims) (*models.Document, bool) {
	id := chi.URLParam(r, "id")
	doc, err := store.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.RespondError(w, http.StatusNotFound, "Document not found")
			return nil, false
		}
		log.Printf("❌ Failed to load document %s: %v", id, err)
		utils.RespondError(w, http.StatusInternalServerError, "Failed to load document")
		return nil, false
	}
	if _, ok := visibleProperty(w, r, store, claims, doc.PropertyID); !ok {
		return nil, false
	}
	if !access.CanAccessDocument(claims.Role, doc.AccessRoles) {
		log.Printf("❌ %s may not access document %s", claims.Role, doc.ID)
		utils.RespondError(w, http.StatusNotFound, "Document not found")
		return nil, false
	}
	return doc, true
}

func DeleteDocument(store *database.Store, files storage.FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceDocuments, access.ActionDelete)
		if !ok {
			return
		}
		doc, ok := accessibleDocument(w, r, store, claims)
		if !ok {
			return
		}

		if err := store.DeleteDocument(r.Context(), doc.ID); err != nil {
			log.Printf("❌ Failed to delete document %s: %v", doc.ID, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to delete document")
			return
		}
		if err := files.Delete(r.Context(), doc.StorageKey); err != nil {
			log.Printf("⚠️  Failed to delete file %s: %v", doc.StorageKey, err)
		}

		log.Printf("🗑️  Document deleted: %s by %s", doc.OriginalName, claims.Email)
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}
}

// DownloadDocument streams the stored file as an attachment.
func DownloadDocument(store *database.Store, files storage.FileStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceDocuments, access.ActionDownload)
		if !ok {
			return
		}
		doc, ok := accessibleDocument(w, r, store, claims)
		if !ok {
			return
		}

		rc, err := files.Open(r.Context(), doc.StorageKey)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				log.Printf("❌ File for document %s is missing: %s", doc.ID, doc.StorageKey)
				utils.RespondError(w, http.StatusNotFound, "File not found")
				return
			}
			log.Printf("❌ Failed to open %s: %v", doc.StorageKey, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to open file")
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", doc.MimeType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, rc); err != nil {
			log.Printf("⚠️  Download of %s interrupted: %v", doc.ID, err)
		}
	}
}
