package compliance

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"melhado-backend/internal/access"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
)

// Filter selects documents for a listing.
type Filter struct {
	Search string              // matched against filename and original name
	Type   models.DocumentType // "" or "all" for every type
}

// FilterDocuments keeps the documents role may see that match f.
func FilterDocuments(docs []models.Document, role models.Role, f Filter) []models.Document {
	search := strings.ToLower(f.Search)
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if !access.CanAccessDocument(role, d.AccessRoles) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Filename), search) &&
			!strings.Contains(strings.ToLower(d.OriginalName), search) {
			continue
		}
		if f.Type != "" && f.Type != "all" && d.DocumentType != f.Type {
			continue
		}
		out = append(out, d)
	}
	return out
}

type SortBy string

const (
	SortByName   SortBy = "name"
	SortByDate   SortBy = "date"
	SortByType   SortBy = "type"
	SortByExpiry SortBy = "expiry"
)

// SortDocuments sorts in place. Date is newest first; expiry puts undated
// documents last. Unknown keys sort by date.
func SortDocuments(docs []models.Document, by SortBy) {
	slices.SortStableFunc(docs, func(a, b models.Document) int {
		switch by {
		case SortByName:
			return strings.Compare(a.OriginalName, b.OriginalName)
		case SortByType:
			return strings.Compare(string(a.DocumentType), string(b.DocumentType))
		case SortByExpiry:
			switch {
			case a.ExpiryDate == nil && b.ExpiryDate == nil:
				return 0
			case a.ExpiryDate == nil:
				return 1
			case b.ExpiryDate == nil:
				return -1
			}
			return cmpInt64(*a.ExpiryDate, *b.ExpiryDate)
		default:
			return cmpInt64(b.UploadedAt, a.UploadedAt)
		}
	})
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// UploadAccessRoles is the access list given to an uploaded document. Admin
// uploads are shared with inspectors; landlord uploads are not.
func UploadAccessRoles(uploader models.Role) []models.Role {
	if uploader == models.RoleAdmin {
		return []models.Role{models.RoleAdmin, models.RoleLandlord, models.RoleClient}
	}
	return []models.Role{models.RoleAdmin, models.RoleLandlord}
}

// NewUploadedDocument builds the metadata row for an uploaded file.
func NewUploadedDocument(propertyID string, uploader *models.User, req models.CreateDocumentRequest,
	originalName, url, storageKey, mimeType string, size int64, now time.Time) models.Document {
	doc := models.Document{
		ID:               uuid.NewString(),
		PropertyID:       propertyID,
		Filename:         StoredFilename(originalName, now),
		OriginalName:     originalName,
		URL:              url,
		StorageKey:       storageKey,
		UploadedByUserID: uploader.ID,
		UploadedAt:       now.Unix(),
		DocumentType:     req.DocumentType,
		EPCRating:        req.EPCRating,
		EPCScore:         req.EPCScore,
		AccessRoles:      UploadAccessRoles(uploader.Role),
		Tags:             models.JSONList[string](req.Tags),
		FileSize:         size,
		MimeType:         mimeType,
		Version:          1,
		Description:      req.Description,
	}
	if doc.Tags == nil {
		doc.Tags = models.JSONList[string]{}
	}
	if req.ExpiryDate != nil {
		u := req.ExpiryDate.Unix()
		doc.ExpiryDate = &u
	}
	return doc
}

// StoredFilename prefixes the upload time in milliseconds so repeated uploads
// of the same file do not collide.
func StoredFilename(originalName string, now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), originalName)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// MOTReportFilename is the stored name of a saved MOT report.
func MOTReportFilename(address string, now time.Time) string {
	return fmt.Sprintf("mot-report-%s-%s.txt",
		unsafeFilenameChars.ReplaceAllString(address, "-"), now.UTC().Format("2006-01-02"))
}

// NewMOTReportDocument builds the document a submitted inspection is saved as.
// The report is shared with every role.
func NewMOTReportDocument(rep inspection.Report, inspectorID, url, storageKey string, size int64, now time.Time) models.Document {
	date := now.UTC().Format("02/01/2006")
	desc := "MOT inspection report completed on " + date
	recordID := rep.RecordID
	return models.Document{
		ID:               uuid.NewString(),
		PropertyID:       rep.Property.ID,
		InspectionID:     &recordID,
		Filename:         MOTReportFilename(rep.Property.Address, now),
		OriginalName:     fmt.Sprintf("MOT Report - %s - %s", rep.Property.Address, date),
		URL:              url,
		StorageKey:       storageKey,
		UploadedByUserID: inspectorID,
		UploadedAt:       now.Unix(),
		DocumentType:     models.DocMOTReport,
		AccessRoles:      models.JSONList[models.Role](models.AllRoles),
		Tags:             models.JSONList[string]{"mot", "inspection", "report"},
		FileSize:         size,
		MimeType:         "text/plain; charset=utf-8",
		Version:          1,
		Description:      &desc,
	}
}
