package models

import "time"

// DocumentType classifies a compliance document.
type DocumentType string

const (
	DocGasSafety        DocumentType = "gas-safety"
	DocElectricalReport DocumentType = "electrical-report"
	DocEPCCertificate   DocumentType = "epc-certificate"
	DocFireSafety       DocumentType = "fire-safety"
	DocInsurance        DocumentType = "insurance"
	DocTenancyAgreement DocumentType = "tenancy-agreement"
	DocInventory        DocumentType = "inventory"
	DocMOTReport        DocumentType = "mot-report"
	DocOther            DocumentType = "other"
)

// Document is an uploaded certificate or a saved MOT report.
type Document struct {
	ID               string           `json:"id" db:"id"`
	PropertyID       string           `json:"property_id" db:"property_id"`
	InspectionID     *string          `json:"inspection_id,omitempty" db:"inspection_id"`
	Filename         string           `json:"filename" db:"filename"`
	OriginalName     string           `json:"original_name" db:"original_name"`
	URL              string           `json:"url" db:"url"`
	StorageKey       string           `json:"-" db:"storage_key"`
	UploadedByUserID string           `json:"uploaded_by_user_id" db:"uploaded_by"`
	UploadedAt       int64            `json:"uploaded_at" db:"uploaded_at"`
	DocumentType     DocumentType     `json:"document_type" db:"document_type"`
	ExpiryDate       *int64           `json:"expiry_date,omitempty" db:"expiry_date"`
	EPCRating        *string          `json:"epc_rating,omitempty" db:"epc_rating"`
	EPCScore         *int             `json:"epc_score,omitempty" db:"epc_score"`
	AccessRoles      JSONList[Role]   `json:"access_roles" db:"access_roles"`
	Tags             JSONList[string] `json:"tags" db:"tags"`
	FileSize         int64            `json:"file_size" db:"file_size"`
	MimeType         string           `json:"mime_type" db:"mime_type"`
	IsArchived       bool             `json:"is_archived" db:"is_archived"`
	Version          int              `json:"version" db:"version"`
	Description      *string          `json:"description,omitempty" db:"description"`
}

// Expiry returns the expiry date as a time, if set.
func (d *Document) Expiry() (time.Time, bool) {
	if d.ExpiryDate == nil {
		return time.Time{}, false
	}
	return time.Unix(*d.ExpiryDate, 0).UTC(), true
}

type DocumentResponse struct {
	Document
	UploadedAtIso string  `json:"uploaded_at_iso"`
	ExpiryDateIso *string `json:"expiry_date_iso,omitempty"`
	ExpiryStatus  string  `json:"expiry_status,omitempty"`
	ExpiryDays    *int    `json:"expiry_days,omitempty"`
}

func (d *Document) ToDocumentResponse() DocumentResponse {
	resp := DocumentResponse{
		Document:      *d,
		UploadedAtIso: time.Unix(d.UploadedAt, 0).UTC().Format(time.RFC3339),
	}
	if t, ok := d.Expiry(); ok {
		iso := t.Format(time.RFC3339)
		resp.ExpiryDateIso = &iso
	}
	return resp
}

// CreateDocumentRequest carries the form fields of a document upload.
type CreateDocumentRequest struct {
	DocumentType DocumentType
	ExpiryDate   *time.Time
	EPCRating    *string
	EPCScore     *int
	Description  *string
	Tags         []string
}
