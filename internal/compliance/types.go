// Package compliance covers certificate bookkeeping: document types and
// their renewal periods, expiry windows, document listing rules, the saved
// MOT report document and the landlord text reports.
package compliance

import (
	"time"

	"melhado-backend/internal/models"
)

// TypeInfo describes a document type. RenewalMonths is zero for documents
// that never need renewing.
type TypeInfo struct {
	Type          models.DocumentType `json:"type"`
	Label         string              `json:"label"`
	Required      bool                `json:"required"`
	RenewalMonths int                 `json:"renewalMonths,omitempty"`
}

// DocumentTypes is the catalogue in display order.
var DocumentTypes = []TypeInfo{
	{models.DocGasSafety, "Gas Safety Certificate", true, 12},
	{models.DocElectricalReport, "Electrical Installation Report", true, 60},
	{models.DocEPCCertificate, "Energy Performance Certificate", true, 120},
	{models.DocFireSafety, "Fire Safety Certificate", false, 12},
	{models.DocInsurance, "Property Insurance", true, 12},
	{models.DocTenancyAgreement, "Tenancy Agreement", false, 0},
	{models.DocInventory, "Property Inventory", false, 0},
	{models.DocMOTReport, "MOT Inspection Report", false, 6},
	{models.DocOther, "Other Document", false, 0},
}

// Info looks up a document type.
func Info(t models.DocumentType) (TypeInfo, bool) {
	for _, info := range DocumentTypes {
		if info.Type == t {
			return info, true
		}
	}
	return TypeInfo{}, false
}

func IsValidType(t models.DocumentType) bool {
	_, ok := Info(t)
	return ok
}

// SuggestedExpiry is the renewal date implied by the type's renewal period.
func SuggestedExpiry(t models.DocumentType, from time.Time) (time.Time, bool) {
	info, ok := Info(t)
	if !ok || info.RenewalMonths == 0 {
		return time.Time{}, false
	}
	return from.AddDate(0, info.RenewalMonths, 0), true
}

// MissingRequired lists required types with no live (unarchived) document.
func MissingRequired(docs []models.Document) []TypeInfo {
	have := make(map[models.DocumentType]bool)
	for _, d := range docs {
		if !d.IsArchived {
			have[d.DocumentType] = true
		}
	}
	var missing []TypeInfo
	for _, info := range DocumentTypes {
		if info.Required && !have[info.Type] {
			missing = append(missing, info)
		}
	}
	return missing
}

// EPC ratings from best to worst.
var EPCRatings = []string{"A", "B", "C", "D", "E", "F", "G"}

func IsValidEPCRating(r string) bool {
	for _, v := range EPCRatings {
		if v == r {
			return true
		}
	}
	return false
}
