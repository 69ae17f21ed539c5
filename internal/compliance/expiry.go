package compliance

import (
	"math"
	"time"

	"melhado-backend/internal/models"
)

// Windows are the named expiry thresholds, in days, plus the MOT interval.
type Windows struct {
	DocumentExpiringDays     int // badge on a document card
	ExpiryReportDays         int // rows in the document-expiry report
	EPCNoticeDays            int // EPC renewal notice
	InspectionIntervalMonths int // next MOT due after a submission
}

func DefaultWindows() Windows {
	return Windows{
		DocumentExpiringDays:     30,
		ExpiryReportDays:         90,
		EPCNoticeDays:            365,
		InspectionIntervalMonths: 6,
	}
}

// NextDue returns the date of the next MOT after one submitted at from.
func (w Windows) NextDue(from time.Time) time.Time {
	return from.AddDate(0, w.InspectionIntervalMonths, 0)
}

type ExpiryStatus string

const (
	ExpiryNone     ExpiryStatus = ""
	ExpiryExpired  ExpiryStatus = "expired"
	ExpiryExpiring ExpiryStatus = "expiring"
	ExpiryValid    ExpiryStatus = "valid"
)

// Expiry is a document's expiry state. Days is the number of days until
// expiry, or since expiry for an expired document.
type Expiry struct {
	Status ExpiryStatus `json:"status"`
	Days   int          `json:"days"`
}

// DaysUntil rounds the time to expiry up to whole days. A document that
// expires later today counts as 1 day out; one that expired earlier today is 0.
func DaysUntil(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// ExpiryOf classifies a document against a window of days.
func ExpiryOf(doc *models.Document, now time.Time, windowDays int) Expiry {
	t, ok := doc.Expiry()
	if !ok {
		return Expiry{Status: ExpiryNone}
	}
	days := DaysUntil(t, now)
	switch {
	case days < 0:
		return Expiry{Status: ExpiryExpired, Days: -days}
	case days <= windowDays:
		return Expiry{Status: ExpiryExpiring, Days: days}
	default:
		return Expiry{Status: ExpiryValid, Days: days}
	}
}

// DocumentResponse renders a document with its card expiry badge.
func DocumentResponse(doc *models.Document, now time.Time, w Windows) models.DocumentResponse {
	resp := doc.ToDocumentResponse()
	if e := ExpiryOf(doc, now, w.DocumentExpiringDays); e.Status != ExpiryNone {
		resp.ExpiryStatus = string(e.Status)
		days := e.Days
		resp.ExpiryDays = &days
	}
	return resp
}
