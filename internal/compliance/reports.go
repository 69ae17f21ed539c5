package compliance

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"melhado-backend/internal/models"
)

// ReportType names a downloadable landlord report.
type ReportType string

const (
	ReportPortfolioOverview ReportType = "portfolio-overview"
	ReportCompliance        ReportType = "compliance-report"
	ReportDocumentExpiry    ReportType = "document-expiry"
	ReportEPC               ReportType = "epc-report"
)

func (t ReportType) IsValid() bool {
	switch t {
	case ReportPortfolioOverview, ReportCompliance, ReportDocumentExpiry, ReportEPC:
		return true
	}
	return false
}

// PropertyDocuments is a property together with its compliance documents,
// the input to every report.
type PropertyDocuments struct {
	Property  models.Property
	Documents []models.Document
}

const generatedLayout = "02/01/2006, 15:04:05"
const dateLayout = "2006-01-02"

// live skips archived documents.
func live(docs []models.Document) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if !d.IsArchived {
			out = append(out, d)
		}
	}
	return out
}

// PortfolioStats are the headline figures on the reports page.
type PortfolioStats struct {
	TotalProperties int `json:"totalProperties"`
	AverageEPCScore int `json:"averageEPCScore"`
	ComplianceRate  int `json:"complianceRate"`
	TotalDocuments  int `json:"totalDocuments"`
}

// Stats averages the first EPC score of each property, counting properties
// without one as zero.
func Stats(portfolio []PropertyDocuments, now time.Time) PortfolioStats {
	stats := PortfolioStats{TotalProperties: len(portfolio)}
	if len(portfolio) == 0 {
		return stats
	}
	var scoreSum, passed int
	for _, pd := range portfolio {
		docs := live(pd.Documents)
		stats.TotalDocuments += len(docs)
		for _, d := range docs {
			if d.DocumentType == models.DocEPCCertificate {
				if d.EPCScore != nil {
					scoreSum += *d.EPCScore
				}
				break
			}
		}
		if pd.Property.EffectiveStatus(now) == models.MOTPassed {
			passed++
		}
	}
	n := float64(len(portfolio))
	stats.AverageEPCScore = int(math.Round(float64(scoreSum) / n))
	stats.ComplianceRate = int(math.Round(float64(passed) / n * 100))
	return stats
}

type PortfolioRow struct {
	PropertyID string           `json:"propertyId"`
	Address    string           `json:"address"`
	Type       string           `json:"type"`
	Status     models.MOTStatus `json:"status"`
}

type PortfolioReport struct {
	GeneratedAt     time.Time      `json:"generatedAt"`
	TotalProperties int            `json:"totalProperties"`
	Passed          int            `json:"passed"`
	Failed          int            `json:"failed"`
	NeedsReview     int            `json:"needsReview"`
	Properties      []PortfolioRow `json:"properties"`
}

func PortfolioOverview(portfolio []PropertyDocuments, now time.Time) PortfolioReport {
	rep := PortfolioReport{
		GeneratedAt:     now,
		TotalProperties: len(portfolio),
		Properties:      make([]PortfolioRow, 0, len(portfolio)),
	}
	for _, pd := range portfolio {
		status := pd.Property.EffectiveStatus(now)
		switch status {
		case models.MOTPassed:
			rep.Passed++
		case models.MOTFailed:
			rep.Failed++
		case models.MOTNeedsReview:
			rep.NeedsReview++
		}
		rep.Properties = append(rep.Properties, PortfolioRow{
			PropertyID: pd.Property.ID,
			Address:    pd.Property.Address,
			Type:       string(pd.Property.Type),
			Status:     status,
		})
	}
	return rep
}

func (r PortfolioReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio Overview Report - Generated: %s\n\n", r.GeneratedAt.Format(generatedLayout))
	fmt.Fprintf(&b, "Total Properties: %d\n", r.TotalProperties)
	fmt.Fprintf(&b, "Passed MOTs: %d\n", r.Passed)
	fmt.Fprintf(&b, "Failed MOTs: %d\n", r.Failed)
	fmt.Fprintf(&b, "Needs Review: %d\n\n", r.NeedsReview)
	b.WriteString("Property List:\n")
	lines := make([]string, 0, len(r.Properties))
	for _, p := range r.Properties {
		lines = append(lines, fmt.Sprintf("- %s (%s) - Status: %s", p.Address, p.Type, p.Status))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

type ComplianceRow struct {
	PropertyID string           `json:"propertyId"`
	Address    string           `json:"address"`
	Status     models.MOTStatus `json:"status"`
	Missing    []TypeInfo       `json:"missingDocuments"`
}

type ComplianceReport struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Properties  []ComplianceRow `json:"properties"`
}

// Compliance lists each property's MOT status and the required certificates
// it has no document for.
func Compliance(portfolio []PropertyDocuments, now time.Time) ComplianceReport {
	rep := ComplianceReport{GeneratedAt: now, Properties: make([]ComplianceRow, 0, len(portfolio))}
	for _, pd := range portfolio {
		missing := MissingRequired(pd.Documents)
		if missing == nil {
			missing = []TypeInfo{}
		}
		rep.Properties = append(rep.Properties, ComplianceRow{
			PropertyID: pd.Property.ID,
			Address:    pd.Property.Address,
			Status:     pd.Property.EffectiveStatus(now),
			Missing:    missing,
		})
	}
	return rep
}

func (r ComplianceReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compliance Report - Generated: %s\n\n", r.GeneratedAt.Format(generatedLayout))
	b.WriteString("Compliance Summary:\n")
	lines := make([]string, 0, len(r.Properties))
	for _, p := range r.Properties {
		line := fmt.Sprintf("%s: %s", p.Address, strings.ToUpper(string(p.Status)))
		if len(p.Missing) > 0 {
			labels := make([]string, 0, len(p.Missing))
			for _, m := range p.Missing {
				labels = append(labels, m.Label)
			}
			line += " (missing: " + strings.Join(labels, ", ") + ")"
		}
		lines = append(lines, line)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

type ExpiryRow struct {
	PropertyID   string              `json:"propertyId"`
	Address      string              `json:"address"`
	DocumentID   string              `json:"documentId"`
	OriginalName string              `json:"originalName"`
	DocumentType models.DocumentType `json:"documentType"`
	ExpiryDate   time.Time           `json:"expiryDate"`
	Status       ExpiryStatus        `json:"status"`
	Days         int                 `json:"days"`
}

type ExpiryReport struct {
	GeneratedAt time.Time   `json:"generatedAt"`
	WindowDays  int         `json:"windowDays"`
	Documents   []ExpiryRow `json:"documents"`
}

// DocumentExpiry lists dated documents expiring within the report window,
// including those already expired, in portfolio order.
func DocumentExpiry(portfolio []PropertyDocuments, now time.Time, w Windows) ExpiryReport {
	rep := ExpiryReport{GeneratedAt: now, WindowDays: w.ExpiryReportDays, Documents: []ExpiryRow{}}
	for _, pd := range portfolio {
		for _, d := range live(pd.Documents) {
			e := ExpiryOf(&d, now, w.ExpiryReportDays)
			if e.Status != ExpiryExpired && e.Status != ExpiryExpiring {
				continue
			}
			t, _ := d.Expiry()
			rep.Documents = append(rep.Documents, ExpiryRow{
				PropertyID:   pd.Property.ID,
				Address:      pd.Property.Address,
				DocumentID:   d.ID,
				OriginalName: d.OriginalName,
				DocumentType: d.DocumentType,
				ExpiryDate:   t,
				Status:       e.Status,
				Days:         e.Days,
			})
		}
	}
	return rep
}

func (r ExpiryReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document Expiry Report - Generated: %s\n\n", r.GeneratedAt.Format(generatedLayout))
	b.WriteString("Expiring Documents:\n")
	lines := make([]string, 0, len(r.Documents))
	for _, d := range r.Documents {
		lines = append(lines, fmt.Sprintf("%s: %s - Expires: %s", d.Address, d.OriginalName, d.ExpiryDate.Format(dateLayout)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

type EPCRow struct {
	PropertyID      string     `json:"propertyId"`
	Address         string     `json:"address"`
	PropertyType    string     `json:"propertyType"`
	DocumentID      string     `json:"documentId"`
	OriginalName    string     `json:"originalName"`
	Rating          *string    `json:"rating,omitempty"`
	Score           *int       `json:"score,omitempty"`
	ExpiryDate      *time.Time `json:"expiryDate,omitempty"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry,omitempty"`
	RenewalDue      bool       `json:"renewalDue"`
}

type EPCSummary struct {
	Certificates       int            `json:"certificates"`
	AverageScore       int            `json:"averageScore"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
	MostCommonRating   string         `json:"mostCommonRating"`
}

type EPCReport struct {
	GeneratedAt time.Time  `json:"generatedAt"`
	Summary     EPCSummary `json:"summary"`
	Rows        []EPCRow   `json:"rows"`
}

// EPCOptions filter and order the certificate table. Rating is "all" or
// A to G; Sort is address, rating, score or expiry.
type EPCOptions struct {
	Rating string
	Sort   string
}

// EPC builds the certificate table. The summary always covers every
// certificate; only the rows are filtered.
func EPC(portfolio []PropertyDocuments, now time.Time, w Windows, opts EPCOptions) EPCReport {
	var all []EPCRow
	for _, pd := range portfolio {
		for _, d := range live(pd.Documents) {
			if d.DocumentType != models.DocEPCCertificate {
				continue
			}
			row := EPCRow{
				PropertyID:   pd.Property.ID,
				Address:      pd.Property.Address,
				PropertyType: string(pd.Property.Type),
				DocumentID:   d.ID,
				OriginalName: d.OriginalName,
				Rating:       d.EPCRating,
				Score:        d.EPCScore,
			}
			if t, ok := d.Expiry(); ok {
				days := DaysUntil(t, now)
				row.ExpiryDate = &t
				row.DaysUntilExpiry = &days
				row.RenewalDue = days <= w.EPCNoticeDays
			}
			all = append(all, row)
		}
	}

	rep := EPCReport{GeneratedAt: now, Summary: summarizeEPC(all), Rows: []EPCRow{}}
	for _, row := range all {
		if opts.Rating == "" || opts.Rating == "all" || (row.Rating != nil && *row.Rating == opts.Rating) {
			rep.Rows = append(rep.Rows, row)
		}
	}
	sortEPCRows(rep.Rows, opts.Sort)
	return rep
}

func summarizeEPC(rows []EPCRow) EPCSummary {
	s := EPCSummary{Certificates: len(rows), RatingDistribution: map[string]int{}, MostCommonRating: "N/A"}
	if len(rows) == 0 {
		return s
	}
	var sum int
	for _, r := range rows {
		if r.Score != nil {
			sum += *r.Score
		}
		rating := "Unknown"
		if r.Rating != nil && *r.Rating != "" {
			rating = *r.Rating
		}
		s.RatingDistribution[rating]++
	}
	s.AverageScore = int(math.Round(float64(sum) / float64(len(rows))))

	// Ties go to the better rating.
	best := 0
	for _, rating := range append(append([]string{}, EPCRatings...), "Unknown") {
		if n := s.RatingDistribution[rating]; n > best {
			best = n
			s.MostCommonRating = rating
		}
	}
	return s
}

func ratingKey(r *string) string {
	if r == nil || *r == "" {
		return "Z"
	}
	return *r
}

func scoreOf(s *int) int {
	if s == nil {
		return 0
	}
	return *s
}

func sortEPCRows(rows []EPCRow, by string) {
	slices.SortStableFunc(rows, func(a, b EPCRow) int {
		switch by {
		case "rating":
			return strings.Compare(ratingKey(a.Rating), ratingKey(b.Rating))
		case "score":
			return scoreOf(b.Score) - scoreOf(a.Score)
		case "expiry":
			switch {
			case a.ExpiryDate == nil && b.ExpiryDate == nil:
				return 0
			case a.ExpiryDate == nil:
				return 1
			case b.ExpiryDate == nil:
				return -1
			}
			return a.ExpiryDate.Compare(*b.ExpiryDate)
		default:
			return strings.Compare(a.Address, b.Address)
		}
	})
}

func (r EPCReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "EPC Portfolio Report - Generated: %s\n\n", r.GeneratedAt.Format(generatedLayout))
	fmt.Fprintf(&b, "Certificates: %d\n", r.Summary.Certificates)
	fmt.Fprintf(&b, "Average EPC Score: %d\n", r.Summary.AverageScore)
	fmt.Fprintf(&b, "Most Common Rating: %s\n\n", r.Summary.MostCommonRating)
	b.WriteString("Rating Distribution:\n")
	for _, rating := range EPCRatings {
		fmt.Fprintf(&b, "%s: %d\n", rating, r.Summary.RatingDistribution[rating])
	}
	b.WriteString("\nCertificates:\n")
	lines := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rating, score, expires := "N/A", "N/A", "N/A"
		if row.Rating != nil {
			rating = *row.Rating
		}
		if row.Score != nil {
			score = fmt.Sprint(*row.Score)
		}
		if row.ExpiryDate != nil {
			expires = row.ExpiryDate.Format(dateLayout)
		}
		line := fmt.Sprintf("- %s (%s) - Rating: %s, Score: %s, Expires: %s", row.Address, row.PropertyType, rating, score, expires)
		if row.RenewalDue {
			line += " [renewal due]"
		}
		lines = append(lines, line)
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
