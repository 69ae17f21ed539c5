package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"melhado-backend/internal/access"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/database"
	"melhado-backend/internal/middleware"
	"melhado-backend/pkg/utils"
)

// portfolioFor gathers the caller's properties with the documents their role
// may see.
func portfolioFor(ctx context.Context, store *database.Store, claims middleware.UserClaims) ([]compliance.PropertyDocuments, error) {
	properties, err := store.ListProperties(ctx, propertyFilterFor(claims))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.ID)
	}
	docs, err := store.DocumentsByProperty(ctx, ids)
	if err != nil {
		return nil, err
	}

	portfolio := make([]compliance.PropertyDocuments, 0, len(properties))
	for _, p := range properties {
		portfolio = append(portfolio, compliance.PropertyDocuments{
			Property:  p,
			Documents: compliance.FilterDocuments(docs[p.ID], claims.Role, compliance.Filter{}),
		})
	}
	return portfolio, nil
}

// textReport is satisfied by every compliance report.
type textReport interface {
	Text() string
}

// GetReport builds one of the portfolio reports over the caller's properties.
// ?format=text returns a download; the EPC report also takes rating and sort.
func GetReport(store *database.Store, windows compliance.Windows) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := authorize(w, r, access.ResourceReports, access.ActionRead)
		if !ok {
			return
		}

		reportType := compliance.ReportType(chi.URLParam(r, "type"))
		if !reportType.IsValid() {
			utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("Unknown report %q", reportType))
			return
		}

		portfolio, err := portfolioFor(r.Context(), store, claims)
		if err != nil {
			log.Printf("❌ Failed to load portfolio for %s: %v", claims.Email, err)
			utils.RespondError(w, http.StatusInternalServerError, "Failed to build report")
			return
		}

		now := time.Now()
		q := r.URL.Query()
		var report textReport
		switch reportType {
		case compliance.ReportPortfolioOverview:
			report = compliance.PortfolioOverview(portfolio, now)
		case compliance.ReportCompliance:
			report = compliance.Compliance(portfolio, now)
		case compliance.ReportDocumentExpiry:
			report = compliance.DocumentExpiry(portfolio, now, windows)
		case compliance.ReportEPC:
			rating := q.Get("rating")
			if rating != "" && rating != "all" && !compliance.IsValidEPCRating(rating) {
				utils.RespondError(w, http.StatusBadRequest, "rating must be 'all' or A to G")
				return
			}
			report = compliance.EPC(portfolio, now, windows, compliance.EPCOptions{Rating: rating, Sort: q.Get("sort")})
		}

		log.Printf("📊 %s report for %s (%d properties)", reportType, claims.Email, len(portfolio))

		if q.Get("format") == "text" {
			filename := fmt.Sprintf("%s-%s.txt", reportType, now.UTC().Format("2006-01-02"))
			utils.RespondText(w, http.StatusOK, report.Text(), filename)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"type":   reportType,
			"stats":  compliance.Stats(portfolio, now),
			"report": report,
		})
	}
}
