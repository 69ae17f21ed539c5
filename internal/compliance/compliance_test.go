package compliance

import (
	"strings"
	"testing"
	"time"

	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func expiringIn(d time.Duration) *int64 {
	u := testNow.Add(d).Unix()
	return &u
}

const day = 24 * time.Hour

func TestExpiryOf(t *testing.T) {
	tests := []struct {
		name       string
		expiry     *int64
		wantStatus ExpiryStatus
		wantDays   int
	}{
		{"no expiry", nil, ExpiryNone, 0},
		{"expired yesterday and a half", expiringIn(-36 * time.Hour), ExpiryExpired, 1},
		{"expired earlier today", expiringIn(-2 * time.Hour), ExpiryExpiring, 0},
		{"later today", expiringIn(2 * time.Hour), ExpiryExpiring, 1},
		{"edge of window", expiringIn(30 * day), ExpiryExpiring, 30},
		{"just outside window", expiringIn(30*day + time.Hour), ExpiryValid, 31},
		{"far out", expiringIn(200 * day), ExpiryValid, 200},
	}
	for _, tt := range tests {
		doc := &models.Document{ExpiryDate: tt.expiry}
		got := ExpiryOf(doc, testNow, DefaultWindows().DocumentExpiringDays)
		if got.Status != tt.wantStatus || got.Days != tt.wantDays {
			t.Errorf("%s: ExpiryOf() = %+v, want {%s %d}", tt.name, got, tt.wantStatus, tt.wantDays)
		}
	}
}

func TestDocumentResponseBadge(t *testing.T) {
	doc := &models.Document{ID: "d1", UploadedAt: testNow.Unix(), ExpiryDate: expiringIn(-3 * day)}
	resp := DocumentResponse(doc, testNow, DefaultWindows())
	if resp.ExpiryStatus != "expired" || resp.ExpiryDays == nil || *resp.ExpiryDays != 3 {
		t.Errorf("DocumentResponse() badge = %q %v, want expired 3", resp.ExpiryStatus, resp.ExpiryDays)
	}
	if resp.ExpiryDateIso == nil {
		t.Error("DocumentResponse() should carry the ISO expiry date")
	}

	undated := &models.Document{ID: "d2"}
	if resp := DocumentResponse(undated, testNow, DefaultWindows()); resp.ExpiryStatus != "" || resp.ExpiryDays != nil {
		t.Errorf("undated document should carry no badge, got %q", resp.ExpiryStatus)
	}
}

func TestDocumentTypes(t *testing.T) {
	tests := []struct {
		typ      models.DocumentType
		label    string
		required bool
		months   int
	}{
		{models.DocGasSafety, "Gas Safety Certificate", true, 12},
		{models.DocElectricalReport, "Electrical Installation Report", true, 60},
		{models.DocEPCCertificate, "Energy Performance Certificate", true, 120},
		{models.DocFireSafety, "Fire Safety Certificate", false, 12},
		{models.DocInsurance, "Property Insurance", true, 12},
		{models.DocTenancyAgreement, "Tenancy Agreement", false, 0},
		{models.DocMOTReport, "MOT Inspection Report", false, 6},
		{models.DocOther, "Other Document", false, 0},
	}
	for _, tt := range tests {
		info, ok := Info(tt.typ)
		if !ok {
			t.Errorf("Info(%s) not found", tt.typ)
			continue
		}
		if info.Label != tt.label || info.Required != tt.required || info.RenewalMonths != tt.months {
			t.Errorf("Info(%s) = %+v, want %q required=%v months=%d", tt.typ, info, tt.label, tt.required, tt.months)
		}
	}
	if IsValidType("passport") {
		t.Error("IsValidType(passport) = true, want false")
	}

	got, ok := SuggestedExpiry(models.DocGasSafety, testNow)
	if !ok || !got.Equal(testNow.AddDate(1, 0, 0)) {
		t.Errorf("SuggestedExpiry(gas-safety) = %v, %v", got, ok)
	}
	if _, ok := SuggestedExpiry(models.DocInventory, testNow); ok {
		t.Error("SuggestedExpiry(inventory) should have no renewal")
	}
}

func TestMissingRequired(t *testing.T) {
	docs := []models.Document{
		{DocumentType: models.DocGasSafety},
		{DocumentType: models.DocEPCCertificate, IsArchived: true},
		{DocumentType: models.DocInsurance},
	}
	missing := MissingRequired(docs)
	if len(missing) != 2 || missing[0].Type != models.DocElectricalReport || missing[1].Type != models.DocEPCCertificate {
		t.Errorf("MissingRequired() = %+v, want electrical-report and epc-certificate", missing)
	}
}

func sampleDocuments() []models.Document {
	adminOnly := models.JSONList[models.Role]{models.RoleAdmin, models.RoleLandlord}
	return []models.Document{
		{ID: "a", Filename: "1-gas.pdf", OriginalName: "Gas Cert 2025.pdf", DocumentType: models.DocGasSafety,
			UploadedAt: 100, ExpiryDate: expiringIn(10 * day), AccessRoles: models.AllRoles},
		{ID: "b", Filename: "2-epc.pdf", OriginalName: "EPC.pdf", DocumentType: models.DocEPCCertificate,
			UploadedAt: 300, AccessRoles: adminOnly},
		{ID: "c", Filename: "3-insurance.pdf", OriginalName: "Buildings Insurance.pdf", DocumentType: models.DocInsurance,
			UploadedAt: 200, ExpiryDate: expiringIn(5 * day), AccessRoles: models.AllRoles},
	}
}

func ids(docs []models.Document) string {
	var s []string
	for _, d := range docs {
		s = append(s, d.ID)
	}
	return strings.Join(s, ",")
}

func TestFilterDocuments(t *testing.T) {
	tests := []struct {
		name   string
		role   models.Role
		filter Filter
		want   string
	}{
		{"landlord sees all", models.RoleLandlord, Filter{}, "a,b,c"},
		{"client limited by access roles", models.RoleClient, Filter{}, "a,c"},
		{"search original name case-insensitive", models.RoleAdmin, Filter{Search: "gas cert"}, "a"},
		{"search stored filename", models.RoleAdmin, Filter{Search: "3-INS"}, "c"},
		{"type filter", models.RoleAdmin, Filter{Type: models.DocEPCCertificate}, "b"},
		{"type all", models.RoleAdmin, Filter{Type: "all"}, "a,b,c"},
	}
	for _, tt := range tests {
		got := ids(FilterDocuments(sampleDocuments(), tt.role, tt.filter))
		if got != tt.want {
			t.Errorf("%s: FilterDocuments() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestSortDocuments(t *testing.T) {
	tests := []struct {
		by   SortBy
		want string
	}{
		{SortByDate, "b,c,a"},
		{"", "b,c,a"},
		{SortByName, "c,b,a"},
		{SortByType, "b,a,c"},
		{SortByExpiry, "c,a,b"},
	}
	for _, tt := range tests {
		docs := sampleDocuments()
		SortDocuments(docs, tt.by)
		if got := ids(docs); got != tt.want {
			t.Errorf("SortDocuments(%q) = %s, want %s", tt.by, got, tt.want)
		}
	}
}

func TestNewUploadedDocument(t *testing.T) {
	expiry := testNow.AddDate(1, 0, 0)
	req := models.CreateDocumentRequest{DocumentType: models.DocGasSafety, ExpiryDate: &expiry}

	landlord := &models.User{ID: "u-landlord", Role: models.RoleLandlord}
	doc := NewUploadedDocument("p1", landlord, req, "gas.pdf", "/uploads/x", "x", "application/pdf", 1024, testNow)

	if doc.Filename != "1740830400000-gas.pdf" {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if len(doc.AccessRoles) != 2 || doc.AccessRoles[0] != models.RoleAdmin || doc.AccessRoles[1] != models.RoleLandlord {
		t.Errorf("landlord upload AccessRoles = %v, want [admin landlord]", doc.AccessRoles)
	}
	if doc.ExpiryDate == nil || *doc.ExpiryDate != expiry.Unix() {
		t.Errorf("ExpiryDate = %v, want %d", doc.ExpiryDate, expiry.Unix())
	}
	if doc.Version != 1 || doc.UploadedByUserID != "u-landlord" || doc.Tags == nil {
		t.Errorf("unexpected document %+v", doc)
	}

	admin := &models.User{ID: "u-admin", Role: models.RoleAdmin}
	doc = NewUploadedDocument("p1", admin, req, "gas.pdf", "/uploads/x", "x", "application/pdf", 1024, testNow)
	if len(doc.AccessRoles) != 3 {
		t.Errorf("admin upload AccessRoles = %v, want all roles", doc.AccessRoles)
	}
}

func TestNewMOTReportDocument(t *testing.T) {
	rep := inspection.Report{
		RecordID: "rec-1",
		Property: inspection.Property{ID: "p1", Address: "12 Oak St, Leeds"},
	}
	doc := NewMOTReportDocument(rep, "inspector-1", "/uploads/r", "r", 512, testNow)

	if doc.Filename != "mot-report-12-Oak-St--Leeds-2025-03-01.txt" {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if doc.OriginalName != "MOT Report - 12 Oak St, Leeds - 01/03/2025" {
		t.Errorf("OriginalName = %q", doc.OriginalName)
	}
	if doc.DocumentType != models.DocMOTReport || doc.UploadedByUserID != "inspector-1" {
		t.Errorf("unexpected document %+v", doc)
	}
	if doc.InspectionID == nil || *doc.InspectionID != "rec-1" {
		t.Errorf("InspectionID = %v, want rec-1", doc.InspectionID)
	}
	if len(doc.AccessRoles) != 3 || strings.Join(doc.Tags, ",") != "mot,inspection,report" {
		t.Errorf("AccessRoles = %v, Tags = %v", doc.AccessRoles, doc.Tags)
	}
	if doc.Description == nil || *doc.Description != "MOT inspection report completed on 01/03/2025" {
		t.Errorf("Description = %v", doc.Description)
	}
}

func samplePortfolio() []PropertyDocuments {
	return []PropertyDocuments{
		{
			Property: models.Property{ID: "p1", Address: "12 Oak St", Type: "house", MOTStatus: models.MOTPassed},
			Documents: []models.Document{
				{ID: "d1", OriginalName: "EPC.pdf", DocumentType: models.DocEPCCertificate,
					EPCRating: ptr("C"), EPCScore: ptr(72), ExpiryDate: expiringIn(300 * day)},
				{ID: "d2", OriginalName: "Gas.pdf", DocumentType: models.DocGasSafety, ExpiryDate: expiringIn(45 * day)},
			},
		},
		{
			Property: models.Property{ID: "p2", Address: "4 Elm Rd", Type: "flat", MOTStatus: models.MOTFailed},
			Documents: []models.Document{
				{ID: "d3", OriginalName: "EPC old.pdf", DocumentType: models.DocEPCCertificate,
					EPCRating: ptr("B"), EPCScore: ptr(85), ExpiryDate: expiringIn(2000 * day)},
				{ID: "d4", OriginalName: "Insurance.pdf", DocumentType: models.DocInsurance, ExpiryDate: expiringIn(-5 * day)},
				{ID: "d5", OriginalName: "Electrical.pdf", DocumentType: models.DocElectricalReport, ExpiryDate: expiringIn(120 * day)},
			},
		},
		{
			Property: models.Property{ID: "p3", Address: "9 Ash Ave", Type: "bungalow", MOTStatus: models.MOTNeedsReview},
		},
	}
}

func TestStats(t *testing.T) {
	got := Stats(samplePortfolio(), testNow)
	want := PortfolioStats{TotalProperties: 3, AverageEPCScore: 52, ComplianceRate: 33, TotalDocuments: 5}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
	if got := Stats(nil, testNow); got != (PortfolioStats{}) {
		t.Errorf("Stats(nil) = %+v, want zero", got)
	}
}

func TestPortfolioOverviewText(t *testing.T) {
	text := PortfolioOverview(samplePortfolio(), testNow).Text()
	want := "Portfolio Overview Report - Generated: 01/03/2025, 12:00:00\n\n" +
		"Total Properties: 3\nPassed MOTs: 1\nFailed MOTs: 1\nNeeds Review: 1\n\n" +
		"Property List:\n" +
		"- 12 Oak St (house) - Status: passed\n" +
		"- 4 Elm Rd (flat) - Status: failed\n" +
		"- 9 Ash Ave (bungalow) - Status: needs-review"
	if text != want {
		t.Errorf("Text() =\n%s\nwant\n%s", text, want)
	}
}

func TestOverdueCountsAsNeitherPassedNorFailed(t *testing.T) {
	past := testNow.Add(-day).Unix()
	portfolio := []PropertyDocuments{{Property: models.Property{ID: "p", MOTStatus: models.MOTPassed, NextDue: &past}}}
	rep := PortfolioOverview(portfolio, testNow)
	if rep.Passed != 0 || rep.Properties[0].Status != models.MOTOverdue {
		t.Errorf("overdue property reported as %+v", rep)
	}
}

func TestComplianceText(t *testing.T) {
	text := Compliance(samplePortfolio(), testNow).Text()
	if !strings.HasPrefix(text, "Compliance Report - Generated: 01/03/2025, 12:00:00\n\nCompliance Summary:\n") {
		t.Errorf("unexpected header:\n%s", text)
	}
	if !strings.Contains(text, "4 Elm Rd: FAILED (missing: Gas Safety Certificate)") {
		t.Errorf("missing failed line:\n%s", text)
	}
	if !strings.Contains(text, "9 Ash Ave: NEEDS-REVIEW (missing: Gas Safety Certificate, Electrical Installation Report, Energy Performance Certificate, Property Insurance)") {
		t.Errorf("missing needs-review line:\n%s", text)
	}
}

func TestDocumentExpiry(t *testing.T) {
	rep := DocumentExpiry(samplePortfolio(), testNow, DefaultWindows())
	var got []string
	for _, d := range rep.Documents {
		got = append(got, d.DocumentID)
	}
	if strings.Join(got, ",") != "d2,d4" {
		t.Errorf("DocumentExpiry() rows = %v, want d2,d4", got)
	}

	text := rep.Text()
	want := "Document Expiry Report - Generated: 01/03/2025, 12:00:00\n\nExpiring Documents:\n" +
		"12 Oak St: Gas.pdf - Expires: 2025-04-15\n" +
		"4 Elm Rd: Insurance.pdf - Expires: 2025-02-24"
	if text != want {
		t.Errorf("Text() =\n%s\nwant\n%s", text, want)
	}
}

func TestEPCReport(t *testing.T) {
	portfolio := samplePortfolio()
	portfolio[2].Documents = []models.Document{{ID: "d6", DocumentType: models.DocEPCCertificate}}

	rep := EPC(portfolio, testNow, DefaultWindows(), EPCOptions{Rating: "all", Sort: "score"})
	if rep.Summary.Certificates != 3 || rep.Summary.AverageScore != 52 {
		t.Errorf("summary = %+v", rep.Summary)
	}
	if rep.Summary.RatingDistribution["Unknown"] != 1 || rep.Summary.RatingDistribution["B"] != 1 {
		t.Errorf("distribution = %v", rep.Summary.RatingDistribution)
	}
	if rep.Summary.MostCommonRating != "B" {
		t.Errorf("MostCommonRating = %s, want B on tie", rep.Summary.MostCommonRating)
	}

	var order []string
	for _, r := range rep.Rows {
		order = append(order, r.DocumentID)
	}
	if strings.Join(order, ",") != "d3,d1,d6" {
		t.Errorf("score order = %v", order)
	}
	if !rep.Rows[1].RenewalDue || rep.Rows[0].RenewalDue {
		t.Error("renewal notice should apply within a year only")
	}

	rep = EPC(portfolio, testNow, DefaultWindows(), EPCOptions{Rating: "all", Sort: "rating"})
	if rep.Rows[0].DocumentID != "d3" || rep.Rows[2].DocumentID != "d6" {
		t.Error("rating sort should put missing ratings last")
	}

	rep = EPC(portfolio, testNow, DefaultWindows(), EPCOptions{Rating: "C"})
	if len(rep.Rows) != 1 || rep.Rows[0].DocumentID != "d1" || rep.Summary.Certificates != 3 {
		t.Errorf("rating filter rows = %d, summary = %d", len(rep.Rows), rep.Summary.Certificates)
	}
	if !strings.Contains(rep.Text(), "- 12 Oak St (house) - Rating: C, Score: 72, Expires: 2025-12-26 [renewal due]") {
		t.Errorf("unexpected text:\n%s", rep.Text())
	}
}

func TestWindowsNextDue(t *testing.T) {
	got := DefaultWindows().NextDue(testNow)
	if !got.Equal(time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("NextDue() = %v", got)
	}
}
