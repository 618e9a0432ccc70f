package handler

import (
	"net/http"
	"strconv"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/analytics"
)

const (
	defaultReportDays = 90
	maxReportDays     = 3650
	maxCompareLimit   = 200
	maxFTPTestMonths  = 36
)

type Analytics struct {
	athleteResolver
	service analytics.Service
}

func NewAnalytics(athletes repository.AthleteRepository, service analytics.Service) *Analytics {
	return &Analytics{
		athleteResolver: athleteResolver{athletes: athletes},
		service:         service,
	}
}

// HandlePersonalRecords handles GET /api/athletes/{athleteID}/personal-records requests.
func (h *Analytics) HandlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	summary, err := h.service.RecordsSummary(r.Context(), athleteID)
	writeReport(r.Context(), w, summary, err)
}

// HandleTrainingLoad handles GET /api/athletes/{athleteID}/training-load requests.
func (h *Analytics) HandleTrainingLoad(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	days, appErr := intQuery(r, "days", defaultReportDays, 1, maxReportDays)
	if appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}
	load, err := h.service.TrainingLoad(r.Context(), athleteID, days)
	writeReport(r.Context(), w, load, err)
}

// HandleCompareTSS handles GET /api/athletes/{athleteID}/compare-tss requests.
func (h *Analytics) HandleCompareTSS(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	limit, appErr := intQuery(r, "limit", analytics.DefaultComparisonLimit, 1, maxCompareLimit)
	if appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}
	comparison, err := h.service.CompareWithVendor(r.Context(), athleteID, limit)
	writeReport(r.Context(), w, comparison, err)
}

type ftpTestsResponse struct {
	PotentialFTPTests []analytics.FTPTest `json:"potential_ftp_tests"`
	AnalysisPeriod    string              `json:"analysis_period"`
}

// HandleFTPTests handles GET /api/athletes/{athleteID}/ftp-tests requests.
func (h *Analytics) HandleFTPTests(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	months, appErr := intQuery(r, "months", analytics.DefaultFTPTestMonths, 1, maxFTPTestMonths)
	if appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}
	tests, err := h.service.DetectFTPTests(r.Context(), athleteID, months)
	if err != nil {
		writeReport(r.Context(), w, nil, err)
		return
	}
	apperr.WriteOK(w, ftpTestsResponse{
		PotentialFTPTests: tests,
		AnalysisPeriod:    monthsLabel(months),
	})
}

// HandlePowerCurve handles GET /api/athletes/{athleteID}/power-curve requests.
func (h *Analytics) HandlePowerCurve(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	curve, err := h.service.PowerCurve(r.Context(), athleteID)
	writeReport(r.Context(), w, curve, err)
}

// HandleTrainingPatterns handles GET /api/athletes/{athleteID}/training-patterns requests.
func (h *Analytics) HandleTrainingPatterns(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	days, appErr := intQuery(r, "days", analytics.DefaultPatternDays, 1, maxReportDays)
	if appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}
	patterns, err := h.service.TrainingPatterns(r.Context(), athleteID, days)
	writeReport(r.Context(), w, patterns, err)
}

// HandleRecommendations handles GET /api/athletes/{athleteID}/recommendations requests.
func (h *Analytics) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	days, appErr := intQuery(r, "days", analytics.DefaultRecommendationDays, 1, maxReportDays)
	if appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}
	recs, err := h.service.Recommendations(r.Context(), athleteID, days)
	writeReport(r.Context(), w, recs, err)
}

// HandleDashboard handles GET /api/athletes/{athleteID}/dashboard requests.
func (h *Analytics) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(r.Context(), athleteID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	apperr.WriteOK(w, dashboard)
}

func monthsLabel(months int) string {
	if months == 1 {
		return "1 month"
	}
	return strconv.Itoa(months) + " months"
}
