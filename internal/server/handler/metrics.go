package handler

import (
	"net/http"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/ptr"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/analytics"
	"github.com/garrettladley/fitmetrics/internal/service/calculator"
	"github.com/garrettladley/fitmetrics/internal/xcontext"
	"github.com/garrettladley/fitmetrics/internal/xslog"
)

const maxPerPage = 200

type Metrics struct {
	athleteResolver
	activities repository.ActivityRepository
	calc       calculator.Service
	analytics  analytics.Service
}

func NewMetrics(repo *repository.Repository, calc calculator.Service, reports analytics.Service) *Metrics {
	return &Metrics{
		athleteResolver: athleteResolver{athletes: repo.Athletes},
		activities:      repo.Activities,
		calc:            calc,
		analytics:       reports,
	}
}

type calculateRequest struct {
	FTP *int `json:"ftp"`
}

func (r calculateRequest) Validate() map[string]string {
	if r.FTP != nil && *r.FTP <= 0 {
		return map[string]string{"ftp": "must be a positive integer"}
	}
	return nil
}

type batchResponse struct {
	Message string                  `json:"message"`
	FTPUsed int                     `json:"ftp_used"`
	Results *calculator.BatchResult `json:"results"`
}

// HandleCalculateAll handles POST /api/athletes/{athleteID}/custom-metrics requests.
func (h *Metrics) HandleCalculateAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	var req calculateRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		apperr.WriteError(ctx, w, appErr)
		return
	}

	result, err := h.calc.CalculateAll(ctx, athleteID, req.FTP)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	xslog.FromContext(ctx).InfoContext(ctx, "custom metrics calculated",
		xslog.AthleteID(athleteID),
		xslog.Count(result.Calculated),
	)
	apperr.WriteOK(w, batchResponse{
		Message: "custom metrics calculated",
		FTPUsed: result.UserFTP,
		Results: result,
	})
}

// HandleCalculateActivity handles
// POST /api/athletes/{athleteID}/activities/{activityID}/custom-metrics requests.
func (h *Metrics) HandleCalculateActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	activityID, err := pathID(r, pathActivityID)
	if err != nil {
		apperr.WriteError(ctx, w, apperr.BadRequest("invalid_activity_id", err.Error()))
		return
	}
	xcontext.SetActivityID(ctx, activityID)

	var req calculateRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		apperr.WriteError(ctx, w, appErr)
		return
	}

	record, err := h.calc.Calculate(ctx, activityID, athleteID, req.FTP)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	apperr.WriteOK(w, record)
}

type pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

type activitiesResponse struct {
	Activities []repository.ActivityWithMetrics `json:"activities"`
	Pagination pagination                       `json:"pagination"`
}

// HandleListActivities handles GET /api/athletes/{athleteID}/activities requests.
func (h *Metrics) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	page, appErr := intQuery(r, "page", 1, 1, 1<<20)
	if appErr != nil {
		apperr.WriteError(ctx, w, appErr)
		return
	}
	perPage, appErr := intQuery(r, "per_page", repository.DefaultPageSize, 1, maxPerPage)
	if appErr != nil {
		apperr.WriteError(ctx, w, appErr)
		return
	}
	params := repository.PageParams{
		Type:   r.URL.Query().Get("type"),
		Limit:  perPage,
		Offset: (page - 1) * perPage,
	}
	if r.URL.Query().Has("year") {
		year, appErr := intQuery(r, "year", 0, 1970, 9999)
		if appErr != nil {
			apperr.WriteError(ctx, w, appErr)
			return
		}
		params.Year = ptr.Ref(year)
	}

	result, err := h.activities.ListWithMetrics(ctx, athleteID, params)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	records := result.Records
	if records == nil {
		records = []repository.ActivityWithMetrics{}
	}
	apperr.WriteOK(w, activitiesResponse{
		Activities: records,
		Pagination: pagination{
			Page:    page,
			PerPage: perPage,
			Total:   result.Total,
			Pages:   (result.Total + perPage - 1) / perPage,
		},
	})
}

// HandleMetricsStatus handles GET /api/athletes/{athleteID}/metrics-status requests.
func (h *Metrics) HandleMetricsStatus(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	status, err := h.analytics.MetricsStatus(r.Context(), athleteID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	apperr.WriteOK(w, status)
}
