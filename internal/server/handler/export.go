package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/export"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/xhttp"
	"github.com/garrettladley/fitmetrics/internal/xslog"
)

type Export struct {
	athleteResolver
	activities repository.ActivityRepository
	now        func() time.Time
}

func NewExport(repo *repository.Repository) *Export {
	return &Export{
		athleteResolver: athleteResolver{athletes: repo.Athletes},
		activities:      repo.Activities,
		now:             time.Now,
	}
}

// HandleCSV handles GET /api/athletes/{athleteID}/export.csv requests.
func (h *Export) HandleCSV(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatCSV)
}

// HandleParquet handles GET /api/athletes/{athleteID}/export.parquet requests.
func (h *Export) HandleParquet(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, export.FormatParquet)
}

func (h *Export) serve(w http.ResponseWriter, r *http.Request, format export.Format) {
	ctx := r.Context()
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}

	rows, err := export.Collect(ctx, h.activities, athleteID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	// rendered up front so a failure can still produce an error response
	var buf bytes.Buffer
	if err := export.Write(&buf, format, rows); err != nil {
		apperr.WriteError(ctx, w, apperr.Internal("export_failed", "failed to render export", err))
		return
	}

	xslog.FromContext(ctx).InfoContext(ctx, "activities exported",
		xslog.AthleteID(athleteID),
		xslog.Count(len(rows)),
	)

	filename := fmt.Sprintf("activities_%d_%s.%s", athleteID, h.now().Format("20060102"), format)
	w.Header().Set(xhttp.ContentType, format.ContentType())
	xhttp.SetHeaderAttachment(w, filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
