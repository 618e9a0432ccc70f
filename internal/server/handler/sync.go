package handler

import (
	"net/http"
	"time"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/xsync"
)

type Sync struct {
	athleteResolver
	service xsync.SyncService
}

func NewSync(athletes repository.AthleteRepository, service xsync.SyncService) *Sync {
	return &Sync{
		athleteResolver: athleteResolver{athletes: athletes},
		service:         service,
	}
}

type syncRequest struct {
	After   *time.Time `json:"after"`
	Compute bool       `json:"compute"`
	FTP     *int       `json:"ftp"`
}

func (r syncRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.FTP != nil && *r.FTP <= 0 {
		errs["ftp"] = "must be a positive integer"
	}
	if r.FTP != nil && !r.Compute {
		errs["compute"] = "must be true when ftp is set"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// HandleSync handles POST /api/athletes/{athleteID}/sync requests.
func (h *Sync) HandleSync(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	var req syncRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}

	result, err := h.service.Sync(r.Context(), athleteID, xsync.Options{
		After:   req.After,
		Compute: req.Compute,
		FTP:     req.FTP,
	})
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	apperr.WriteOK(w, result)
}
