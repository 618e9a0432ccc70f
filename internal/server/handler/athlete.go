package handler

import (
	"net/http"

	"github.com/garrettladley/fitmetrics/internal/apperr"
	"github.com/garrettladley/fitmetrics/internal/repository"
	"github.com/garrettladley/fitmetrics/internal/service/athlete"
)

type Athlete struct {
	athleteResolver
	service athlete.Service
}

func NewAthlete(athletes repository.AthleteRepository, service athlete.Service) *Athlete {
	return &Athlete{
		athleteResolver: athleteResolver{athletes: athletes},
		service:         service,
	}
}

// HandleGetSettings handles GET /api/athletes/{athleteID}/settings requests.
func (h *Athlete) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	settings, err := h.service.GetOrCreate(r.Context(), athleteID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	apperr.WriteOK(w, settings)
}

// HandlePutSettings handles PUT /api/athletes/{athleteID}/settings requests.
func (h *Athlete) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	var req athlete.UpdateSettingsRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}
	settings, err := h.service.Update(r.Context(), athleteID, req)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	apperr.WriteOK(w, settings)
}

// HandleUpdateFTP handles POST /api/athletes/{athleteID}/update-ftp requests.
func (h *Athlete) HandleUpdateFTP(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	var req athlete.UpdateFTPRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		apperr.WriteError(r.Context(), w, appErr)
		return
	}
	update, err := h.service.UpdateFTP(r.Context(), athleteID, req)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	apperr.WriteOK(w, update)
}

// HandleZones handles GET /api/athletes/{athleteID}/zones requests.
func (h *Athlete) HandleZones(w http.ResponseWriter, r *http.Request) {
	athleteID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	zones, err := h.service.Zones(r.Context(), athleteID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	apperr.WriteOK(w, zones)
}
