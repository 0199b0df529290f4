package handler

import (
	"net/http"

	"hostpanel/internal/service"
)

type StatsHandler struct {
	service *service.StatsService
}

func NewStatsHandler(service *service.StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rng, err := service.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, h.service.Get(rng), nil)
}

func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	rng, err := service.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.service.Refresh(r.Context(), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, stats, nil)
}

// Report downloads the datasets of the range as CSV.
func (h *StatsHandler) Report(w http.ResponseWriter, r *http.Request) {
	rng, err := service.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	filename, data, err := h.service.Report(r.Context(), rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeAttachment(w, r, filename, "text/csv; charset=utf-8", data)
}
