package handler

import (
	"net/http"

	"hostpanel/internal/service"
)

type LogsHandler struct {
	service *service.LogsService
}

func NewLogsHandler(service *service.LogsService) *LogsHandler {
	return &LogsHandler{service: service}
}

func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.List(r.URL.Query().Get("service")), nil)
}

func (h *LogsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Refresh(r.Context(), r.URL.Query().Get("service"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, entries, nil)
}

func (h *LogsHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename, data := h.service.Download(r.Context(), r.URL.Query().Get("service"))
	writeAttachment(w, r, filename, "text/plain; charset=utf-8", data)
}
