package handler

import (
	"net/http"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
)

type ActivityHandler struct {
	service *service.ActivityService
}

func NewActivityHandler(service *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// List supports ?type=info|warning|error|success|all, ?service= and paging.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	items, meta, err := h.service.List(r.Context(), model.ActivityFilter{
		Type:    query.Get("type"),
		Service: query.Get("service"),
		Page:    parseIntOrDefault(query.Get("page"), 1),
		Limit:   parseIntOrDefault(query.Get("limit"), 50),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, items, &meta)
}
