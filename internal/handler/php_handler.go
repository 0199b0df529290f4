package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
)

type PHPHandler struct {
	service *service.PHPService
}

func NewPHPHandler(service *service.PHPService) *PHPHandler {
	return &PHPHandler{service: service}
}

func (h *PHPHandler) ListExtensions(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.Extensions(r.URL.Query().Get("q")), nil)
}

func (h *PHPHandler) ToggleExtension(w http.ResponseWriter, r *http.Request) {
	ext, err := h.service.ToggleExtension(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, ext, nil)
}

func configKind(r *http.Request) service.PHPConfigKind {
	return service.PHPConfigKind(strings.ToLower(chi.URLParam(r, "kind")))
}

func (h *PHPHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Config(configKind(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, model.ConfigRequest{Content: content}, nil)
}

func (h *PHPHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var payload model.ConfigRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.SaveConfig(r.Context(), configKind(r), payload.Content); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, payload, nil)
}
