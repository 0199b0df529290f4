package handler

import (
	"net/http"
	"strings"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
)

// DirectoryHandler serves the browsing side of the file manager.
type DirectoryHandler struct {
	service *service.FileService
}

func NewDirectoryHandler(service *service.FileService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

func (h *DirectoryHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	data, meta, err := h.service.List(r.Context(), model.ListQuery{
		Path:  query.Get("path"),
		Page:  parseIntOrDefault(query.Get("page"), 1),
		Limit: parseIntOrDefault(query.Get("limit"), 50),
		Sort:  strings.TrimSpace(query.Get("sort")),
		Order: strings.TrimSpace(query.Get("order")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, data, &meta)
}

func (h *DirectoryHandler) Info(w http.ResponseWriter, r *http.Request) {
	requestedPath, err := requiredQuery(r, "path")
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.service.Stat(requestedPath)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, item, nil)
}

func (h *DirectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateDirectoryRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.service.CreateFolder(r.Context(), payload.Path, payload.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, item, nil)
}
