package handler

import (
	"net/http"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
)

// OperationsHandler serves rename and delete in the file manager.
type OperationsHandler struct {
	service *service.FileService
}

func NewOperationsHandler(service *service.FileService) *OperationsHandler {
	return &OperationsHandler{service: service}
}

func (h *OperationsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var payload model.RenameRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.service.Rename(r.Context(), payload.Path, payload.NewName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, item, nil)
}

// Delete removes every listed path and reports per-path failures instead of
// stopping at the first one.
func (h *OperationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var payload model.DeleteRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	result := model.DeleteResponse{Deleted: []string{}, Failed: []model.DeleteFailure{}}
	for _, p := range payload.Paths {
		if err := h.service.Delete(r.Context(), p); err != nil {
			result.Failed = append(result.Failed, model.DeleteFailure{Path: p, Reason: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, p)
	}

	writeSuccess(w, r, http.StatusOK, result, nil)
}
