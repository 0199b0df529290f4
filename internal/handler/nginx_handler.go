package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
	"hostpanel/pkg/apierror"
)

type NginxHandler struct {
	service *service.NginxService
}

func NewNginxHandler(service *service.NginxService) *NginxHandler {
	return &NginxHandler{service: service}
}

func idParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("invalid id", raw)
	}
	return id, nil
}

func (h *NginxHandler) ListHosts(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.ListHosts(), nil)
}

func (h *NginxHandler) AddHost(w http.ResponseWriter, r *http.Request) {
	var payload model.AddHostRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	host, err := h.service.AddHost(r.Context(), payload.Domain, payload.Root)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, host, nil)
}

func (h *NginxHandler) ToggleHost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	host, err := h.service.ToggleHost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, host, nil)
}

func (h *NginxHandler) DeleteHost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteHost(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]any{"deleted": id}, nil)
}

func (h *NginxHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.ListModules(), nil)
}

// InstallModule blocks until the simulated install finishes; progress is
// pushed over the websocket meanwhile.
func (h *NginxHandler) InstallModule(w http.ResponseWriter, r *http.Request) {
	var payload model.InstallModuleRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	module, err := h.service.InstallModule(r.Context(), payload.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, module, nil)
}

func (h *NginxHandler) ToggleModule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	module, err := h.service.ToggleModule(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, module, nil)
}

func (h *NginxHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteModule(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]any{"deleted": id}, nil)
}

func (h *NginxHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, model.ConfigRequest{Content: h.service.Config()}, nil)
}

func (h *NginxHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var payload model.ConfigRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.SaveConfig(r.Context(), payload.Content); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, payload, nil)
}
