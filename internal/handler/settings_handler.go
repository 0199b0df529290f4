package handler

import (
	"net/http"

	"hostpanel/internal/service"
)

type SettingsHandler struct {
	service *service.SettingsService
}

func NewSettingsHandler(service *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.Get(), nil)
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload service.ProfileInput
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := h.service.UpdateProfile(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, settings, nil)
}

func (h *SettingsHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var payload service.PreferencesInput
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := h.service.UpdatePreferences(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, settings, nil)
}

// UpdateSystem changes the backup frequency and the log level.
func (h *SettingsHandler) UpdateSystem(w http.ResponseWriter, r *http.Request) {
	var payload service.SystemInput
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	settings, err := h.service.UpdateSystem(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, settings, nil)
}

func (h *SettingsHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.service.RestartSystem(r.Context())
	writeSuccess(w, r, http.StatusAccepted, map[string]any{"restarting": true}, nil)
}

func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Reset(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, settings, nil)
}
