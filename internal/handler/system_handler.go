package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
	"hostpanel/pkg/apierror"
)

type SystemHandler struct {
	system  *service.SystemService
	daemons *service.DaemonService
}

func NewSystemHandler(system *service.SystemService, daemons *service.DaemonService) *SystemHandler {
	return &SystemHandler{system: system, daemons: daemons}
}

func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.system.Snapshot(), nil)
}

func (h *SystemHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.daemons.List(), nil)
}

func (h *SystemHandler) GetService(w http.ResponseWriter, r *http.Request) {
	info, err := h.daemons.Status(serviceKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, info, nil)
}

// CheckService runs the randomised health probe.
func (h *SystemHandler) CheckService(w http.ResponseWriter, r *http.Request) {
	key := serviceKey(r)
	status, err := h.system.CheckServiceStatus(key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]any{"service": key, "status": status}, nil)
}

// Control runs start, stop, restart or toggle on one service.
func (h *SystemHandler) Control(w http.ResponseWriter, r *http.Request) {
	var run func(ctx context.Context, key string) (model.ServiceInfo, error)
	switch action := strings.ToLower(chi.URLParam(r, "action")); action {
	case "start":
		run = h.daemons.Start
	case "stop":
		run = h.daemons.Stop
	case "restart":
		run = h.daemons.Restart
	case "toggle":
		run = h.daemons.Toggle
	default:
		writeError(w, r, apierror.BadRequest("unknown service action", action))
		return
	}

	info, err := run(r.Context(), serviceKey(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, info, nil)
}

func serviceKey(r *http.Request) string {
	return strings.ToLower(strings.TrimSpace(chi.URLParam(r, "name")))
}
