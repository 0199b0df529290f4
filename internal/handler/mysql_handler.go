package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
)

type MySQLHandler struct {
	service *service.MySQLService
}

func NewMySQLHandler(service *service.MySQLService) *MySQLHandler {
	return &MySQLHandler{service: service}
}

func (h *MySQLHandler) ListPlugins(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.Plugins(r.URL.Query().Get("q")), nil)
}

func (h *MySQLHandler) TogglePlugin(w http.ResponseWriter, r *http.Request) {
	plugin, err := h.service.TogglePlugin(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, plugin, nil)
}

func (h *MySQLHandler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.Databases(), nil)
}

func (h *MySQLHandler) CreateDatabase(w http.ResponseWriter, r *http.Request) {
	var payload service.CreateDatabaseInput
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	db, err := h.service.CreateDatabase(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, db, nil)
}

func (h *MySQLHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, h.service.Users(), nil)
}

func (h *MySQLHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload service.CreateUserInput
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusCreated, user, nil)
}

func (h *MySQLHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, model.ConfigRequest{Content: h.service.Config()}, nil)
}

func (h *MySQLHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
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
