package handler

import (
	"net/http"
	"strings"

	"hostpanel/internal/guard"
	"hostpanel/internal/metrics"
	"hostpanel/internal/model"
	"hostpanel/internal/session"
	"hostpanel/pkg/apierror"
)

// DemoAccount is advertised on the login view when the demo credentials are
// active.
type DemoAccount struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

func DemoAccounts(creds session.StaticCredentials) []DemoAccount {
	out := make([]DemoAccount, 0, len(creds))
	for _, c := range creds {
		out = append(out, DemoAccount{Username: c.Username, Password: c.Password, Role: c.Role})
	}
	return out
}

type loginView struct {
	From          string        `json:"from"`
	Authenticated bool          `json:"authenticated"`
	Demo          []DemoAccount `json:"demo,omitempty"`
}

type AuthHandler struct {
	demo []DemoAccount
}

func NewAuthHandler(demo []DemoAccount) *AuthHandler {
	return &AuthHandler{demo: demo}
}

func storeFrom(r *http.Request) (*session.Store, error) {
	store, ok := session.FromContext(r.Context())
	if !ok {
		return nil, apierror.New("SESSION_LOADING", "session is still loading", "", http.StatusServiceUnavailable)
	}
	return store, nil
}

// LoginPage shows the login view, or sends an authenticated visitor straight
// back to where they were going.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	store, err := storeFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	from := guard.ReturnPath(r.URL.Query().Get(guard.FromParam))
	if _, ok := store.User(); ok {
		http.Redirect(w, r, from, http.StatusFound)
		return
	}

	writeSuccess(w, r, http.StatusOK, loginView{From: from, Demo: h.demo}, nil)
}

// Login accepts a form post from the login page or a JSON body. Form posts are
// redirected to the return path on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	store, err := storeFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	payload, isJSON, err := readLogin(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok := store.Login(r.Context(), payload.Username, payload.Password)
	metrics.RecordLogin(ok)
	if !ok {
		if r.Context().Err() != nil {
			return
		}
		writeError(w, r, model.ErrInvalidCredentials)
		return
	}

	from := guard.ReturnPath(payload.From)
	if !isJSON {
		http.Redirect(w, r, from, http.StatusSeeOther)
		return
	}

	user, _ := store.User()
	writeSuccess(w, r, http.StatusOK, map[string]any{"user": user, "redirect": from}, nil)
}

func readLogin(w http.ResponseWriter, r *http.Request) (model.LoginRequest, bool, error) {
	var payload model.LoginRequest

	if wantsJSON(r) {
		if err := decodeJSON(w, r, &payload); err != nil {
			return payload, true, err
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			return payload, false, apierror.BadRequest("invalid form body", err.Error())
		}
		payload.Username = r.PostForm.Get("username")
		payload.Password = r.PostForm.Get("password")
		payload.From = r.PostForm.Get(guard.FromParam)
		if err := checkPayload(payload); err != nil {
			return payload, false, err
		}
	}

	payload.Username = strings.TrimSpace(payload.Username)
	if payload.From == "" {
		payload.From = r.URL.Query().Get(guard.FromParam)
	}
	return payload, wantsJSON(r), nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	store, err := storeFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	store.Logout(r.Context())

	if !wantsJSON(r) && !strings.HasPrefix(r.URL.Path, "/api/") {
		http.Redirect(w, r, guard.LoginPath, http.StatusSeeOther)
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]any{"logged_out": true}, nil)
}

// Me reports the session snapshot; it is public so a dashboard can poll it
// while deciding whether to show the login view.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	store, err := storeFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, store.Snapshot(), nil)
}
