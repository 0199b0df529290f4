package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"hostpanel/internal/model"
	"hostpanel/internal/notify"
	"hostpanel/internal/validate"
	"hostpanel/pkg/apierror"
)

const maxJSONBody = 2 << 20

// notifications drains what the request raised so far so it rides along with
// the response envelope.
func notifications(r *http.Request) []notify.Notification {
	if r == nil {
		return nil
	}
	c, ok := notify.CollectorFromContext(r.Context())
	if !ok {
		return nil
	}
	return c.Drain()
}

func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success:       true,
		Data:          data,
		Meta:          meta,
		Notifications: notifications(r),
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
		body.Code = "PAYLOAD_TOO_LARGE"
		body.Message = "Request body too large"
		body.Details = strconv.FormatInt(maxBytesErr.Limit, 10)
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		body.Code = "REQUEST_TIMEOUT"
		body.Message = "Request timed out"
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
		body.Code = "REQUEST_CANCELLED"
		body.Message = "Request cancelled"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid username or password"
	case errors.Is(err, model.ErrUnauthorized):
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Authentication required"
	case errors.Is(err, model.ErrForbidden):
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	case errors.Is(err, model.ErrServiceNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Service not found"
	case errors.Is(err, model.ErrVirtualHostNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Virtual host not found"
	case errors.Is(err, model.ErrModuleNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Module not found"
	case errors.Is(err, model.ErrPluginNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Plugin not found"
	case errors.Is(err, model.ErrDatabaseExists):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "Database already exists"
	case errors.Is(err, model.ErrDBUserExists):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "Database user already exists"
	case errors.Is(err, model.ErrFileNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "File not found"
	case errors.Is(err, model.ErrDirectoryNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Directory not found"
	case errors.Is(err, model.ErrPathConflict):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Path already exists"
	case errors.Is(err, model.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
		body.Code = "PAYLOAD_TOO_LARGE"
		body.Message = "File too large"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	case errors.Is(err, os.ErrPermission):
		status = http.StatusForbidden
		body.Code = "PERMISSION_DENIED"
		body.Message = "Permission denied on the filesystem"
	case errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Path not found"
	case errors.Is(err, os.ErrExist):
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Message = "Path already exists"
	default:
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success:       false,
		Error:         body,
		Notifications: notifications(r),
	})
}

// decodeJSON reads a size-capped JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeBody(w, r, dst); err != nil {
		return err
	}
	return checkPayload(dst)
}

// decodeBody is decodeJSON for payloads the service validates itself.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return apierror.BadRequest("request body is required", "")
		}
		return apierror.BadRequest("invalid JSON body", err.Error())
	}
	return nil
}

func checkPayload(payload any) error {
	if fields := validate.Struct(payload); fields != nil {
		return apierror.New("VALIDATION_ERROR", "invalid request payload", validate.Summary(fields), http.StatusBadRequest)
	}
	return nil
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json")
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func requiredQuery(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return "", apierror.BadRequest("query parameter '"+name+"' is required", name)
	}
	return v, nil
}

// writeAttachment sends data as a download and keeps the notifications in a
// header since the body is not JSON.
func writeAttachment(w http.ResponseWriter, r *http.Request, filename string, contentType string, data []byte) {
	setAttachmentHeaders(w, r, filename, contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setAttachmentHeaders(w http.ResponseWriter, r *http.Request, filename string, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", contentDisposition("attachment", filename))
	if items := notifications(r); len(items) > 0 {
		if encoded, err := json.Marshal(items); err == nil {
			w.Header().Set(notificationsHeader, string(encoded))
		}
	}
}

const notificationsHeader = "X-Notifications"
