package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostpanel/internal/model"
	"hostpanel/internal/notify"
	"hostpanel/pkg/apierror"
)

func requestWithCollector(method string, target string, body string) (*http.Request, *notify.Collector) {
	c := notify.NewCollector()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(notify.WithCollector(r.Context(), c)), c
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()

	var body model.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apierror.Conflict("busy", "nginx"), http.StatusConflict, "CONFLICT"},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "REQUEST_TIMEOUT"},
		{context.Canceled, http.StatusRequestTimeout, "REQUEST_CANCELLED"},
		{model.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{model.ErrServiceNotFound, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrDatabaseExists, http.StatusConflict, "ALREADY_EXISTS"},
		{os.ErrPermission, http.StatusForbidden, "PERMISSION_DENIED"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

		assert.Equal(t, tc.status, rec.Code, tc.err.Error())
		body := decodeEnvelope(t, rec)
		assert.False(t, body.Success)
		require.NotNil(t, body.Error)
		assert.Equal(t, tc.code, body.Error.Code, tc.err.Error())
	}
}

func TestEnvelopeCarriesNotifications(t *testing.T) {
	t.Parallel()

	r, c := requestWithCollector(http.MethodGet, "/", "")
	c.Notify(r.Context(), notify.Info("Saved", "Configuration saved"))

	rec := httptest.NewRecorder()
	writeSuccess(rec, r, http.StatusOK, map[string]string{"ok": "yes"}, nil)

	body := decodeEnvelope(t, rec)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "Saved", body.Notifications[0].Title)
	assert.Empty(t, c.Drain(), "notifications are drained once")
}

func TestAttachmentCarriesNotificationsHeader(t *testing.T) {
	t.Parallel()

	r, c := requestWithCollector(http.MethodGet, "/", "")
	c.Notify(r.Context(), notify.Info("Report Ready", "Download started"))

	rec := httptest.NewRecorder()
	writeAttachment(rec, r, "report.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report.csv")

	var items []notify.Notification
	require.NoError(t, json.Unmarshal([]byte(rec.Header().Get(notificationsHeader)), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Report Ready", items[0].Title)
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var payload model.RenameRequest

	r, _ := requestWithCollector(http.MethodPost, "/", `{"path":"/a.txt","new_name":"b.txt"}`)
	require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &payload))
	assert.Equal(t, "b.txt", payload.NewName)

	r, _ = requestWithCollector(http.MethodPost, "/", `{"path":"/a.txt"}`)
	err := decodeJSON(httptest.NewRecorder(), r, &model.RenameRequest{})
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)

	r, _ = requestWithCollector(http.MethodPost, "/", `{"path":"/a.txt","new_name":"b","mode":1}`)
	err = decodeJSON(httptest.NewRecorder(), r, &model.RenameRequest{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)

	r, _ = requestWithCollector(http.MethodPost, "/", "")
	err = decodeBody(httptest.NewRecorder(), r, &model.RenameRequest{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request body is required", apiErr.Message)
}
