//go:build integration

package integration

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upload(t *testing.T, client *http.Client, base string, dir string, name string, content []byte) (*http.Response, envelope) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("path", dir))
	part, err := writer.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, base+"/api/v1/files/upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp := doRequest(t, client, req)
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestUploadDownloadAndEdit(t *testing.T) {
	root := t.TempDir()
	server, client := newAuthedServer(t, root)

	resp, env := upload(t, client, server.URL, "/", "notes.txt", []byte("hello panel"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, titles(env.Notifications), "Upload Complete")

	data, err := os.ReadFile(filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello panel", string(data))

	resp, env = upload(t, client, server.URL, "/", "notes.txt", []byte("again"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result struct {
		Failed []struct {
			Name string `json:"name"`
		} `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Failed, 1, "existing file without overwrite")

	download := doRequest(t, client, mustRequest(t, http.MethodGet, server.URL+"/api/v1/files/download?path=/notes.txt"))
	require.Equal(t, http.StatusOK, download.StatusCode)
	assert.Contains(t, download.Header.Get("Content-Disposition"), "notes.txt")
	body, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello panel", string(body))

	resp, _ = doJSON(t, client, http.MethodPut, server.URL+"/api/v1/files/text", map[string]string{
		"path":    "/notes.txt",
		"content": "edited",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = doJSON(t, client, http.MethodGet, server.URL+"/api/v1/files/text?path=/notes.txt", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var text struct {
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &text))
	assert.Equal(t, "edited", text.Content)
}

func TestDirectoryOperations(t *testing.T) {
	root := t.TempDir()
	server, client := newAuthedServer(t, root)

	resp, _ := doJSON(t, client, http.MethodPost, server.URL+"/api/v1/directories", map[string]string{
		"path": "/",
		"name": "site",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = upload(t, client, server.URL, "/site", "index.html", []byte("<h1>hi</h1>"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, client, http.MethodGet, server.URL+"/api/v1/files?path=/site", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "index.html", items[0].Name)

	archive := doRequest(t, client, mustRequest(t, http.MethodGet, server.URL+"/api/v1/files/download?path=/site&archive=true"))
	require.Equal(t, http.StatusOK, archive.StatusCode)
	raw, err := io.ReadAll(archive.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	require.NoError(t, err)
	require.NotEmpty(t, zr.File)

	resp, _ = doJSON(t, client, http.MethodPut, server.URL+"/api/v1/files/rename", map[string]string{
		"path":     "/site/index.html",
		"new_name": "home.html",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.FileExists(t, filepath.Join(root, "site", "home.html"))

	resp, env = doJSON(t, client, http.MethodDelete, server.URL+"/api/v1/files", map[string]any{
		"paths": []string{"/site/home.html", "/site/missing.html"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var deleted struct {
		Deleted []string `json:"deleted"`
		Failed  []struct {
			Path string `json:"path"`
		} `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	assert.Len(t, deleted.Failed, 1)
	assert.NoFileExists(t, filepath.Join(root, "site", "home.html"))
}

func TestPathTraversalRejected(t *testing.T) {
	root := t.TempDir()
	server, client := newAuthedServer(t, root)

	resp, _ := doJSON(t, client, http.MethodGet, server.URL+"/api/v1/files/text?path=../../etc/passwd", nil)
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
}

func mustRequest(t *testing.T, method string, url string) *http.Request {
	t.Helper()

	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	return req
}
