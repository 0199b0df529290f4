package handler

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

type DocsHandler struct {
	once     sync.Once
	jsonDoc  []byte
	parseErr error
}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

func (h *DocsHandler) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

// OpenAPIJSON serves the same document converted to JSON.
func (h *DocsHandler) OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		var doc any
		if err := yaml.Unmarshal(openAPIDocument, &doc); err != nil {
			h.parseErr = err
			return
		}
		h.jsonDoc, h.parseErr = json.Marshal(doc)
	})
	if h.parseErr != nil {
		writeError(w, r, h.parseErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.jsonDoc)
}
