package service

import (
	"strings"
	"sync"

	"hostpanel/internal/model"
)

// toggleSet is an ordered list of named switches safe for concurrent use.
type toggleSet struct {
	mu    sync.RWMutex
	items []model.Toggle
}

func newToggleSet(items []model.Toggle) *toggleSet {
	return &toggleSet{items: append([]model.Toggle(nil), items...)}
}

// Search matches query case-insensitively against name and description. An
// empty query returns everything.
func (t *toggleSet) Search(query string) []model.Toggle {
	query = strings.ToLower(strings.TrimSpace(query))

	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]model.Toggle, 0, len(t.items))
	for _, item := range t.items {
		if query == "" ||
			strings.Contains(strings.ToLower(item.Name), query) ||
			strings.Contains(strings.ToLower(item.Description), query) {
			out = append(out, item)
		}
	}
	return out
}

func (t *toggleSet) Flip(name string) (model.Toggle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.items {
		if t.items[i].Name == name {
			t.items[i].Enabled = !t.items[i].Enabled
			return t.items[i], true
		}
	}
	return model.Toggle{}, false
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

// textDoc is an editable configuration file held in memory.
type textDoc struct {
	mu      sync.RWMutex
	content string
}

func (d *textDoc) Get() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

func (d *textDoc) Set(content string) {
	d.mu.Lock()
	d.content = content
	d.mu.Unlock()
}
