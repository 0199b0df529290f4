package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"hostpanel/internal/model"
)

// MemoryHistoryLimit bounds the in-memory history; older entries are dropped.
const MemoryHistoryLimit = 1000

// MemoryActivityRepository keeps the newest MemoryHistoryLimit activities in
// process memory.
type MemoryActivityRepository struct {
	mu     sync.RWMutex
	nextID int64
	items  []model.Activity
}

func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{nextID: 1}
}

func (r *MemoryActivityRepository) Add(_ context.Context, a model.Activity) (model.Activity, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = r.nextID
	r.nextID++
	r.items = append(r.items, a)
	if over := len(r.items) - MemoryHistoryLimit; over > 0 {
		r.items = append(r.items[:0:0], r.items[over:]...)
	}
	return a, nil
}

func (r *MemoryActivityRepository) AddBatch(ctx context.Context, items []model.Activity) error {
	for _, a := range items {
		if _, err := r.Add(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *MemoryActivityRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

func (r *MemoryActivityRepository) List(_ context.Context, filter model.ActivityFilter) ([]model.Activity, model.Meta, error) {
	typ := strings.TrimSpace(filter.Type)
	service := strings.ToLower(strings.TrimSpace(filter.Service))

	r.mu.RLock()
	matched := make([]model.Activity, 0, len(r.items))
	for _, a := range r.items {
		if typ != "" && typ != "all" && string(a.Type) != typ {
			continue
		}
		if service != "" && service != "all" && strings.ToLower(a.Service) != service {
			continue
		}
		matched = append(matched, a)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	meta := model.NewMeta(filter.Page, filter.Limit, len(matched))
	start, end := meta.Window()
	return matched[start:end], meta, nil
}
