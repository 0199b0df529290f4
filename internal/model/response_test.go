package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaWindow(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		page       int
		limit      int
		total      int
		start, end int
	}{
		{name: "first page", page: 1, limit: 10, total: 25, start: 0, end: 10},
		{name: "last partial page", page: 3, limit: 10, total: 25, start: 20, end: 25},
		{name: "just past the end", page: 4, limit: 10, total: 25, start: 25, end: 25},
		{name: "exact multiple", page: 2, limit: 200, total: 200, start: 200, end: 200},
		{name: "empty listing", page: 5, limit: 10, total: 0, start: 0, end: 0},
		{name: "huge page", page: 46116860184273881, limit: 200, total: 3, start: 3, end: 3},
		{name: "max int page", page: math.MaxInt, limit: 200, total: 3, start: 3, end: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			meta := NewMeta(tc.page, tc.limit, tc.total)
			start, end := meta.Window()
			assert.Equal(t, tc.start, start)
			assert.Equal(t, tc.end, end)
			assert.Equal(t, tc.start, meta.Offset())
		})
	}
}
