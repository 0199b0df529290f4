package model

import "hostpanel/internal/notify"

type APIResponse struct {
	Success       bool                  `json:"success"`
	Data          any                   `json:"data,omitempty"`
	Error         *APIError             `json:"error,omitempty"`
	Meta          *Meta                 `json:"meta,omitempty"`
	Notifications []notify.Notification `json:"notifications,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta clamps page and limit the same way every paginated listing does.
func NewMeta(page int, limit int, total int) Meta {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// Offset is the index of the first item on the current page. Pages past the
// end yield Total, so callers never multiply an unbounded page number.
func (m Meta) Offset() int {
	if m.Page < 1 || m.Limit <= 0 {
		return 0
	}
	if m.Page-1 > m.Total/m.Limit {
		return m.Total
	}
	return min((m.Page-1)*m.Limit, m.Total)
}

// Window returns the slice bounds of the current page for a listing of Total items.
func (m Meta) Window() (int, int) {
	start := m.Offset()
	end := start + m.Limit
	if end > m.Total {
		end = m.Total
	}
	return start, end
}
