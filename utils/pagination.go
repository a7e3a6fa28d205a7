package utils

import "gorm.io/gorm"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Window is a resolved offset/limit pair for a list query.
type Window struct {
	Offset int
	Limit  int
}

// PageWindow resolves optional offset and limit values. Negative offsets
// and non-positive limits fall back to defaults; limits are capped at MaxPageSize.
func PageWindow(offset, limit *int) Window {
	w := Window{Limit: DefaultPageSize}
	if offset != nil && *offset >= 0 {
		w.Offset = *offset
	}
	if limit != nil && *limit > 0 {
		w.Limit = min(*limit, MaxPageSize)
	}
	return w
}

// Scope applies the window to a gorm query.
func (w Window) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(w.Offset).Limit(w.Limit)
}
