package model

import "math"

const (
	KindAppointment = "appointment"
	KindContact     = "contact"
)

// Record is implemented by every persisted submission.
type Record interface {
	RecordKind() string
	RecordID() string
}

// StatusUpdate is the body of the detail update endpoint.
type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
}

// BulkStatusUpdate is the body of the admin bulk status action.
type BulkStatusUpdate struct {
	IDs    []string `json:"ids" validate:"required,min=1,max=100,dive,required,mongodb"`
	Status string   `json:"status" validate:"required"`
}

// Page is one page of a newest-first listing.
type Page[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	PageSize   int
}

func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 || p.TotalCount == 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// PageOffset returns how many records precede page. ok is false when the page
// cannot exist or its offset would overflow.
func PageOffset(page, pageSize int) (offset int64, ok bool) {
	if page < 1 || pageSize < 1 {
		return 0, false
	}
	if int64(page-1) > math.MaxInt64/int64(pageSize) {
		return 0, false
	}
	return int64(page-1) * int64(pageSize), true
}

func labelOr(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}
