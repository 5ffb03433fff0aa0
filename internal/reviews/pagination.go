package reviews

import (
	"errors"

	"github.com/TejVaidya/book-reviews/pkg/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var ErrInvalidPage = errors.New("invalid page")

// Page is the envelope returned when a page is requested: next/previous are
// page numbers, nil at the edges.
type Page struct {
	Count    int                   `json:"count"`
	Next     *int                  `json:"next"`
	Previous *int                  `json:"previous"`
	Results  []models.ReviewDetail `json:"results"`
}

// ClampPageSize applies the default for unusable values and the upper cap.
func ClampPageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Paginate slices items into the requested 1-based page. A page before the
// first or past the last is ErrInvalidPage.
func Paginate(items []models.ReviewDetail, page, pageSize int) (*Page, error) {
	pageSize = ClampPageSize(pageSize)

	if page < 1 {
		return nil, ErrInvalidPage
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil, ErrInvalidPage
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	p := &Page{
		Count:   len(items),
		Results: items[start:end],
	}
	if end < len(items) {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	return p, nil
}
