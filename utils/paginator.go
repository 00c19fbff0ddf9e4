package utils

import "strconv"

// Page holds one slice of an ordered collection plus navigation metadata.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"number"`
	TotalPages int `json:"total_pages"`
	Count      int `json:"count"`
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// HasPrev reports whether a page precedes this one.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// NextPage returns the following page number; only meaningful when HasNext.
func (p Page[T]) NextPage() int { return p.Number + 1 }

// PrevPage returns the preceding page number; only meaningful when HasPrev.
func (p Page[T]) PrevPage() int { return p.Number - 1 }

// Paginate slices an ordered collection into fixed-size pages.
//
// The requested page token may come straight from the URL: when it is absent,
// not an integer, zero or negative, the first page is returned; when it
// exceeds the total page count, the last page is returned. An empty
// collection still yields a single empty page.
func Paginate[T any](items []T, pageSize int, token string) Page[T] {
	if pageSize < 1 {
		pageSize = 1
	}

	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	number := 1
	if n, err := strconv.Atoi(token); err == nil && n >= 1 {
		number = n
	}
	if number > totalPages {
		number = totalPages
	}

	lo := (number - 1) * pageSize
	hi := lo + pageSize
	if lo > len(items) {
		lo = len(items)
	}
	if hi > len(items) {
		hi = len(items)
	}

	return Page[T]{
		Items:      items[lo:hi],
		Number:     number,
		TotalPages: totalPages,
		Count:      len(items),
	}
}
