package query

import (
	"strings"
)

// Mode tells where filtering, sorting and slicing happen
type Mode string

const (
	// ModeServer pushes structured predicates, order and range to the store
	ModeServer Mode = "server"
	// ModeClient fetches the structurally filtered set and finishes in memory
	ModeClient Mode = "client"
)

// DateRange is an inclusive range over ISO dates. Empty bounds are open.
type DateRange struct {
	From string
	To   string
}

// IsZero reports whether no bound is set
func (r DateRange) IsZero() bool {
	return r.From == "" && r.To == ""
}

// Filter is the predicate set of a list screen, combined with AND
type Filter struct {
	Status      string
	Type        string
	DateRange   DateRange
	Search      string
	OnlyOverdue bool
}

// HasSearch reports whether a free-text predicate is active
func (f Filter) HasSearch() bool {
	return strings.TrimSpace(f.Search) != ""
}

// Sort is a field and direction
type Sort[F ~string] struct {
	Field      F
	Descending bool
}

// ParseSort builds a Sort from request parameters. Anything other than
// "asc" (any case) is descending.
func ParseSort[F ~string](field, direction string) Sort[F] {
	return Sort[F]{
		Field:      F(strings.TrimSpace(field)),
		Descending: !strings.EqualFold(strings.TrimSpace(direction), "asc"),
	}
}

// Page is one slice of a filtered and sorted result
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Mode       Mode  `json:"mode"`
}

// EmptyPage is the page rendered after a failed read
func EmptyPage[T any](pageSize int) Page[T] {
	return Page[T]{Items: []T{}, Page: 1, PageSize: pageSize, TotalPages: 1}
}
