package request

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/dlf/internal/domain/search/mode"
	"github.com/kailas-cloud/dlf/internal/domain/settings"
)

// Query parameter names read by FromQuery.
const (
	ParamSettings = "settings"
	ParamTerm     = "term"
	ParamOrderBy  = "orderBy"
	ParamOrder    = "order"
	ParamPage     = "page"
	ParamFulltext = "fulltext"
)

// DefaultTerm matches every document.
const DefaultTerm = "*"

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is an explicit ordering on one metadata field.
type Sort struct {
	Field     string
	Direction Direction
}

// Request is a normalized search request.
type Request struct {
	term          string
	sort          *Sort
	page          int
	pageSize      int
	searchMode    mode.Mode
	collectionIDs []int
}

// FromQuery merges the query string with the validated configuration.
// Malformed values never fail: page falls back to 0 and an unusable sort is dropped.
// Pages beyond the addressable range are capped and yield an empty result page.
func FromQuery(q url.Values, cfg settings.Configuration) Request {
	term := DefaultTerm
	if vs, ok := q[ParamTerm]; ok && len(vs) > 0 {
		term = vs[0]
	}

	pageSize := max(1, cfg.PageSize())

	return Request{
		term:          term,
		sort:          parseSort(q.Get(ParamOrderBy), q[ParamOrder]),
		page:          parsePage(q.Get(ParamPage), pageSize),
		pageSize:      pageSize,
		searchMode:    mode.FromFlag(looseEqualsOne(q.Get(ParamFulltext))),
		collectionIDs: cfg.CollectionIDs(),
	}
}

// Term returns the free-text term. An empty term matches everything.
func (r *Request) Term() string { return r.term }

// Sort returns the requested ordering, or nil for backend default order.
func (r *Request) Sort() *Sort { return r.sort }

// Page returns the zero-based page number.
func (r *Request) Page() int { return r.page }

// PageSize returns the number of toplevel documents per page.
func (r *Request) PageSize() int { return r.pageSize }

// Offset returns the index of the first toplevel document on the page.
func (r *Request) Offset() int { return r.page * r.pageSize }

// Limit returns the maximum number of toplevel documents to return.
func (r *Request) Limit() int { return r.pageSize }

// Mode returns the index the search targets.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// CollectionIDs returns the unresolved collection restriction.
func (r *Request) CollectionIDs() []int { return r.collectionIDs }

// parsePage caps the page so that offset plus one full page still fits in an int.
func parsePage(s string, pageSize int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return min(n, maxPage(pageSize))
}

func maxPage(pageSize int) int {
	return math.MaxInt/pageSize - 1
}

// parseSort honors orderBy only with a valid explicit or absent order.
func parseSort(orderBy string, order []string) *Sort {
	if orderBy == "" || !isFieldName(orderBy) {
		return nil
	}
	dir := Asc
	if len(order) > 0 {
		switch Direction(order[0]) {
		case Asc, Desc:
			dir = Direction(order[0])
		default:
			return nil
		}
	}
	return &Sort{Field: orderBy, Direction: dir}
}

func isFieldName(s string) bool {
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' {
			return false
		}
	}
	return true
}

// looseEqualsOne reports whether s is a numeric string equal to 1 ("1", "01", "1.0", " 1").
func looseEqualsOne(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "xXpP_") {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 1
}
