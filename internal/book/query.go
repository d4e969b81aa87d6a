package book

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"libraryapi/internal/apperr"
)

// YearOp is a comparison applied to publication_year.
type YearOp string

const (
	YearEq  YearOp = "exact"
	YearGt  YearOp = "gt"
	YearLt  YearOp = "lt"
	YearGte YearOp = "gte"
	YearLte YearOp = "lte"
)

type YearFilter struct {
	Op   YearOp
	Year int
}

func (f YearFilter) match(year int) bool {
	switch f.Op {
	case YearGt:
		return year > f.Year
	case YearLt:
		return year < f.Year
	case YearGte:
		return year >= f.Year
	case YearLte:
		return year <= f.Year
	}
	return year == f.Year
}

// OrderField is a sortable column of the book list.
type OrderField string

const (
	OrderTitle           OrderField = "title"
	OrderPublicationYear OrderField = "publication_year"
	OrderAuthorName      OrderField = "author__name"
)

type OrderKey struct {
	Field OrderField
	Desc  bool
}

// DefaultOrdering is used when no valid ordering key was requested.
var DefaultOrdering = []OrderKey{{Field: OrderTitle}}

var orderAliases = map[string]OrderField{
	"title":            OrderTitle,
	"publication_year": OrderPublicationYear,
	"author__name":     OrderAuthorName,
	"author":           OrderAuthorName,
}

// Query defines filters, ordering and pagination for listing books.
// All filters are ANDed.
type Query struct {
	AuthorID  *int64
	Years     []YearFilter
	Search    string
	Ordering  []OrderKey
	CreatedBy string
	Limit     int
	Offset    int
}

var yearParams = map[string]YearOp{
	"publication_year":      YearEq,
	"publication_year__gt":  YearGt,
	"publication_year__lt":  YearLt,
	"publication_year__gte": YearGte,
	"publication_year__lte": YearLte,
}

// ParseQuery reads author, publication_year[__op], search and ordering.
// Unknown ordering keys are ignored; non-integer filter values are
// validation errors. Pagination is left to the caller.
func ParseQuery(v url.Values) (Query, error) {
	var q Query
	verr := apperr.NewValidation()

	if raw := strings.TrimSpace(v.Get("author")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			verr.Add("author", "Enter a whole number.")
		} else {
			q.AuthorID = &id
		}
	}

	params := make([]string, 0, len(yearParams))
	for p := range yearParams {
		params = append(params, p)
	}
	sort.Strings(params)
	for _, p := range params {
		raw := strings.TrimSpace(v.Get(p))
		if raw == "" {
			continue
		}
		year, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add(p, "Enter a whole number.")
			continue
		}
		q.Years = append(q.Years, YearFilter{Op: yearParams[p], Year: year})
	}

	q.Search = strings.TrimSpace(v.Get("search"))
	q.Ordering = ParseOrdering(v.Get("ordering"))

	if err := verr.Err(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// ParseOrdering parses "title,-publication_year". A leading "-" sorts
// descending. Unknown and repeated keys are dropped.
func ParseOrdering(raw string) []OrderKey {
	var keys []OrderKey
	seen := make(map[OrderField]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field, ok := orderAliases[strings.TrimPrefix(part, "-")]
		if !ok || seen[field] {
			continue
		}
		seen[field] = true
		keys = append(keys, OrderKey{Field: field, Desc: desc})
	}
	if len(keys) == 0 {
		return DefaultOrdering
	}
	return keys
}

// Matches reports whether b passes every filter in q.
func (q Query) Matches(b Book) bool {
	if q.AuthorID != nil && b.AuthorID != *q.AuthorID {
		return false
	}
	for _, f := range q.Years {
		if !f.match(b.PublicationYear) {
			return false
		}
	}
	if q.CreatedBy != "" && (b.CreatedBy == nil || *b.CreatedBy != q.CreatedBy) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(b.Title), needle) &&
			!strings.Contains(strings.ToLower(b.AuthorName), needle) {
			return false
		}
	}
	return true
}

// Apply filters and sorts books in memory and returns the requested page
// along with the total number of matches. Text keys compare
// case-insensitively and ties fall back to ascending id.
func Apply(books []Book, q Query) ([]Book, int) {
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if q.Matches(b) {
			out = append(out, b)
		}
	}

	ordering := q.Ordering
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range ordering {
			c := compare(out[i], out[j], k.Field)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return out[i].ID < out[j].ID
	})

	total := len(out)
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Book{}, total
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total
}

func compare(a, b Book, f OrderField) int {
	switch f {
	case OrderPublicationYear:
		return a.PublicationYear - b.PublicationYear
	case OrderAuthorName:
		return strings.Compare(strings.ToLower(a.AuthorName), strings.ToLower(b.AuthorName))
	}
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}
