package author

import (
	"net/url"
	"sort"
	"strings"
)

// Query filters and orders the author list. Authors only sort by name.
type Query struct {
	Search    string
	Desc      bool
	CreatedBy string
	Limit     int
	Offset    int
}

// ParseQuery reads search and ordering ("name" or "-name"). Any other
// ordering value falls back to ascending name.
func ParseQuery(v url.Values) Query {
	q := Query{Search: strings.TrimSpace(v.Get("search"))}
	for _, part := range strings.Split(v.Get("ordering"), ",") {
		switch strings.TrimSpace(part) {
		case "name":
			return q
		case "-name":
			q.Desc = true
			return q
		}
	}
	return q
}

func (q Query) Matches(a Author) bool {
	if q.CreatedBy != "" && (a.CreatedBy == nil || *a.CreatedBy != q.CreatedBy) {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(q.Search)) {
		return false
	}
	return true
}

// Apply filters, sorts and pages authors in memory.
func Apply(authors []Author, q Query) ([]Author, int) {
	out := make([]Author, 0, len(authors))
	for _, a := range authors {
		if q.Matches(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := strings.Compare(strings.ToLower(out[i].Name), strings.ToLower(out[j].Name))
		if c == 0 {
			return out[i].ID < out[j].ID
		}
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	total := len(out)
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Author{}, total
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total
}
