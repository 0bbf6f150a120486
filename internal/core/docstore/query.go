package docstore

import (
	"cmp"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"time"
)

var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Query describes ordering and limits for ListDocuments.
type Query struct {
	OrderBy    string // data field to order by, empty keeps store order
	Descending bool
	Limit      int // 0 means no limit
}

// QueryOption configures a Query.
type QueryOption func(*Query)

// OrderAsc orders results by field, smallest first.
func OrderAsc(field string) QueryOption {
	return func(q *Query) {
		q.OrderBy = field
		q.Descending = false
	}
}

// OrderDesc orders results by field, largest first.
func OrderDesc(field string) QueryOption {
	return func(q *Query) {
		q.OrderBy = field
		q.Descending = true
	}
}

// Limit caps the number of returned documents.
func Limit(n int) QueryOption {
	return func(q *Query) {
		q.Limit = n
	}
}

// NewQuery builds a Query from options.
func NewQuery(opts ...QueryOption) Query {
	var q Query
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// Validate checks that the query can be executed safely by any backend.
func (q Query) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrInvalidQuery)
	}
	if q.OrderBy != "" {
		if err := ValidateFieldName(q.OrderBy); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFieldName reports whether name is usable as a document field in
// queries. SQL backends interpolate it into JSON paths.
func ValidateFieldName(name string) error {
	if !fieldNameRe.MatchString(name) {
		return fmt.Errorf("%w: invalid field name %q", ErrInvalidQuery, name)
	}
	return nil
}

// Apply orders and truncates docs according to q. Backends without native
// ordering use it after loading a collection. Sorting is stable, so documents
// with equal keys keep their insertion order; documents missing the field sort
// before all others.
func Apply(docs []Document, q Query) []Document {
	out := slices.Clone(docs)

	if q.OrderBy != "" {
		slices.SortStableFunc(out, func(a, b Document) int {
			av, _ := a.Field(q.OrderBy)
			bv, _ := b.Field(q.OrderBy)
			c := Compare(av, bv)
			if q.Descending {
				return -c
			}
			return c
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Compare orders two field values. nil sorts first, numbers compare
// numerically, strings lexically, times chronologically. Values of different
// kinds fall back to comparing their formatted representations.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmp.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}

	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
