package subject

import (
	"slices"
	"strings"

	"github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/registry"
)

// Selection is the set of checked tree values.
type Selection map[string]struct{}

// NewSelection builds a selection from values.
func NewSelection(values ...string) Selection {
	sel := make(Selection, len(values))
	for _, v := range values {
		sel[v] = struct{}{}
	}
	return sel
}

// ParseSelection parses a comma-separated list of tree values, dropping
// blanks. Every value is validated.
func ParseSelection(csv string) (Selection, error) {
	var values []string
	for _, v := range strings.Split(csv, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if err := errors.ValidateSelection(values); err != nil {
		return nil, err
	}
	return NewSelection(values...), nil
}

// Has reports whether value is selected.
func (s Selection) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Values returns the selected values in sorted order.
func (s Selection) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Intersects reports whether any element of hierarchy is selected.
func (s Selection) Intersects(hierarchy []string) bool {
	return slices.ContainsFunc(hierarchy, s.Has)
}

// FilterBySelection returns the rows whose hierarchy intersects sel.
// It is a set-intersection test: selecting "1" matches every row below
// "1" because each hierarchy lists all of its ancestors.
func FilterBySelection(rows []Frequency, sel Selection) []Frequency {
	out := make([]Frequency, 0, len(rows))
	for _, r := range rows {
		if sel.Intersects(r.Subject.Hierarchy) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRecords returns the repositories listing at least one subject whose
// hierarchy intersects sel. Malformed subjects never match.
func FilterRecords(table registry.Table, sel Selection) registry.Table {
	return table.Filter(func(r registry.Record) bool {
		for _, raw := range r.Subjects {
			if s, err := Decompose(raw); err == nil && sel.Intersects(s.Hierarchy) {
				return true
			}
		}
		return false
	})
}
