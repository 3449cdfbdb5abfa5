package registry

import (
	"errors"
	"slices"
)

// Table holds repository records in fetch order.
// Derived tables are new values; a Table is never mutated after Build.
type Table struct {
	Records []Record `json:"records"`
}

// Len returns the number of records.
func (t Table) Len() int { return len(t.Records) }

// Filter returns a new table with the records for which keep returns true.
func (t Table) Filter(keep func(Record) bool) Table {
	out := Table{Records: make([]Record, 0, len(t.Records))}
	for _, r := range t.Records {
		if keep(r) {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// ByID returns the record with the given re3data identifier.
func (t Table) ByID(id string) (Record, bool) {
	i := slices.IndexFunc(t.Records, func(r Record) bool { return r.ID == id })
	if i < 0 {
		return Record{}, false
	}
	return t.Records[i], true
}

// Build extracts every document in order. The first malformed document
// aborts the build with a *MalformedRecordError carrying its index.
func Build(docs []RawDocument) (Table, error) {
	t := Table{Records: make([]Record, 0, len(docs))}
	for i, doc := range docs {
		r, err := Extract(doc)
		if err != nil {
			return Table{}, atIndex(err, i)
		}
		t.Records = append(t.Records, r)
	}
	return t, nil
}

// BuildLenient extracts every document in order, skipping malformed ones.
// The skipped documents are reported as *MalformedRecordError values.
func BuildLenient(docs []RawDocument) (Table, []error) {
	var errs []error
	t := Table{Records: make([]Record, 0, len(docs))}
	for i, doc := range docs {
		r, err := Extract(doc)
		if err != nil {
			errs = append(errs, atIndex(err, i))
			continue
		}
		t.Records = append(t.Records, r)
	}
	return t, errs
}

func atIndex(err error, i int) error {
	var me *MalformedRecordError
	if errors.As(err, &me) {
		cp := *me
		cp.Index = i
		return &cp
	}
	return err
}
