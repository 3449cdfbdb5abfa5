package subject

import (
	"errors"

	"github.com/matzehuels/re3facet/pkg/registry"
)

// Frequency is one row of the per-subject frequency table.
type Frequency struct {
	Subject       Subject  `json:"subject"`
	Count         int      `json:"count"`
	RepositoryIDs []string `json:"repository_ids"`
}

// Frequencies groups every subject of every record. Rows appear in order of
// first encounter; Count is the number of distinct repositories listing the
// subject.
//
// Malformed subjects are excluded and passed to diag, which may be nil.
func Frequencies(table registry.Table, diag func(error)) []Frequency {
	var (
		rows  []Frequency
		index = make(map[string]int)
	)
	for _, rec := range table.Records {
		for _, raw := range rec.Subjects {
			i, seen := index[raw]
			if !seen {
				s, err := Decompose(raw)
				if err != nil {
					if diag != nil {
						diag(withRepository(err, rec.ID))
					}
					continue
				}
				i = len(rows)
				index[raw] = i
				rows = append(rows, Frequency{Subject: s})
			}
			row := &rows[i]
			if n := len(row.RepositoryIDs); n > 0 && row.RepositoryIDs[n-1] == rec.ID {
				continue
			}
			row.Count++
			row.RepositoryIDs = append(row.RepositoryIDs, rec.ID)
		}
	}
	return rows
}

func withRepository(err error, id string) error {
	var me *MalformedSubjectError
	if errors.As(err, &me) {
		cp := *me
		cp.Repository = id
		return &cp
	}
	return err
}
