package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/matzehuels/re3facet/pkg/registry"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"id", "name", "types", "identifiers", "url", "subjects", "keywords", "metadata_standards"}

// WriteCSV writes table as CSV with a header row.
func WriteCSV(w io.Writer, table registry.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range table.Records {
		row := []string{
			r.ID,
			r.Name,
			join(r.Types),
			join(r.Identifiers),
			r.URL,
			join(r.Subjects),
			join(r.Keywords),
			join(r.MetadataStandards),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func join(values []string) string {
	return strings.Join(values, ListSeparator)
}
