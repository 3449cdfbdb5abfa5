// Package export writes repository tables to files and databases.
//
// File formats:
//
//   - [WriteJSON]: an indented JSON array of records
//   - [WriteCSV]: one row per record, list fields joined with ";"
//
// Database sinks:
//
//   - [SQLiteSink]: an embedded SQLite file with a repositories table and a
//     repository_subjects table (one row per listed subject)
//   - [MongoSink]: one document per record, upserted by re3data identifier
package export

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/re3facet/pkg/registry"
)

// Supported export formats.
const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
	FormatMongo  = "mongo"
)

// Formats lists every supported export format.
var Formats = []string{FormatJSON, FormatCSV, FormatSQLite, FormatMongo}

// ListSeparator joins list fields in flat formats.
const ListSeparator = ";"

// WriteJSON writes the records of table as an indented JSON array.
func WriteJSON(w io.Writer, table registry.Table) error {
	records := table.Records
	if records == nil {
		records = []registry.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
