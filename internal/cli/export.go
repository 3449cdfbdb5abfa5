package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/export"
	"github.com/matzehuels/re3facet/pkg/pipeline"
	"github.com/matzehuels/re3facet/pkg/subject"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	format     string // json, csv, sqlite or mongo
	output     string // output file; required for sqlite
	selected   string // optional comma-separated tree values
	mongoURI   string // MongoDB connection string
	database   string // MongoDB database
	collection string // MongoDB collection
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags runFlags
	opts := exportOpts{
		format:     export.FormatJSON,
		database:   export.DefaultMongoDatabase,
		collection: export.DefaultMongoCollection,
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the repository table",
		Long: `Export writes the repository table as JSON or CSV, into an SQLite
database, or into a MongoDB collection. With --select only repositories
matching the checked tree values are exported.`,
		Example: `  re3facet export --format csv -o repositories.csv
  re3facet export --format sqlite -o re3data.db --select 1-01
  re3facet export --format mongo --mongo-uri mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(opts.format, export.Formats...); err != nil {
				return err
			}
			result, err := c.run(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			return runExport(cmd.Context(), result, &opts)
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "export format: json, csv, sqlite, mongo")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout; required for sqlite)")
	cmd.Flags().StringVarP(&opts.selected, "select", "s", "", "export only repositories matching these tree values")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", os.Getenv("RE3FACET_MONGO_URI"), "MongoDB connection string")
	cmd.Flags().StringVar(&opts.database, "database", opts.database, "MongoDB database")
	cmd.Flags().StringVar(&opts.collection, "collection", opts.collection, "MongoDB collection")

	return cmd
}

func runExport(ctx context.Context, result *pipeline.Result, opts *exportOpts) error {
	logger := loggerFromContext(ctx)

	table := result.Table
	if opts.selected != "" {
		sel, err := subject.ParseSelection(opts.selected)
		if err != nil {
			return err
		}
		table = subject.FilterRecords(table, sel)
		logger.Debug("filtered table", "selected", sel.Values(), "records", table.Len())
	}

	switch opts.format {
	case export.FormatCSV:
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, table); err != nil {
			return err
		}
		return writeOutput(opts.output, buf.Bytes())

	case export.FormatSQLite:
		if opts.output == "" {
			return errors.New(errors.ErrCodeInvalidInput, "sqlite export needs --output")
		}
		sink, err := export.OpenSQLite(opts.output)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.Write(ctx, table); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		printSuccess("Exported %d repositories", table.Len())
		printFile(sink.Path())
		return nil

	case export.FormatMongo:
		if opts.mongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "mongo export needs --mongo-uri or RE3FACET_MONGO_URI")
		}
		sink, err := export.NewMongoSink(ctx, opts.mongoURI, opts.database, opts.collection)
		if err != nil {
			return err
		}
		defer sink.Close(context.WithoutCancel(ctx))
		spin := newSpinner(ctx, os.Stderr, fmt.Sprintf("Writing %d repositories to MongoDB", table.Len()))
		spin.Start()
		n, err := sink.Write(ctx, result.RunID, table)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("mongo export: %w", err)
		}
		printSuccess("Exported %d repositories (%d changed)", table.Len(), n)
		printDetail("%s.%s", opts.database, opts.collection)
		return nil

	default:
		var buf bytes.Buffer
		if err := export.WriteJSON(&buf, table); err != nil {
			return err
		}
		return writeOutput(opts.output, buf.Bytes())
	}
}
