package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/re3facet/pkg/errors"
	"github.com/matzehuels/re3facet/pkg/hierarchy"
	"github.com/matzehuels/re3facet/pkg/pipeline"
	"github.com/matzehuels/re3facet/pkg/subject"
)

// Tree output formats.
const (
	treeJSON     = "json"
	treeMarkdown = "markdown"
	treeDOT      = "dot"
	treeSVG      = "svg"
)

// Listing output formats.
const (
	listTable = "table"
	listJSON  = "json"
)

// subjectsCommand creates the subjects command group.
func (c *CLI) subjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subjects",
		Short: "Browse the subject hierarchy",
	}

	cmd.AddCommand(c.subjectsTreeCommand())
	cmd.AddCommand(c.subjectsListCommand())
	cmd.AddCommand(c.subjectsFilterCommand())
	cmd.AddCommand(c.subjectsPickCommand())

	return cmd
}

// subjectsTreeCommand creates the "subjects tree" subcommand.
func (c *CLI) subjectsTreeCommand() *cobra.Command {
	var (
		flags  runFlags
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the subject tree",
		Long: `Print the subject hierarchy as checkbox-tree JSON, a Markdown outline,
a Graphviz DOT graph, or an SVG rendered from that graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, treeJSON, treeMarkdown, treeDOT, treeSVG); err != nil {
				return err
			}
			result, err := c.run(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			data, err := renderTree(cmd.Context(), result, format)
			if err != nil {
				return err
			}
			return writeOutput(output, data)
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&format, "format", "f", treeJSON, "output format: json, markdown, dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// renderTree serializes the hierarchy of result in format.
func renderTree(ctx context.Context, result *pipeline.Result, format string) ([]byte, error) {
	switch format {
	case treeMarkdown:
		return []byte(hierarchy.ToMarkdown(result.Hierarchy, 0)), nil
	case treeDOT:
		return []byte(hierarchy.ToDOT(result.Hierarchy)), nil
	case treeSVG:
		return hierarchy.RenderSVG(ctx, hierarchy.ToDOT(result.Hierarchy))
	default:
		data, err := json.MarshalIndent(result.Tree, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// subjectsListCommand creates the "subjects list" subcommand.
func (c *CLI) subjectsListCommand() *cobra.Command {
	var (
		flags  runFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every subject with the number of repositories using it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, listTable, listJSON); err != nil {
				return err
			}
			result, err := c.run(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			return printFrequencies(result.Subjects, format)
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&format, "format", "f", listTable, "output format: table, json")
	return cmd
}

// subjectsFilterCommand creates the "subjects filter" subcommand.
func (c *CLI) subjectsFilterCommand() *cobra.Command {
	var (
		flags        runFlags
		selected     string
		format       string
		repositories bool
	)

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Show the subjects, or repositories, matching checked tree values",
		Long: `Filter keeps every subject whose hierarchy contains at least one of the
selected tree values. Selecting "1-01" therefore keeps "1-01" and every
subject below it, but not its parent "1".`,
		Example: `  re3facet subjects filter --select 1-01,2
  re3facet subjects filter --select 1-01-02 --repositories`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateFormat(format, listTable, listJSON); err != nil {
				return err
			}
			sel, err := subject.ParseSelection(selected)
			if err != nil {
				return err
			}
			result, err := c.run(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			return showSelection(result, sel, repositories, format)
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().StringVarP(&selected, "select", "s", "", "comma-separated tree values")
	cmd.Flags().StringVarP(&format, "format", "f", listTable, "output format: table, json")
	cmd.Flags().BoolVar(&repositories, "repositories", false, "list matching repositories instead of subjects")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

// subjectsPickCommand creates the "subjects pick" subcommand.
func (c *CLI) subjectsPickCommand() *cobra.Command {
	var (
		flags        runFlags
		repositories bool
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Check subjects interactively and show what they match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd.Context(), &flags)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewPickerModel(result.Hierarchy), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("picker: %w", err)
			}
			m := final.(PickerModel)
			if !m.Confirmed {
				printInfo("Selection cancelled")
				return nil
			}
			sel := m.Selection()
			if len(sel) == 0 {
				printInfo("Nothing checked")
				return nil
			}
			printInfo("Selected %v", sel.Values())
			return showSelection(result, sel, repositories, listTable)
		},
	}

	addRunFlags(cmd, &flags)
	cmd.Flags().BoolVar(&repositories, "repositories", false, "list matching repositories instead of subjects")
	return cmd
}

// showSelection prints the subjects, or repositories, matching sel.
func showSelection(result *pipeline.Result, sel subject.Selection, repositories bool, format string) error {
	if repositories {
		table := subject.FilterRecords(result.Table, sel)
		if format == listJSON {
			return printJSON(table.Records)
		}
		if table.Len() == 0 {
			printInfo("No repositories match")
			return nil
		}
		fmt.Println(recordTable(table.Records))
		printDetail("%d of %d repositories", table.Len(), result.Table.Len())
		return nil
	}
	return printFrequencies(subject.FilterBySelection(result.Subjects, sel), format)
}

func printFrequencies(rows []subject.Frequency, format string) error {
	if format == listJSON {
		if rows == nil {
			rows = []subject.Frequency{}
		}
		return printJSON(rows)
	}
	if len(rows) == 0 {
		printInfo("No subjects match")
		return nil
	}
	fmt.Println(frequencyTable(rows))
	printDetail("%d subjects", len(rows))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printSuccess("Wrote output")
	printFile(path)
	return nil
}
