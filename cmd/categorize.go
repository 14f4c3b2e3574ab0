package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"folio/internal/clix"
	"folio/pkg/categorizer"
)

var (
	categorizeAll    bool
	categorizeOutput string
)

// categorizeCmd classifies entries without touching the portfolio API.
var categorizeCmd = &cobra.Command{
	Use:   "categorize [entry...]",
	Short: "Classify technology entries into categories",
	Long: `Assigns each entry to technology, tool, skill, responsibility, process,
hardware or other using the built-in rule table.

Entries are read from the arguments, or one per line from stdin when no
arguments are given. --all partitions the distinct entries by category.`,
	Annotations: map[string]string{offlineAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := clix.ParseOutput(cmd.Flags())
		if err != nil {
			return err
		}

		entries := args
		if len(entries) == 0 {
			if entries, err = readLines(cmd.InOrStdin()); err != nil {
				return fmt.Errorf("read entries: %w", err)
			}
		}
		if len(entries) == 0 {
			return fmt.Errorf("no entries given")
		}

		out := cmd.OutOrStdout()
		if categorizeAll {
			return printPartition(out, format, categorizer.CategorizeAll(entries))
		}
		return printClassified(out, format, entries)
	},
}

type classifiedEntry struct {
	Entry    string               `json:"entry"`
	Category categorizer.Category `json:"category"`
}

func printClassified(w io.Writer, format string, entries []string) error {
	rows := make([]classifiedEntry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, classifiedEntry{Entry: e, Category: categorizer.Categorize(e)})
	}
	if done, err := printStructured(w, format, rows); done {
		return err
	}

	table := newTable(w, "Entry", "Category")
	for _, r := range rows {
		table.Append([]string{r.Entry, categoryColor(r.Category)(string(r.Category))})
	}
	table.Render()
	return nil
}

func printPartition(w io.Writer, format string, groups map[categorizer.Category][]string) error {
	if done, err := printStructured(w, format, groups); done {
		return err
	}

	table := newTable(w, "Category", "Count", "Entries")
	for _, c := range categorizer.Categories {
		table.Append([]string{
			categoryColor(c)(string(c)),
			fmt.Sprint(len(groups[c])),
			strings.Join(groups[c], ", "),
		})
	}
	table.Render()
	return nil
}

func categoryColor(c categorizer.Category) func(a ...interface{}) string {
	switch c {
	case categorizer.Technology:
		return color.New(color.FgGreen).SprintFunc()
	case categorizer.Tool:
		return color.New(color.FgCyan).SprintFunc()
	case categorizer.Skill:
		return color.New(color.FgYellow).SprintFunc()
	case categorizer.Hardware:
		return color.New(color.FgMagenta).SprintFunc()
	case categorizer.Other:
		return color.New(color.Faint).SprintFunc()
	default:
		return fmt.Sprint
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func init() {
	rootCmd.AddCommand(categorizeCmd)

	categorizeCmd.Flags().BoolVar(&categorizeAll, "all", false, "Partition the entries by category")
	categorizeCmd.Flags().StringVarP(&categorizeOutput, "output", "o", clix.OutputTable, "Output format (table, json, yaml)")
}
