package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"folio/internal/clix"
)

// printStructured writes v as JSON or YAML. It reports false for the table
// format so the caller can draw its own table.
func printStructured(w io.Writer, format string, v any) (bool, error) {
	switch format {
	case clix.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case clix.OutputYAML:
		doc, err := yamlDocument(v)
		if err != nil {
			return true, err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return true, fmt.Errorf("encode yaml: %w", err)
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// yamlDocument keeps the json field names: the JSON encoding is re-read as a
// YAML node tree and printed in block style.
func yamlDocument(v any) (*yaml.Node, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	blockStyle(&doc)
	return &doc, nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(true)
	table.SetAutoWrapText(false)
	return table
}
