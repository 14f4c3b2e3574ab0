package clix

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

type PaginationParams struct {
	Page  int
	Limit int
}

// ParsePagination reads --page and --limit, clamping to the API's bounds.
func ParsePagination(flags *pflag.FlagSet) (PaginationParams, error) {
	page, _ := flags.GetInt("page")
	limit, _ := flags.GetInt("limit")
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 1000 {
		return PaginationParams{}, fmt.Errorf("--limit must be at most 1000, got %d", limit)
	}
	return PaginationParams{Page: page, Limit: limit}, nil
}

// ParseList splits a comma-separated flag value, dropping blanks.
func ParseList(flags *pflag.FlagSet, name string) ([]string, error) {
	raw, err := flags.GetString(name)
	if err != nil {
		return nil, err
	}
	var out []string
	if raw != "" {
		// Trim space and filter out empty strings in one pass
		for _, t := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(t)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out, nil
}

// ParseOutput reads --output and rejects unknown formats.
func ParseOutput(flags *pflag.FlagSet) (string, error) {
	format, _ := flags.GetString("output")
	switch format = strings.ToLower(strings.TrimSpace(format)); format {
	case "":
		return OutputTable, nil
	case OutputTable, OutputJSON, OutputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want %s, %s or %s)", format, OutputTable, OutputJSON, OutputYAML)
	}
}
