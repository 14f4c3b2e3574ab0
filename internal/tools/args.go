package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"folio/internal/models"
)

// requireString is RequireString that also rejects the empty string.
func requireString(req mcp.CallToolRequest, key string) (string, error) {
	v, err := req.RequireString(key)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}
	return v, nil
}

// optionalBool distinguishes an absent argument from false.
func optionalBool(req mcp.CallToolRequest, key string) *bool {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	v := req.GetBool(key, false)
	return &v
}

func requireObject(req mcp.CallToolRequest, key string) (map[string]any, error) {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("required argument %q not found", key)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an object", key)
	}
	return obj, nil
}

func requireStringSlice(req mcp.CallToolRequest, key string) ([]string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return nil, fmt.Errorf("required argument %q not found", key)
	}
	items, ok := raw.([]any)
	if !ok {
		if ss, ok := raw.([]string); ok {
			return ss, nil
		}
		return nil, fmt.Errorf("argument %q must be an array of strings", key)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// stringMap converts a JSON object of strings, as sent for bulk updates.
func stringMap(obj map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(obj))
	var errs []error
	for k, v := range obj {
		s, ok := v.(string)
		if !ok {
			errs = append(errs, fmt.Errorf("value for %q must be a string", k))
			continue
		}
		out[k] = s
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func projectFields(obj map[string]any) models.ProjectFields {
	fields := make(models.ProjectFields, len(obj))
	for k, v := range obj {
		fields[k] = v
	}
	return fields
}
