package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUpstream     = errors.New("portfolio api error")
	ErrNoMessages   = errors.New("no messages provided")
	ErrToolNotFound = errors.New("tool not found")
)

// APIError is returned for non-2xx responses from the portfolio API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("portfolio api returned status %d", e.Status)
	}
	return fmt.Sprintf("portfolio api returned status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error { return ErrUpstream }
