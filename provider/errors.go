package provider

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is returned when a provider response cannot be decoded
// or lacks the expected text field.
var ErrInvalidResponse = errors.New("invalid response format")

// StatusError is returned when a provider answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %s. %s", e.Status, e.Body)
}
