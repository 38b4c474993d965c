package marketplace

import (
	"errors"
	"fmt"
)

// withSentinel makes sure err matches sentinel. Errors from the marketplace client already
// carry their sentinel and are returned unchanged.
func withSentinel(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// errorMessage renders err for result messages, tolerating nil
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
