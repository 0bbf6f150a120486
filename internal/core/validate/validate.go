// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"strings"
)

// MessageText validates a chat message is non-empty after trimming whitespace.
func MessageText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message text is required")
	}
	return nil
}
