package chat

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports that the store address is incomplete.
type ConfigurationError struct {
	Missing []string // config keys that are unset
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("database configuration is missing: %s", strings.Join(e.Missing, ", "))
}

// FetchError wraps a failed message query.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "fetch messages: " + describe(e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// SendError wraps a failed message write.
type SendError struct {
	Err error
}

func (e *SendError) Error() string { return "send message: " + describe(e.Err) }
func (e *SendError) Unwrap() error { return e.Err }

// UserMessage converts err into the text shown to the user.
func UserMessage(err error) string {
	var (
		cfgErr   *ConfigurationError
		fetchErr *FetchError
		sendErr  *SendError
	)

	switch {
	case errors.As(err, &cfgErr):
		return "Database configuration is missing"
	case errors.As(err, &fetchErr):
		return "Failed to load messages: " + describe(fetchErr.Err)
	case errors.As(err, &sendErr):
		return "Failed to send message: " + describe(sendErr.Err)
	default:
		return describe(err)
	}
}

func describe(err error) string {
	if err == nil {
		return "Unknown error"
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "Unknown error"
	}
	return msg
}
