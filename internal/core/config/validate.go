package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// Validate checks that the configuration is structurally valid. Missing
// store addresses are not errors here: the chat feature reports them itself.
func (c *Config) Validate() error {
	var errs criterio.FieldErrors

	add := func(field, msg string) {
		errs = append(errs, criterio.FieldErrors{{Field: field, Err: errors.New(msg)}}...)
	}

	if c.DataDir == "" {
		add("data_dir", "data directory cannot be empty")
	}

	switch c.Store.Backend {
	case BackendJSONFile, BackendBadger, BackendSQLite:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			add("store.redis_addr", "required when store.backend is redis")
		}
	default:
		add("store.backend", fmt.Sprintf("unknown backend %q (want jsonfile, badger, sqlite or redis)", c.Store.Backend))
	}

	if c.Chat.ReconcileDelay < 0 {
		add("chat.reconcile_delay", "must not be negative")
	}
	if c.Chat.RequestTimeout < 0 {
		add("chat.request_timeout", "must not be negative")
	}
	if c.Auth.TokenTTL < 0 {
		add("auth.token_ttl", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Warnings returns non-fatal issues worth surfacing in doctor output.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Store.DatabaseID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Store",
			Item:     "database_id",
			Message:  "not set; the chat room cannot load or send messages",
		})
	}
	if c.Store.CollectionID == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Store",
			Item:     "collection_id",
			Message:  "not set; the chat room cannot load or send messages",
		})
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
			warnings = append(warnings, ValidationWarning{
				Category: "File Access",
				Item:     "data_dir",
				Message:  fmt.Sprintf("%s exists but is not a directory", c.DataDir),
			})
		}
	}

	return warnings
}
