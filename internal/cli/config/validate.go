package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: must be auto, text or json", c.OutputFormat)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	switch c.POS.Mode {
	case POSModeProse, POSModeLexicon:
	case POSModeHTTP:
		if err := validateURL("pos.url", c.POS.URL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid pos.mode %q: must be %s, %s or %s", c.POS.Mode, POSModeProse, POSModeLexicon, POSModeHTTP)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	for name, b := range c.Backends {
		if err := validateURL("backends."+name+".url", b.URL); err != nil {
			return err
		}
	}
	return nil
}

// ValidateResources checks that the schema directory and concept files exist.
func (c *Config) ValidateResources() error {
	if _, err := os.Stat(c.SchemasDir); os.IsNotExist(err) {
		return fmt.Errorf("schemas directory does not exist: %s\nHint: create it or use --schemas-dir to specify a different path", c.SchemasDir)
	}
	for _, path := range []string{c.Concepts.IsA, c.Concepts.RelatedTo} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("concept file does not exist: %s\nHint: use --is-a and --related-to to specify the concept graph files", path)
		}
	}
	return nil
}

// ParseLevel converts a log level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid log_level %q: must be debug, info, warn or error", name)
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s %q", key, raw)
	}
	return nil
}
