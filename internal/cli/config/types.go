// Package config provides configuration management for the annotator CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	SchemasDir   string                   `koanf:"schemas_dir"`
	Concepts     ConceptsConfig           `koanf:"concepts"`
	StatePath    string                   `koanf:"state_path"`
	Verbose      bool                     `koanf:"verbose"`
	LogLevel     string                   `koanf:"log_level"`
	OutputFormat string                   `koanf:"output"`
	POS          POSConfig                `koanf:"pos"`
	Server       ServerConfig             `koanf:"server"`
	Backends     map[string]BackendConfig `koanf:"backends"`

	// ConfigDir is the directory relative paths were resolved against.
	ConfigDir string `koanf:"-"`
}

// ConceptsConfig locates the concept graph relation files.
type ConceptsConfig struct {
	IsA       string `koanf:"is_a"`
	RelatedTo string `koanf:"related_to"`
}

// POSConfig selects the part-of-speech annotator.
type POSConfig struct {
	// Mode is "lexicon" (built in) or "http" (remote annotator at URL).
	Mode    string        `koanf:"mode"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Retries uint64        `koanf:"retries"`
}

// ServerConfig holds configuration for the HTTP API.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// BackendConfig describes a semantic parser reachable over HTTP.
type BackendConfig struct {
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Retries uint64        `koanf:"retries"`
}

// Default configuration values.
const (
	DefaultSchemasDir = "schemas"
	DefaultIsA        = "concepts/english_IsA.json"
	DefaultRelatedTo  = "concepts/english_RelatedTo.json"
	DefaultStateFile  = ".annotator/history.db"
	DefaultLogLevel   = "warn"
	DefaultOutput     = "auto" // TTY=text, otherwise json
	DefaultPOSMode    = "prose"
	DefaultPOSTimeout = 10 * time.Second
	DefaultPort       = 8780
	DefaultTimeout    = 30 * time.Second
)

// POS annotator modes.
const (
	POSModeProse   = "prose"
	POSModeLexicon = "lexicon"
	POSModeHTTP    = "http"
)
