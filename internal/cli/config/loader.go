package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store the logger in context.
type loggerKey struct{}

// configKey is used to store the loaded config in context.
type configKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// EnvPrefix is the prefix of configuration environment variables.
// Nested keys use a double underscore: ANNOTATOR_POS__MODE sets pos.mode.
const EnvPrefix = "ANNOTATOR_"

var configFileNames = []string{"annotator.yaml", "annotator.yml"}

// configFileUsed tracks the file read by the last load.
var configFileUsed string

// flagKeys maps flag names to config keys where they differ.
var flagKeys = map[string]string{
	"state":      "state_path",
	"is-a":       "concepts.is_a",
	"related-to": "concepts.related_to",
	"pos-mode":   "pos.mode",
	"pos-url":    "pos.url",
	"port":       "server.port",
}

// pathFlags are flags holding paths; their values are relative to the CWD.
var pathFlags = map[string]bool{
	"schemas-dir": true,
	"state":       true,
	"is-a":        true,
	"related-to":  true,
}

// findConfigFile searches upward from startDir for a config file.
func findConfigFile(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty, already absolute or ":memory:".
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
//
// Paths from the config file and defaults are resolved against the config
// file's directory (or the CWD when there is none); paths given as flags are
// resolved against the CWD.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"schemas_dir":         DefaultSchemasDir,
		"concepts.is_a":       DefaultIsA,
		"concepts.related_to": DefaultRelatedTo,
		"state_path":          DefaultStateFile,
		"verbose":             false,
		"log_level":           DefaultLogLevel,
		"output":              DefaultOutput,
		"pos.mode":            DefaultPOSMode,
		"pos.timeout":         DefaultPOSTimeout.String(),
		"server.port":         DefaultPort,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if cfgFile == "" {
		cfgFile = findConfigFile(cwd)
	}
	configFileUsed = cfgFile
	baseDir := cwd
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
		if abs, err := filepath.Abs(cfgFile); err == nil {
			baseDir = filepath.Dir(abs)
		}
	}

	// 3. Environment: ANNOTATOR_SCHEMAS_DIR -> schemas_dir, ANNOTATOR_POS__URL -> pos.url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (explicitly set only)
	flagPaths := map[string]string{}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if pathFlags[f.Name] {
				flagPaths[key] = f.Value.String()
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Decode
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve paths
	cfg.ConfigDir = baseDir
	resolve := func(key string, path *string) {
		if _, fromFlag := flagPaths[key]; fromFlag {
			*path = resolvePathRelativeTo(*path, cwd)
			return
		}
		*path = resolvePathRelativeTo(*path, baseDir)
	}
	resolve("schemas_dir", &cfg.SchemasDir)
	resolve("concepts.is_a", &cfg.Concepts.IsA)
	resolve("concepts.related_to", &cfg.Concepts.RelatedTo)
	resolve("state_path", &cfg.StatePath)

	cfg.POS.URL = expandEnvVars(cfg.POS.URL)
	for name, b := range cfg.Backends {
		b.URL = expandEnvVars(b.URL)
		if b.Timeout == 0 {
			b.Timeout = DefaultTimeout
		}
		cfg.Backends[name] = b
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a context carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, or the defaults
// resolved against the CWD when none was loaded.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		SchemasDir:   DefaultSchemasDir,
		Concepts:     ConceptsConfig{IsA: DefaultIsA, RelatedTo: DefaultRelatedTo},
		StatePath:    DefaultStateFile,
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		POS:          POSConfig{Mode: DefaultPOSMode, Timeout: DefaultPOSTimeout},
		Server:       ServerConfig{Port: DefaultPort},
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}
