package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// EnvConfigPath overrides the config file discovery when set.
const EnvConfigPath = "JOB_CONFIG"

const configFileName = "job.toml"

// Page is one configured career page as declared in the config file.
// For keyword resolution a page may set keywords (replacing the global
// list) or extra-keywords (appended to it), never both.
type Page struct {
	Company       string   `mapstructure:"company"`
	URL           string   `mapstructure:"url"`
	Enabled       *bool    `mapstructure:"enabled"`
	Keywords      []string `mapstructure:"keywords"`
	ExtraKeywords []string `mapstructure:"extra-keywords"`
}

// IsEnabled treats an unset flag as enabled.
func (p Page) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Search holds the career page search settings.
type Search struct {
	Keywords []string `mapstructure:"keywords"`
	Parallel int      `mapstructure:"parallel"`
	NoJS     bool     `mapstructure:"no-js"`
	Pages    []Page   `mapstructure:"in"`
}

// Add holds job ingestion settings.
type Add struct {
	Browser bool   `mapstructure:"browser"`
	Model   string `mapstructure:"model"`
}

// Fit holds fit assessment settings.
type Fit struct {
	CV    string   `mapstructure:"cv"`
	Model string   `mapstructure:"model"`
	Extra []string `mapstructure:"extra"`
}

// App holds application drafting settings.
type App struct {
	Model  string   `mapstructure:"model"`
	CV     string   `mapstructure:"cv"`
	Letter string   `mapstructure:"letter"`
	Extra  []string `mapstructure:"extra"`
}

// GitHub holds issue mirroring settings.
type GitHub struct {
	Repo          string   `mapstructure:"repo"`
	AutoAssign    bool     `mapstructure:"auto-assign"`
	DefaultLabels []string `mapstructure:"default-labels"`
}

// Gemini holds provider settings for the Gemini backend.
type Gemini struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// AI groups provider configurations.
type AI struct {
	Gemini Gemini `mapstructure:"gemini"`
}

// Config is the typed view of a ResolvedConfig.
type Config struct {
	Model   string `mapstructure:"model"`
	Verbose bool   `mapstructure:"verbose"`
	DBPath  string `mapstructure:"db-path"`
	Search  Search `mapstructure:"search"`
	Add     Add    `mapstructure:"add"`
	Fit     Fit    `mapstructure:"fit"`
	App     App    `mapstructure:"app"`
	GH      GitHub `mapstructure:"gh"`
	AI      AI     `mapstructure:"ai"`
}

// ModelFor picks the AI model with precedence: command flag override,
// per-command config, top-level model, built-in default.
func (c *Config) ModelFor(override, commandModel string) string {
	for _, candidate := range []string{override, commandModel, c.Model} {
		if candidate != "" {
			return candidate
		}
	}
	if c.AI.Gemini.Model != "" {
		return c.AI.Gemini.Model
	}
	return DefaultModel
}

// KeywordsForPage applies the page-level merge policy over the global
// keyword list: page keywords replace it, extra-keywords extend it, a page
// declaring neither inherits it verbatim.
func KeywordsForPage(global []string, p Page) []string {
	if len(p.Keywords) > 0 {
		return appendUnique(nil, p.Keywords)
	}
	return appendUnique(appendUnique(nil, global), p.ExtraKeywords)
}

// FindConfigFile returns the first existing config file, following the
// documented precedence: JOB_CONFIG, ./job.toml, XDG config dir, home
// dotfile. Empty string means no config file, which is fine: defaults,
// environment and flags still resolve.
func FindConfigFile() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}
	if path := filepath.Join(configHome, "job", configFileName); fileExists(path) {
		return path
	}

	if path := filepath.Join(home, ".job.toml"); fileExists(path) {
		return path
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Flags and FlagBindings describe the CLI settings source. Nil Flags
	// drops the source.
	Flags        *pflag.FlagSet
	FlagBindings map[string]string
	// ConfigFile forces a config file path. Empty means discovery.
	ConfigFile string
	Logger     *zap.Logger
}

// Load assembles the four settings sources, resolves them against the
// default schema and decodes the result into a typed Config.
func Load(opts LoadOptions) (*Config, *ResolvedConfig, error) {
	schema := DefaultSchema()

	sources := []Source{
		NewEnvSource(schema, nil),
		NewDefaultsSource(schema),
	}

	if opts.Flags != nil {
		sources = append(sources, NewFlagSource(opts.Flags, opts.FlagBindings))
	}

	path := opts.ConfigFile
	if path == "" {
		path = FindConfigFile()
	} else if !fileExists(path) {
		return nil, nil, fmt.Errorf("config file not found: %s", path)
	}
	if path != "" {
		file, err := NewFileSource(path)
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, file)
	}

	resolved, err := Resolve(sources, schema, opts.Logger)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	if err := resolved.Decode(&cfg); err != nil {
		return nil, nil, fmt.Errorf("decoding resolved config: %w", err)
	}

	return &cfg, resolved, nil
}
