package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Source precedence ranks. Lower rank wins.
const (
	RankFlags    = 0
	RankEnv      = 1
	RankFile     = 2
	RankDefaults = 3
)

// EnvPrefix is the prefix of every environment variable the CLI reads.
// Nested key paths use a double underscore: JOB_SEARCH__PARALLEL.
const EnvPrefix = "JOB_"

// Source is one provider of raw setting values. Sources are immutable once
// loaded for the process lifetime.
type Source interface {
	Name() string
	Rank() int
	// Get returns the raw value for the key path and whether the source
	// defines it at all.
	Get(key string) (any, bool)
	// Keys lists every key path the source defines, used to warn about
	// settings the schema does not know.
	Keys() []string
}

// flagSource exposes changed cobra/pflag flags as a settings source.
// Flags left at their declared default do not count as defined, so they
// never shadow lower-precedence sources.
type flagSource struct {
	fs       *pflag.FlagSet
	bindings map[string]string // key path -> flag name
}

// NewFlagSource binds key paths to flags of the given set.
func NewFlagSource(fs *pflag.FlagSet, bindings map[string]string) Source {
	return &flagSource{fs: fs, bindings: bindings}
}

func (s *flagSource) Name() string { return "flags" }
func (s *flagSource) Rank() int    { return RankFlags }

func (s *flagSource) Get(key string) (any, bool) {
	name, ok := s.bindings[key]
	if !ok || !s.fs.Changed(name) {
		return nil, false
	}

	flag := s.fs.Lookup(name)
	if flag == nil {
		return nil, false
	}

	switch flag.Value.Type() {
	case "bool":
		v, _ := s.fs.GetBool(name)
		return v, true
	case "int":
		v, _ := s.fs.GetInt(name)
		return v, true
	case "stringArray":
		v, _ := s.fs.GetStringArray(name)
		return v, true
	case "stringSlice":
		v, _ := s.fs.GetStringSlice(name)
		return v, true
	default:
		return flag.Value.String(), true
	}
}

func (s *flagSource) Keys() []string {
	keys := make([]string, 0, len(s.bindings))
	for key, name := range s.bindings {
		if s.fs.Changed(name) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// envSource reads JOB_-prefixed process environment variables. It is built
// against the schema because the env name mangling (dots to double
// underscores, dashes to underscores) is not reversible.
type envSource struct {
	values map[string]string
}

// NewEnvSource captures the relevant environment once. Pass nil environ to
// read the process environment.
func NewEnvSource(schema Schema, environ map[string]string) Source {
	if environ == nil {
		environ = make(map[string]string)
		for _, entry := range os.Environ() {
			if name, value, ok := strings.Cut(entry, "="); ok {
				environ[name] = value
			}
		}
	}

	values := make(map[string]string)

	lookup := func(name string) (string, bool) {
		v, ok := environ[name]
		return v, ok
	}

	for _, f := range schema {
		for _, key := range []string{f.Key, f.ExtraKey} {
			if key == "" {
				continue
			}
			if v, ok := lookup(EnvName(key)); ok {
				values[key] = v
			}
		}
	}

	return &envSource{values: values}
}

// EnvName converts a dotted key path to its environment variable name,
// e.g. search.extra-keywords -> JOB_SEARCH__EXTRA_KEYWORDS.
func EnvName(key string) string {
	mangled := strings.NewReplacer(".", "__", "-", "_").Replace(key)
	return EnvPrefix + strings.ToUpper(mangled)
}

func (s *envSource) Name() string { return "environment" }
func (s *envSource) Rank() int    { return RankEnv }

func (s *envSource) Get(key string) (any, bool) {
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return v, true
}

func (s *envSource) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// fileSource reads the [job] table of a TOML config file through viper.
type fileSource struct {
	path string
	v    *viper.Viper
}

// NewFileSource parses the TOML file at path. A file without a [job] table
// yields an empty source.
func NewFileSource(path string) (Source, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return &fileSource{path: path, v: v.Sub("job")}, nil
}

func (s *fileSource) Name() string { return fmt.Sprintf("file %s", s.path) }
func (s *fileSource) Rank() int    { return RankFile }

func (s *fileSource) Get(key string) (any, bool) {
	if s.v == nil || !s.v.IsSet(key) {
		return nil, false
	}
	return s.v.Get(key), true
}

func (s *fileSource) Keys() []string {
	if s.v == nil {
		return nil
	}
	keys := s.v.AllKeys()
	sort.Strings(keys)
	return keys
}

// defaultsSource exposes the schema-declared defaults as the
// lowest-precedence source.
type defaultsSource struct {
	schema Schema
}

// NewDefaultsSource derives the defaults source from the schema.
func NewDefaultsSource(schema Schema) Source {
	return &defaultsSource{schema: schema}
}

func (s *defaultsSource) Name() string { return "defaults" }
func (s *defaultsSource) Rank() int    { return RankDefaults }

func (s *defaultsSource) Get(key string) (any, bool) {
	f, ok := s.schema.Lookup(key)
	if !ok || f.Default == nil {
		return nil, false
	}
	return f.Default, true
}

func (s *defaultsSource) Keys() []string {
	keys := make([]string, 0, len(s.schema))
	for _, f := range s.schema {
		if f.Default != nil {
			keys = append(keys, f.Key)
		}
	}
	sort.Strings(keys)
	return keys
}
