package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// ResolvedConfig is the effective configuration after merging all sources.
// It is built once per invocation and read-only afterwards; re-running
// Resolve is the only way to obtain different values.
type ResolvedConfig struct {
	values map[string]any
}

// Get returns the resolved value for a key path.
func (c *ResolvedConfig) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns every resolved key path, sorted.
func (c *ResolvedConfig) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for key := range c.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Decode populates a typed struct from the resolved tree using mapstructure
// tags, expanding dotted key paths into nested maps first.
func (c *ResolvedConfig) Decode(out any) error {
	nested := make(map[string]any)
	for key, value := range c.values {
		node := nested
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(nested)
}

// Resolve merges the settings sources into one effective configuration,
// evaluating every schema field independently under its merge policy.
// Resolution is deterministic and side-effect-free: identical sources
// always produce an identical ResolvedConfig.
func Resolve(sources []Source, schema Schema, logger *zap.Logger) (*ResolvedConfig, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Highest precedence first. Sorting a copy keeps the caller's slice
	// untouched.
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Rank() < ordered[j].Rank() })

	warnUnknownKeys(ordered, schema, logger)

	values := make(map[string]any, len(schema))

	for _, field := range schema {
		switch field.Policy {
		case PolicyOverride:
			resolved, ok, err := firstDefined(ordered, field, field.Key)
			if err != nil {
				return nil, err
			}
			if ok {
				values[field.Key] = resolved
			}

		case PolicyReplaceDefault:
			resolved, ok, err := firstDefinedAbove(ordered, field, RankDefaults)
			if err != nil {
				return nil, err
			}
			if !ok {
				resolved = field.Default
			}
			if resolved != nil {
				values[field.Key] = resolved
			}

		case PolicyAppendToDefault:
			resolved, err := resolveAppend(ordered, field)
			if err != nil {
				return nil, err
			}
			values[field.Key] = resolved

		default:
			return nil, fmt.Errorf("field %q: unsupported merge policy %q", field.Key, field.Policy)
		}
	}

	return &ResolvedConfig{values: values}, nil
}

// firstDefined walks sources from highest to lowest precedence and returns
// the first coerced value defined for the key.
func firstDefined(ordered []Source, field Field, key string) (any, bool, error) {
	for _, src := range ordered {
		raw, ok := src.Get(key)
		if !ok {
			continue
		}
		v, err := coerce(field.Type, raw, key, src.Name())
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
	return nil, false, nil
}

// firstDefinedAbove is firstDefined restricted to sources with a rank below
// the given one.
func firstDefinedAbove(ordered []Source, field Field, rank int) (any, bool, error) {
	above := make([]Source, 0, len(ordered))
	for _, src := range ordered {
		if src.Rank() < rank {
			above = append(above, src)
		}
	}
	return firstDefined(above, field, field.Key)
}

// resolveAppend computes an append-to-default list: the base comes from the
// highest-precedence source defining the field itself (override semantics),
// then every source from lowest to highest precedence contributes its
// extra-variant items. Order is preserved and the first occurrence wins.
func resolveAppend(ordered []Source, field Field) ([]string, error) {
	base, ok, err := firstDefined(ordered, field, field.Key)
	if err != nil {
		return nil, err
	}
	if !ok {
		base = field.Default
	}

	merged := appendUnique(nil, toStringList(base))

	if field.ExtraKey != "" {
		for i := len(ordered) - 1; i >= 0; i-- {
			src := ordered[i]
			raw, ok := src.Get(field.ExtraKey)
			if !ok {
				continue
			}
			extra, err := coerce(TypeStringList, raw, field.ExtraKey, src.Name())
			if err != nil {
				return nil, err
			}
			merged = appendUnique(merged, toStringList(extra))
		}
	}

	return merged, nil
}

func toStringList(v any) []string {
	list, _ := v.([]string)
	return list
}

// appendUnique appends items to base, keeping the first occurrence of every
// item and the order in which items were first seen.
func appendUnique(base, items []string) []string {
	out := make([]string, 0, len(base)+len(items))
	seen := make(map[string]struct{}, len(base)+len(items))
	for _, item := range append(append([]string{}, base...), items...) {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func warnUnknownKeys(ordered []Source, schema Schema, logger *zap.Logger) {
	for _, src := range ordered {
		for _, key := range src.Keys() {
			if !schema.Known(key) {
				logger.Warn("ignoring unknown config key",
					zap.String("key", key),
					zap.String("source", src.Name()),
				)
			}
		}
	}
}

// coerce validates a raw source value against the declared field type.
// Environment values arrive as strings and are parsed; everything else must
// already have the right shape.
func coerce(t FieldType, raw any, key, source string) (any, error) {
	typeErr := func() error {
		return &TypeError{Key: key, Source: source, Want: t.String()}
	}

	switch t {
	case TypeString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return nil, typeErr()

	case TypeBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, typeErr()
			}
			return b, nil
		}
		return nil, typeErr()

	case TypeInt:
		switch v := raw.(type) {
		case int:
			return v, nil
		case int32:
			return int(v), nil
		case int64:
			return int(v), nil
		case float64:
			// TOML floats reach here; 4.7 is not an acceptable "4".
			if v != math.Trunc(v) {
				return nil, typeErr()
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, typeErr()
			}
			return n, nil
		}
		return nil, typeErr()

	case TypeStringList:
		switch v := raw.(type) {
		case []string:
			return append([]string{}, v...), nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, typeErr()
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			// Comma-separated form used by environment variables.
			var out []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			return out, nil
		}
		return nil, typeErr()

	case TypePages:
		return coercePages(raw, key, source)
	}

	return nil, typeErr()
}

// coercePages validates the career page list. Every entry needs a company
// and a url; keywords and extra-keywords are mutually exclusive per page.
func coercePages(raw any, key, source string) ([]Page, error) {
	if pages, ok := raw.([]Page); ok {
		raw = pagesToAny(pages)
	}

	entries, ok := raw.([]any)
	if !ok {
		return nil, &TypeError{Key: key, Source: source, Want: TypePages.String()}
	}

	pages := make([]Page, 0, len(entries))
	for i, entry := range entries {
		table, ok := entry.(map[string]any)
		if !ok {
			return nil, &TypeError{
				Key:    fmt.Sprintf("%s[%d]", key, i),
				Source: source,
				Want:   "page table",
			}
		}

		var page Page
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &page,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(table); err != nil {
			return nil, &TypeError{
				Key:    fmt.Sprintf("%s[%d]", key, i),
				Source: source,
				Want:   "page table",
			}
		}

		entryKey := fmt.Sprintf("%s[%d]", key, i)
		if strings.TrimSpace(page.Company) == "" {
			return nil, &TypeError{Key: entryKey + ".company", Source: source, Want: "non-empty string"}
		}
		if strings.TrimSpace(page.URL) == "" {
			return nil, &TypeError{Key: entryKey + ".url", Source: source, Want: "non-empty string"}
		}
		if len(page.Keywords) > 0 && len(page.ExtraKeywords) > 0 {
			return nil, &ConflictError{
				Key:    entryKey,
				Detail: fmt.Sprintf("page %q sets both keywords and extra-keywords; pick one", page.Company),
			}
		}

		pages = append(pages, page)
	}

	return pages, nil
}

func pagesToAny(pages []Page) []any {
	out := make([]any, 0, len(pages))
	for _, p := range pages {
		table := map[string]any{
			"company": p.Company,
			"url":     p.URL,
		}
		if p.Enabled != nil {
			table["enabled"] = *p.Enabled
		}
		if len(p.Keywords) > 0 {
			table["keywords"] = p.Keywords
		}
		if len(p.ExtraKeywords) > 0 {
			table["extra-keywords"] = p.ExtraKeywords
		}
		out = append(out, table)
	}
	return out
}
