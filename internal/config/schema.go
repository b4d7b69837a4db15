package config

// FieldType is the declared value type of a configuration field.
type FieldType int

const (
	TypeString FieldType = iota
	TypeBool
	TypeInt
	TypeStringList
	// TypePages is the career page list under search.in. It is a structured
	// type of its own so page entries can be validated at resolution time.
	TypePages
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "integer"
	case TypeStringList:
		return "list of strings"
	case TypePages:
		return "list of page tables"
	default:
		return "unknown"
	}
}

// MergePolicy governs how a field combines values from multiple sources.
type MergePolicy string

const (
	// PolicyOverride takes the value from the highest-precedence source that
	// defines the field; lower sources are ignored entirely.
	PolicyOverride MergePolicy = "override"
	// PolicyAppendToDefault starts from the base value and appends items
	// contributed through the field's extra-variant key, source order
	// preserved, first occurrence kept.
	PolicyAppendToDefault MergePolicy = "append-to-default"
	// PolicyReplaceDefault behaves like override but falls back to the
	// schema-declared default when no source above defaults defines it.
	PolicyReplaceDefault MergePolicy = "replace-default"
)

// Field is one named setting. The merge policy is fixed here, at schema
// definition time, and cannot be changed by any settings source.
type Field struct {
	Key     string
	Type    FieldType
	Policy  MergePolicy
	Default any
	// ExtraKey names the append-variant key consulted by append-to-default
	// fields (e.g. search.extra-keywords for search.keywords).
	ExtraKey string
}

// Schema is the full set of known configuration fields.
type Schema []Field

// Lookup returns the field declared for the key.
func (s Schema) Lookup(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Known reports whether the key is a declared field or the extra-variant
// key of one.
func (s Schema) Known(key string) bool {
	for _, f := range s {
		if f.Key == key || (f.ExtraKey != "" && f.ExtraKey == key) {
			return true
		}
	}
	return false
}

// DefaultModel is used for every AI call unless overridden per command.
const DefaultModel = "gemini-2.5-flash"

// DefaultSchema declares every setting the job CLI understands.
func DefaultSchema() Schema {
	return Schema{
		{Key: "model", Type: TypeString, Policy: PolicyOverride},
		{Key: "verbose", Type: TypeBool, Policy: PolicyOverride, Default: false},
		{Key: "db-path", Type: TypeString, Policy: PolicyOverride},

		{Key: "search.keywords", Type: TypeStringList, Policy: PolicyAppendToDefault, Default: []string{}, ExtraKey: "search.extra-keywords"},
		{Key: "search.parallel", Type: TypeInt, Policy: PolicyReplaceDefault, Default: 4},
		{Key: "search.no-js", Type: TypeBool, Policy: PolicyOverride, Default: false},
		{Key: "search.in", Type: TypePages, Policy: PolicyOverride},

		{Key: "add.browser", Type: TypeBool, Policy: PolicyOverride, Default: false},
		{Key: "add.model", Type: TypeString, Policy: PolicyOverride},

		{Key: "fit.cv", Type: TypeString, Policy: PolicyOverride},
		{Key: "fit.model", Type: TypeString, Policy: PolicyOverride},
		{Key: "fit.extra", Type: TypeStringList, Policy: PolicyOverride},

		{Key: "app.model", Type: TypeString, Policy: PolicyOverride},
		{Key: "app.cv", Type: TypeString, Policy: PolicyOverride},
		{Key: "app.letter", Type: TypeString, Policy: PolicyOverride},
		{Key: "app.extra", Type: TypeStringList, Policy: PolicyOverride},

		{Key: "gh.repo", Type: TypeString, Policy: PolicyOverride},
		{Key: "gh.auto-assign", Type: TypeBool, Policy: PolicyOverride, Default: false},
		{Key: "gh.default-labels", Type: TypeStringList, Policy: PolicyOverride},

		{Key: "ai.gemini.api-key-file", Type: TypeString, Policy: PolicyOverride},
		{Key: "ai.gemini.model", Type: TypeString, Policy: PolicyReplaceDefault, Default: DefaultModel},
		{Key: "ai.gemini.max-retries", Type: TypeInt, Policy: PolicyReplaceDefault, Default: 2},
		{Key: "ai.gemini.max-log-length", Type: TypeInt, Policy: PolicyReplaceDefault, Default: 512},
	}
}
