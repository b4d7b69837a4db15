package config

import "fmt"

// TypeError reports a raw value whose shape does not match the schema.
// It is fatal to the run: the offending key and its source are named so the
// user can fix the setting instead of the tool guessing.
type TypeError struct {
	Key    string
	Source string
	Want   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("config key %q from %s: expected %s", e.Key, e.Source, e.Want)
}

// ConflictError reports mutually exclusive settings, such as a career page
// declaring both keywords and extra-keywords.
type ConflictError struct {
	Key    string
	Detail string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("config key %q: %s", e.Key, e.Detail)
}
