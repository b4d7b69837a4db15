package logger

import "testing"

func TestNew(t *testing.T) {
	for _, tc := range []struct{ json, debug bool }{
		{false, false},
		{true, false},
		{false, true},
		{true, true},
	} {
		log, err := New(tc.json, tc.debug)
		if err != nil {
			t.Fatalf("New(%v, %v): %v", tc.json, tc.debug, err)
		}
		if log == nil {
			t.Fatalf("New(%v, %v) returned nil logger", tc.json, tc.debug)
		}
	}
}

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exactly at limit", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"trims before measuring", "  hi  ", 10, "hi"},
		{"zero limit", "hello", 0, ""},
		{"multibyte runes", "héllо wörld", 4, "héll..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TruncateForLog(tc.in, tc.limit); got != tc.want {
				t.Errorf("TruncateForLog(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}
