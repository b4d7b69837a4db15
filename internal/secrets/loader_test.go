package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  sk-123\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(Source{Name: "api key", File: path, Value: "inline-ignored"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "sk-123" {
		t.Errorf("Load = %q, want trimmed file content", got)
	}
}

func TestLoadFromValue(t *testing.T) {
	got, err := Load(Source{Name: "api key", Value: " sk-456 "})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "sk-456" {
		t.Errorf("Load = %q", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TEST_SECRET", "sk-789")

	got, err := Load(Source{Name: "api key", Env: "TEST_SECRET"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "sk-789" {
		t.Errorf("Load = %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Error("Load succeeded with nothing configured")
	}

	if _, err := Load(Source{Name: "api key", File: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("Load succeeded with a missing file")
	}

	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Source{Name: "api key", File: empty}); err == nil {
		t.Error("Load succeeded with an empty file")
	}
}
