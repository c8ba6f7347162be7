package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedFS_ContainsInitialSchema(t *testing.T) {
	entries, err := FS.ReadDir(".")
	if err != nil {
		t.Fatalf("failed to read embedded FS: %v", err)
	}

	found := false
	for _, entry := range entries {
		if entry.Name() == "001_initial_schema.sql" {
			found = true
			break
		}
	}
	if !found {
		t.Error("001_initial_schema.sql not found in embedded FS")
	}
}

func TestEmbeddedFS_InitialSchemaHasGooseDirectives(t *testing.T) {
	content, err := FS.ReadFile("001_initial_schema.sql")
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	for _, want := range []string{"-- +goose Up", "-- +goose Down", "CREATE TABLE kv_entries"} {
		if !strings.Contains(string(content), want) {
			t.Errorf("migration missing %q", want)
		}
	}
}
