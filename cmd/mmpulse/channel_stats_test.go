package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"mmpulse/internal/analyze"
)

func TestLoadCategoriesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yml")
	content := `- name: Done
  emojis: [white_check_mark]
- name: Blocked
  emojis: [octagonal_sign, sos]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := loadCategoriesFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []analyze.Category{
		{Name: "Done", Emojis: []string{"white_check_mark"}},
		{Name: "Blocked", Emojis: []string{"octagonal_sign", "sos"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestLoadCategoriesFile_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yml")
	if err := os.WriteFile(empty, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	unnamed := filepath.Join(dir, "unnamed.yml")
	if err := os.WriteFile(unnamed, []byte("- emojis: [eyes]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	invalid := filepath.Join(dir, "invalid.yml")
	if err := os.WriteFile(invalid, []byte("{not yaml: ["), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{
		filepath.Join(dir, "missing.yml"),
		empty,
		unnamed,
		invalid,
	} {
		if _, err := loadCategoriesFile(path); err == nil {
			t.Errorf("expected error for %s, got nil", filepath.Base(path))
		}
	}
}

func TestCategoriesFromConfig(t *testing.T) {
	got := categoriesFromConfig(map[string][]string{
		"In Progress": {"construction", "hourglass"},
		"Unknown":     {"ghost"},
	})

	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(got))
	}
	if got[0].Name != analyze.CategoryDone || got[1].Name != analyze.CategoryInProgress || got[2].Name != analyze.CategoryControl {
		t.Errorf("expected default category order, got %+v", got)
	}
	if !reflect.DeepEqual(got[1].Emojis, []string{"construction", "hourglass"}) {
		t.Errorf("expected In Progress override, got %v", got[1].Emojis)
	}
	// Untouched categories keep their defaults.
	if !reflect.DeepEqual(got[2].Emojis, []string{"loading", "eyes"}) {
		t.Errorf("expected Control defaults, got %v", got[2].Emojis)
	}
}

func TestCategoriesFromConfig_NoOverrides(t *testing.T) {
	got := categoriesFromConfig(nil)
	if !reflect.DeepEqual(got, analyze.DefaultCategories()) {
		t.Errorf("expected unchanged defaults, got %+v", got)
	}
}
