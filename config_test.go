package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	settings, err := loadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	if settings.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", settings.Provider)
	}
	if settings.Search.NumResults != 8 {
		t.Errorf("Search.NumResults = %d, want 8", settings.Search.NumResults)
	}
	if settings.Research.NumResults != 5 {
		t.Errorf("Research.NumResults = %d, want 5", settings.Research.NumResults)
	}
	if settings.Agents.Checker.Model == "" {
		t.Error("Agents.Checker.Model is empty")
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `provider: anthropic
results_file: out/records.json
search:
  num_results: 3
agents:
  checker:
    model: claude-sonnet-4-20250514
    max_tokens: 2048
    temperature: 0.1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := loadSettings(path)
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}

	if settings.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", settings.Provider)
	}
	if settings.ResultsFile != "out/records.json" {
		t.Errorf("ResultsFile = %q", settings.ResultsFile)
	}
	if settings.Search.NumResults != 3 {
		t.Errorf("Search.NumResults = %d, want 3", settings.Search.NumResults)
	}
	if settings.Agents.Checker.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Checker.Model = %q", settings.Agents.Checker.Model)
	}
	// Unset sections still pick up defaults.
	if settings.Research.MaxEvidenceChars != 1500 {
		t.Errorf("Research.MaxEvidenceChars = %d, want 1500", settings.Research.MaxEvidenceChars)
	}
}

func TestLoadSettingsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadSettings(path); err == nil {
		t.Error("loadSettings() should fail on invalid YAML")
	}
}
