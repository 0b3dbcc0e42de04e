package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".reactor"

//go:embed config/settings.yaml
var defaultSettings string

// AgentSettings holds per-agent model parameters.
type AgentSettings struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	Provider    string `yaml:"provider"`
	ResultsFile string `yaml:"results_file"`
	Search      struct {
		NumResults int `yaml:"num_results"`
	} `yaml:"search"`
	Research struct {
		NumResults       int `yaml:"num_results"`
		MaxEvidenceChars int `yaml:"max_evidence_chars"`
	} `yaml:"research"`
	Agents struct {
		Checker    AgentSettings `yaml:"checker"`
		Analyzer   AgentSettings `yaml:"analyzer"`
		Researcher AgentSettings `yaml:"researcher"`
	} `yaml:"agents"`
}

// getConfigPath returns the path to a config file in the .reactor directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// loadSettings loads settings from the given path, falling back to the
// embedded defaults when the file is missing.
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		data = []byte(defaultSettings)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}

	applySettingsDefaults(&settings)
	return &settings, nil
}

func applySettingsDefaults(s *Settings) {
	if s.Provider == "" {
		s.Provider = "gemini"
	}
	if s.ResultsFile == "" {
		s.ResultsFile = filepath.Join("data", "results.json")
	}
	if s.Search.NumResults <= 0 {
		s.Search.NumResults = defaultNumResults
	}
	if s.Research.NumResults <= 0 {
		s.Research.NumResults = 5
	}
	if s.Research.MaxEvidenceChars <= 0 {
		s.Research.MaxEvidenceChars = 1500
	}
}

// ensureConfigExists creates the config directory and writes the default
// settings file on first run so users have something to edit.
func ensureConfigExists() error {
	if err := os.MkdirAll(defaultConfigDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	settingsPath := getConfigPath("settings.yaml")
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := os.WriteFile(settingsPath, []byte(defaultSettings), 0644); err != nil {
			return fmt.Errorf("writing settings.yaml: %w", err)
		}
	}
	return nil
}
