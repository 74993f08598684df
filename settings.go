package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vgrid/internal/grid"
)

// Settings represents the application configuration.
type Settings struct {
	TelemetryEnabled bool   `json:"telemetry_enabled"`
	FirstRunComplete bool   `json:"first_run_complete"`
	SelectionMode    string `json:"selection_mode,omitempty"`
	FrozenColumns    int32  `json:"frozen_columns,omitempty"`
	ColumnWidth      int32  `json:"column_width,omitempty"`
	HyperlinkDelayMS int    `json:"hyperlink_delay_ms,omitempty"`
	// EditOnNavigate is a pointer so that an absent key keeps the default.
	EditOnNavigate *bool `json:"edit_on_navigate,omitempty"`
}

const defaultColumnWidth = 12

// getConfigDir returns the configuration directory following the XDG Base
// Directory spec.
func getConfigDir() (string, error) {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "vgrid"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "vgrid"), nil
}

func getSettingsPath() (string, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.json"), nil
}

// LoadSettings reads settings.json, returning defaults when it does not
// exist yet.
func LoadSettings() (*Settings, error) {
	settingsPath, err := getSettingsPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(settingsPath)
	if os.IsNotExist(err) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read settings file: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("could not parse settings file: %w", err)
	}
	return &settings, nil
}

// SaveSettings writes the settings to settings.json.
func SaveSettings(settings *Settings) error {
	settingsPath, err := getSettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal settings: %w", err)
	}
	if err := os.WriteFile(settingsPath, data, 0o644); err != nil {
		return fmt.Errorf("could not write settings file: %w", err)
	}
	return nil
}

func (s *Settings) columnWidth() int32 {
	if s.ColumnWidth > 0 {
		return s.ColumnWidth
	}
	return defaultColumnWidth
}

// gridOptions returns grid options measured in terminal cells.
func (s *Settings) gridOptions() (grid.Options, error) {
	opts := grid.DefaultOptions()
	opts.CellHeight = 1
	opts.HeaderHeight = 1
	opts.ColumnLineWidth = 1
	opts.RowLineWidth = 0
	opts.CellPadding = 1
	opts.DragThreshold = 1
	opts.ResizeTolerance = 0
	opts.HeaderButtonWidth = 1
	opts.AverageCharWidth = 1
	// The line-number column is always frozen.
	opts.FrozenColumns = 1 + max(s.FrozenColumns, 0)

	if s.SelectionMode != "" {
		mode, err := grid.ParseSelectionMode(s.SelectionMode)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if s.HyperlinkDelayMS > 0 {
		opts.HyperlinkDelay = time.Duration(s.HyperlinkDelayMS) * time.Millisecond
	}
	if s.EditOnNavigate != nil {
		opts.EditOnNavigate = *s.EditOnNavigate
	}
	return opts, nil
}
