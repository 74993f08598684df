package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vgrid/internal/grid"
)

func TestLoadSettingsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.TelemetryEnabled || settings.SelectionMode != "" || settings.EditOnNavigate != nil {
		t.Errorf("defaults = %+v", settings)
	}
	if settings.columnWidth() != defaultColumnWidth {
		t.Errorf("columnWidth = %d", settings.columnWidth())
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	off := false
	if err := SaveSettings(&Settings{SelectionMode: "row-blocks", FrozenColumns: 2, EditOnNavigate: &off}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "vgrid", "settings.json")); err != nil {
		t.Fatalf("settings file: %v", err)
	}

	settings, err := LoadSettings()
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.SelectionMode != "row-blocks" || settings.FrozenColumns != 2 {
		t.Errorf("loaded %+v", settings)
	}
	if settings.EditOnNavigate == nil || *settings.EditOnNavigate {
		t.Errorf("EditOnNavigate = %v", settings.EditOnNavigate)
	}
}

func TestLoadSettingsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "vgrid"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vgrid", "settings.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(); err == nil {
		t.Error("LoadSettings accepted broken JSON")
	}
}

func TestGridOptions(t *testing.T) {
	off := false
	tests := []struct {
		name     string
		settings Settings
		check    func(t *testing.T, opts grid.Options)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, opts grid.Options) {
				if opts.FrozenColumns != 1 {
					t.Errorf("FrozenColumns = %d, want the line-number column only", opts.FrozenColumns)
				}
				if opts.CellHeight != 1 || opts.HeaderHeight != 1 || opts.ColumnLineWidth != 1 {
					t.Errorf("terminal metrics = %+v", opts)
				}
				if opts.Mode != grid.CellBlocks || !opts.EditOnNavigate {
					t.Errorf("Mode = %v, EditOnNavigate = %v", opts.Mode, opts.EditOnNavigate)
				}
			},
		},
		{
			name:     "frozen data columns",
			settings: Settings{FrozenColumns: 2},
			check: func(t *testing.T, opts grid.Options) {
				if opts.FrozenColumns != 3 {
					t.Errorf("FrozenColumns = %d, want 3", opts.FrozenColumns)
				}
			},
		},
		{
			name:     "negative frozen",
			settings: Settings{FrozenColumns: -4},
			check: func(t *testing.T, opts grid.Options) {
				if opts.FrozenColumns != 1 {
					t.Errorf("FrozenColumns = %d, want 1", opts.FrozenColumns)
				}
			},
		},
		{
			name:     "mode and delay",
			settings: Settings{SelectionMode: "Single-Row", HyperlinkDelayMS: 250, EditOnNavigate: &off},
			check: func(t *testing.T, opts grid.Options) {
				if opts.Mode != grid.SingleRow {
					t.Errorf("Mode = %v", opts.Mode)
				}
				if opts.HyperlinkDelay != 250*time.Millisecond {
					t.Errorf("HyperlinkDelay = %v", opts.HyperlinkDelay)
				}
				if opts.EditOnNavigate {
					t.Error("EditOnNavigate not turned off")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := tt.settings.gridOptions()
			if err != nil {
				t.Fatalf("gridOptions: %v", err)
			}
			tt.check(t, opts)
		})
	}

	bad := Settings{SelectionMode: "diagonal"}
	if _, err := bad.gridOptions(); !errors.Is(err, grid.ErrInvalidArgument) {
		t.Errorf("unknown mode error = %v", err)
	}
}
