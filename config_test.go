package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vgrid/internal/dblib"
)

func TestDetectDatabaseType(t *testing.T) {
	mysql := dblib.MySQL
	tests := []struct {
		name   string
		config Config
		want   dblib.DatabaseType
	}{
		{"db file", Config{Database: "app.db"}, dblib.SQLite},
		{"sqlite3 file", Config{Database: "data/app.sqlite3"}, dblib.SQLite},
		{"bare name", Config{Database: "shop"}, dblib.PostgreSQL},
		{"override", Config{Database: "app.db", DBTypeOverride: &mysql}, dblib.MySQL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.detectDatabaseType(); got != tt.want {
				t.Errorf("detectDatabaseType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildConnectionString(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "app.db")
	if err := os.WriteFile(existing, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	mysql := dblib.MySQL

	tests := []struct {
		name     string
		config   Config
		contains []string
		wantErr  bool
	}{
		{
			name:     "sqlite",
			config:   Config{Database: existing},
			contains: []string{existing},
		},
		{
			name:    "missing sqlite file",
			config:  Config{Database: filepath.Join(t.TempDir(), "missing.db")},
			wantErr: true,
		},
		{
			name:     "postgres",
			config:   Config{Database: "shop", Host: "db", Port: "5433", Username: "ann", Password: "pw"},
			contains: []string{"dbname=shop", "host=db", "port=5433", "user=ann", "password=pw", "sslmode=disable"},
		},
		{
			name:     "mysql defaults",
			config:   Config{Database: "shop", Username: "ann", DBTypeOverride: &mysql},
			contains: []string{"ann@tcp(localhost:3306)/shop", "parseTime=true"},
		},
		{
			name:     "mysql with password",
			config:   Config{Database: "shop", Username: "ann", Password: "pw", Host: "db", Port: "3307", DBTypeOverride: &mysql},
			contains: []string{"ann:pw@tcp(db:3307)/shop"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := tt.config.buildConnectionString()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildConnectionString: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("%q does not contain %q", got, want)
				}
			}
		})
	}
}
