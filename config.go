package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/user"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"vgrid/internal/dblib"
)

// Config holds the connection flags.
type Config struct {
	Database string
	Host     string
	Port     string
	Username string
	Password string
	// DBTypeOverride selects the database type instead of guessing it.
	DBTypeOverride *dblib.DatabaseType
}

var databaseIcons = map[dblib.DatabaseType]string{
	dblib.SQLite:     "🪶",
	dblib.PostgreSQL: "🐘",
	dblib.MySQL:      "🐬",
}

func (c *Config) detectDatabaseType() dblib.DatabaseType {
	if c.DBTypeOverride != nil {
		return *c.DBTypeOverride
	}
	for _, ext := range []string{".sqlite", ".sqlite3", ".db"} {
		if strings.HasSuffix(c.Database, ext) {
			return dblib.SQLite
		}
	}
	return dblib.PostgreSQL
}

func currentUsername() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func (c *Config) buildConnectionString() (string, dblib.DatabaseType, error) {
	dbType := c.detectDatabaseType()

	switch dbType {
	case dblib.SQLite:
		if _, err := os.Stat(c.Database); os.IsNotExist(err) {
			return "", dbType, fmt.Errorf("sqlite file does not exist: %s", c.Database)
		}
		return c.Database, dbType, nil

	case dblib.PostgreSQL:
		connStr := fmt.Sprintf("dbname=%s", c.Database)
		if c.Host != "" {
			connStr += fmt.Sprintf(" host=%s", c.Host)
		}
		if c.Port != "" {
			connStr += fmt.Sprintf(" port=%s", c.Port)
		}
		if c.Username != "" {
			connStr += fmt.Sprintf(" user=%s", c.Username)
		} else if name := currentUsername(); name != "" {
			connStr += fmt.Sprintf(" user=%s", name)
		}
		if c.Password != "" {
			connStr += fmt.Sprintf(" password=%s", c.Password)
		}
		return connStr + " sslmode=disable", dbType, nil

	case dblib.MySQL:
		connStr := c.Username
		if connStr == "" {
			connStr = currentUsername()
		}
		if c.Password != "" {
			connStr += ":" + c.Password
		}
		host, port := c.Host, c.Port
		if host == "" {
			host = "localhost"
		}
		if port == "" {
			port = "3306"
		}
		connStr += fmt.Sprintf("@tcp(%s:%s)/%s?parseTime=true", host, port, c.Database)
		return connStr, dbType, nil
	}
	return "", dbType, fmt.Errorf("unsupported database type %v", dbType)
}

func (c *Config) connect(ctx context.Context) (*sql.DB, dblib.DatabaseType, error) {
	connStr, dbType, err := c.buildConnectionString()
	if err != nil {
		return nil, dbType, err
	}
	db, err := sql.Open(dbType.DriverName(), connStr)
	if err != nil {
		return nil, dbType, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, dbType, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, dbType, nil
}

// listTables returns the user tables of the connected database.
func listTables(ctx context.Context, db *sql.DB, dbType dblib.DatabaseType) ([]string, error) {
	var query string
	switch dbType {
	case dblib.PostgreSQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name"
	case dblib.MySQL:
		query = "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() ORDER BY table_name"
	case dblib.SQLite:
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	default:
		return nil, fmt.Errorf("unsupported database type %v", dbType)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}
