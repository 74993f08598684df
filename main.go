package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vgrid/internal/dblib"
	"vgrid/internal/grid"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vgrid [database] [table]",
	Short: "vgrid is a spreadsheet-style grid editor for database tables",
	Long: `vgrid shows a database table or query in a scrollable grid with block
selection, resizable and movable columns and in-place editing.

Examples:
  vgrid app.db users
  vgrid shop orders --frozen 1 --mode row-blocks
  vgrid shop -c "select id, name from users where active"`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE:         runRoot,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot [database] [table]",
	Short: "Print the first page of a table as the grid would show it",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSnapshot,
}

var (
	host       string
	port       string
	username   string
	password   string
	command    string
	dbTypeFlag string
	modeFlag   string
	frozenFlag int32
	widthFlag  int32
	snapWidth  int32
	snapHeight int32
)

func init() {
	rootCmd.PersistentFlags().BoolP("help", "", false, "help for vgrid")
	rootCmd.PersistentFlags().StringVarP(&host, "host", "h", "", "Database host")
	rootCmd.PersistentFlags().StringVarP(&port, "port", "p", "", "Database port")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "U", "", "Database username")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "W", "", "Database password")
	rootCmd.PersistentFlags().StringVarP(&command, "command", "c", "", "SELECT statement to show instead of a table")
	rootCmd.PersistentFlags().StringVarP(&dbTypeFlag, "type", "t", "", "Database type: sqlite, postgres or mysql")
	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "Selection mode, e.g. cell-blocks or single-row")
	rootCmd.PersistentFlags().Int32Var(&frozenFlag, "frozen", -1, "Number of data columns to freeze")
	rootCmd.PersistentFlags().Int32Var(&widthFlag, "width", 0, "Default column width")

	snapshotCmd.Flags().Int32Var(&snapWidth, "cols", 0, "Snapshot width in terminal cells (default: terminal width)")
	snapshotCmd.Flags().Int32Var(&snapHeight, "rows", 0, "Snapshot height in terminal cells (default: terminal height)")
	rootCmd.AddCommand(snapshotCmd)
}

// buildConfig turns the arguments and flags into connection settings.
func buildConfig(args []string) (*Config, string, error) {
	config := &Config{
		Database: args[0],
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
	if dbTypeFlag != "" {
		t, err := dblib.ParseDatabaseType(dbTypeFlag)
		if err != nil {
			return nil, "", err
		}
		config.DBTypeOverride = &t
	}
	var table string
	if len(args) > 1 {
		table = args[1]
	}
	if table != "" && command != "" {
		return nil, "", fmt.Errorf("give either a table or --command, not both")
	}
	return config, table, nil
}

// applyFlags overrides the stored settings with command-line flags.
func applyFlags(settings *Settings) (grid.Options, error) {
	if modeFlag != "" {
		settings.SelectionMode = modeFlag
	}
	if frozenFlag >= 0 {
		settings.FrozenColumns = frozenFlag
	}
	if widthFlag > 0 {
		settings.ColumnWidth = widthFlag
	}
	return settings.gridOptions()
}

func loadSettingsOrDefault() *Settings {
	settings, err := LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return &Settings{}
	}
	return settings
}

// initTelemetry starts error reporting when the user opted in and a DSN is
// configured. The returned func flushes pending events.
func initTelemetry(settings *Settings) func() {
	dsn := os.Getenv("VGRID_SENTRY_DSN")
	if !settings.TelemetryEnabled || dsn == "" {
		return func() {}
	}
	if err := InitSentry(dsn); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return func() {}
	}
	InitBreadcrumbs(100)
	return FlushAndShutdown
}

func runRoot(cmd *cobra.Command, args []string) error {
	config, table, err := buildConfig(args)
	if err != nil {
		return err
	}
	settings := loadSettingsOrDefault()
	opts, err := applyFlags(settings)
	if err != nil {
		return err
	}
	defer initTelemetry(settings)()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	return runEditor(ctx, config, settings, opts, table, command)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	config, table, err := buildConfig(args)
	if err != nil {
		return err
	}
	if table == "" && command == "" {
		return fmt.Errorf("snapshot needs a table or --command")
	}
	settings := loadSettingsOrDefault()
	opts, err := applyFlags(settings)
	if err != nil {
		return err
	}
	opts.Logger = newLogger()

	ctx := cmd.Context()
	db, dbType, err := config.connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var rel *dblib.Relation
	if command != "" {
		rel, err = dblib.NewQueryRelation(ctx, db, dbType, command, dblib.WithLogger(opts.Logger))
	} else {
		rel, err = dblib.NewRelation(ctx, db, dbType, table, dblib.WithLogger(opts.Logger))
	}
	if err != nil {
		return err
	}
	width, height := terminalSize()
	if snapWidth <= 0 {
		snapWidth = int32(width)
	}
	if snapHeight <= 0 {
		// Leave room for the table borders and the prompt.
		snapHeight = int32(max(height-4, 2))
	}
	out, err := snapshotRelation(ctx, rel, opts, settings.columnWidth(), snapWidth, snapHeight)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
