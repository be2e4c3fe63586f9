package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ngmaloney/weather-terminal/internal/api"
	"github.com/ngmaloney/weather-terminal/internal/autocomplete"
	"github.com/ngmaloney/weather-terminal/internal/config"
	"github.com/ngmaloney/weather-terminal/internal/connectivity"
	"github.com/ngmaloney/weather-terminal/internal/database"
	"github.com/ngmaloney/weather-terminal/internal/location"
	"github.com/ngmaloney/weather-terminal/internal/scheduler"
	"github.com/ngmaloney/weather-terminal/internal/ui"
	"github.com/ngmaloney/weather-terminal/internal/weather"
)

type flagValues struct {
	location string
	units    string
	baseURL  string
	dbPath   string
	logFile  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Printf("Error running application: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:           "weather-terminal",
		Short:         "Current conditions and forecast in your terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, flags, cfg); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.location, "location", "l", "", `Location to show, "City" or "City, CC"`)
	cmd.Flags().StringVarP(&flags.units, "units", "u", "", "Unit system: metric, imperial or standard")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Weather service base URL")
	cmd.Flags().StringVar(&flags.dbPath, "db", "", "Path to the region defaults database")
	cmd.Flags().StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	return cmd
}

// applyFlags overrides cfg with the flags the user set and revalidates it
func applyFlags(cmd *cobra.Command, flags flagValues, cfg *config.Config) error {
	if cmd.Flags().Changed("location") {
		cfg.Location = flags.location
	}
	if cmd.Flags().Changed("units") {
		cfg.Units = flags.units
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = flags.baseURL
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = flags.dbPath
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	return cfg.Validate()
}

func run(cfg *config.Config) error {
	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	table, closeDB := openRegionTable(cfg.DBPath, logger)
	defer closeDB()

	parser := location.NewParser(table, cfg.DefaultRegion)
	start, err := parser.Parse(cfg.Location)
	if err != nil {
		return fmt.Errorf("invalid location %q: %w", cfg.Location, err)
	}

	session, err := weather.NewSession(start, cfg.UnitSystem())
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.BaseURL, cfg.RequestTimeout)
	sched := scheduler.New(cfg.RefreshInterval, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting refresh scheduler: %w", err)
	}
	defer sched.Stop()

	model := ui.NewModel(ui.Deps{
		Orchestrator: weather.NewOrchestrator(client, session,
			weather.WithFetchTimeout(cfg.RequestTimeout),
			weather.WithLogger(logger)),
		Monitor: connectivity.NewMonitor(client,
			connectivity.WithTimeout(cfg.HealthTimeout),
			connectivity.WithSlowThreshold(cfg.SlowThreshold),
			connectivity.WithLogger(logger)),
		Scheduler: sched,
		Parser:    parser,
		Search:    client,
		Autocomplete: []autocomplete.Option{
			autocomplete.WithDebounce(cfg.Debounce),
			autocomplete.WithMinLength(cfg.MinQueryLength),
			autocomplete.WithLogger(logger),
		},
	})

	logger.Info("starting", "location", start.String(), "units", cfg.Units, "base_url", cfg.BaseURL)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// newLogger writes to path when set; otherwise logs are discarded because
// the terminal belongs to the UI
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

// openRegionTable uses the sqlite table when the database can be opened and
// the built-in table otherwise
func openRegionTable(path string, logger *slog.Logger) (location.RegionTable, func()) {
	fallback := location.StaticTable(location.BuiltinRegions)

	db, err := database.Open(path)
	if err != nil {
		logger.Warn("region database unavailable, using built-in table", "path", path, "error", err)
		return fallback, func() {}
	}
	closeDB := func() { closeQuietly(db) }

	if err := location.ProvisionRegionDefaults(db); err != nil {
		logger.Warn("provisioning region defaults failed, using built-in table", "error", err)
		return fallback, closeDB
	}
	return location.NewSQLTable(db), closeDB
}

func closeQuietly(db *sql.DB) {
	_ = db.Close()
}
