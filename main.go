package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"borderhopper/internal/api"
	"borderhopper/internal/config"
	"borderhopper/internal/db"
	"borderhopper/internal/engine"
	"borderhopper/internal/ingest"
	"borderhopper/internal/logger"
)

var version = "dev"

var (
	configPath string
	noColor    bool
	port       int
	dataDir    string
	force      bool

	rootCmd = &cobra.Command{
		Use:           "borderhopper",
		Short:         "Backend for the BorderHopper geography path game",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				logger.SetColor(false)
			}
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Ingest missing datasets, build the graphs and serve the HTTP API",
		RunE:  runServe,
	}

	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Load adjacency datasets from the data directory into the database",
		RunE:  runIngest,
	}

	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Build every graph from the database and print its statistics",
		RunE:  runStats,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", envOrDefault("BORDERHOPPER_CONFIG", ""), "YAML config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	serveCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	ingestCmd.Flags().StringVar(&dataDir, "dir", "", "dataset directory (overrides config)")
	ingestCmd.Flags().BoolVar(&force, "force", false, "re-ingest types that already have data")

	rootCmd.AddCommand(serveCmd, ingestCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("Main", err.Error())
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if port != 0 {
		cfg.Port = port
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Banner(version)
	os.MkdirAll(cfg.DataDir, 0755)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := ingest.NewLoader(database)
	svc := engine.NewService(engine.NewRegistry(database), database)
	srv := api.NewServer(cfg, svc, loader, database)

	// Ingest and build graphs in background
	go func() {
		if cfg.IngestOnStart {
			if _, err := loader.Run(ctx, cfg.DataDir, cfg.ForceIngest); err != nil {
				logger.Error("Ingest", fmt.Sprintf("Startup ingest failed: %v", err))
			}
		}
		if err := svc.Rebuild(ctx); err != nil {
			logger.Error("Graph", fmt.Sprintf("Initial build failed: %v", err))
			return
		}
		srv.SetReady()
		logger.Success("Graph", "Game ready")
	}()

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Server(cfg.Addr())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Server", "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	results, err := ingest.NewLoader(database).Run(cmd.Context(), cfg.DataDir, force)
	if err != nil {
		return err
	}
	loaded := 0
	for _, r := range results {
		if r.Skipped == "" {
			loaded++
		}
	}
	logger.Success("Ingest", fmt.Sprintf("Loaded %d of %d datasets from %s", loaded, len(results), cfg.DataDir))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	registry := engine.NewRegistry(database)
	if err := registry.Rebuild(cmd.Context()); err != nil {
		return err
	}
	for _, st := range registry.Status() {
		if st.Loaded && !st.Playable {
			logger.Warn("Stats", fmt.Sprintf("%s is not playable: %s", st.Type, st.Degenerate))
		}
	}

	runs, err := database.GetIngestRuns(cmd.Context(), 10)
	if err != nil {
		return err
	}
	logger.Section("Recent ingests")
	for _, run := range runs {
		logger.Stats(run.Timestamp, fmt.Sprintf("%s from %s: %d units, %d borders (%dms)",
			run.Type, run.Source, run.Units, run.Connections, run.DurationMs))
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
