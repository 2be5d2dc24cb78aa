package cli

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
	"go.uber.org/zap"

	"github.com/yaro360/timetracker-saas/internal/api"
	"github.com/yaro360/timetracker-saas/internal/app/timesheet"
	"github.com/yaro360/timetracker-saas/internal/config"
	"github.com/yaro360/timetracker-saas/internal/infra/logging"
	"github.com/yaro360/timetracker-saas/internal/infra/sqlite"
	"github.com/yaro360/timetracker-saas/internal/location"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address, overrides the config file")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timetracker API server",
	Long: `Start the HTTP API server. Clients report their GPS position with each
clock-in request; the server admits or rejects the attempt against the job
site's geofence and persists the resulting time entries in SQLite.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Environment, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := os.MkdirAll(cfg.DB.Dir, 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	db, err := sqlite.Open(cfg.DB.Dir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	locCfg := location.Config{
		EnableHighAccuracy: cfg.Location.HighAccuracy,
		Timeout:            cfg.LocationTimeout(),
		MaxCachedAge:       cfg.LocationMaxCachedAge(),
	}
	// The server itself has no GPS sensor; every clock-in carries a
	// device-reported position.
	svc := timesheet.NewService(db, nil, locCfg, nil, log)

	server := api.NewServer(svc, log)
	server.SetRequestTimeout(cfg.APIRequestTimeout())
	if cfg.API.EnableMetrics {
		server.EnableMetrics()
	}

	addr := cfg.Addr()
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("api server listening", zap.String("addr", addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
