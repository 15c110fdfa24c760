package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"covid-dashboard/config"
	"covid-dashboard/render"
	"covid-dashboard/server"
	"covid-dashboard/services"
	"covid-dashboard/storage"
	"covid-dashboard/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred cleanup completes before exit.
func run(args []string) int {
	fs := flag.NewFlagSet("covid-dashboard", flag.ContinueOnError)
	summary := fs.Bool("summary", false, "print the cached dashboard to the terminal and exit")
	region := fs.String("region", "", "region filter for -summary, -export and -snapshot")
	snapshot := fs.String("snapshot", "", "write a PNG screenshot of the dashboard to this path and exit")
	export := fs.String("export", "", "write the cached (filtered) records as CSV to this path and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetLevel(utils.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== COVID-19 Dashboard starting ===")
	logger.Info("Config: cache=%s | listen=%s | render workers=%d",
		cfg.CacheBackend, cfg.ListenAddr, cfg.RenderConcurrency)

	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	kv, err := storage.Open(ctx, storage.Options{
		Backend:     cfg.CacheBackend,
		Dir:         cfg.CacheDir,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.DSN(),
	}, retry)
	if err != nil {
		logger.Warn("Cache backend %q unavailable (%v), falling back to memory", cfg.CacheBackend, err)
		kv = storage.NewMemoryKV()
	}
	defer kv.Close()

	store := storage.NewRecordStore(kv, logger)
	charts := render.NewChartRenderer(logger, cfg.ChartWidth, cfg.ChartHeight)
	dash := services.NewDashboard(store, services.NewCSVParser(logger), charts, logger, cfg.RenderConcurrency)
	dash.Start(ctx)

	if *region != "" {
		if err := dash.Dispatch(ctx, services.RegionSelected{Region: *region}); err != nil {
			logger.Error("Cannot select region %q: %v", *region, err)
			return 1
		}
	}

	srv := server.New(dash, charts, logger, cfg.MaxUploadBytes())

	switch {
	case *summary:
		services.PrintSummary(os.Stdout, dash.View())
	case *export != "":
		if err := exportCSV(dash, *export); err != nil {
			logger.Error("Export failed: %v", err)
			return 1
		}
		logger.Info("Exported %d records to %s", len(dash.Filtered()), *export)
	case *snapshot != "":
		if err := captureSnapshot(ctx, cfg, srv, logger, *snapshot); err != nil {
			logger.Error("Snapshot failed: %v", err)
			return 1
		}
	default:
		if err := serve(ctx, cfg.ListenAddr, srv, logger); err != nil {
			logger.Error("Server stopped: %v", err)
			return 1
		}
	}
	return 0
}

func serve(ctx context.Context, addr string, srv *server.Server, logger *utils.Logger) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening on %s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func exportCSV(dash *services.Dashboard, path string) error {
	w, err := storage.CreateCSVFile(path)
	if err != nil {
		return err
	}
	if err := dash.Export(w); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// captureSnapshot serves the dashboard on a loopback port just long enough for
// headless Chrome to screenshot it.
func captureSnapshot(ctx context.Context, cfg *config.Config, srv *server.Server, logger *utils.Logger, path string) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpSrv := &http.Server{Handler: srv.SetupRoutes(), ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = httpSrv.Serve(ln) }()
	defer httpSrv.Close()

	shooter := render.NewSnapshotter(cfg.ChromeBin, cfg.SnapshotTimeout(), cfg.MaxRetries, logger)
	png, err := shooter.Capture(ctx, "http://"+ln.Addr().String()+"/", "#confirmedCases")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("Dashboard snapshot saved to %s", path)
	return nil
}
