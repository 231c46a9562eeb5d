package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"staffbook/internal/availability"
	"staffbook/internal/config"
	"staffbook/internal/db"
	"staffbook/internal/events"
	"staffbook/internal/export"
	"staffbook/internal/metrics"
	"staffbook/internal/model"
)

func main() {
	var (
		slotsQuery = flag.String("slots", "", "print bookable starts: workerID:locationID:YYYY-MM-DD:durationMin")
		exportPath = flag.String("export", "", "write appointment report xlsx to path")
		exportFrom = flag.String("from", "", "report range start YYYY-MM-DD")
		exportTo   = flag.String("to", "", "report range end YYYY-MM-DD")
		workerList = flag.String("workers", "", "comma-separated worker IDs for the report")
	)
	flag.Parse()

	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	// .env is optional; config placeholders expand from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("STAFFBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	database, err := db.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	bus := events.NewBus()
	bus.Subscribe(events.TypeAssignmentConflict, func(e events.Event) {
		logger.Warn().
			Int64("worker_id", e.WorkerID).
			Int64("location_id", e.LocationID).
			Str("date", e.Date.Format(model.DateLayout)).
			Msg("assignment proposal has conflicts pending confirmation")
	})
	bus.Subscribe(events.TypeLeaveCreated, func(e events.Event) {
		logger.Info().
			Int64("worker_id", e.WorkerID).
			Str("status", e.Detail).
			Msg("leave request created")
	})

	service := availability.NewService(database, rdb, bus, &logger, availability.Options{
		StepMinutes:      cfg.StepMinutes(),
		LeaveAutoApprove: cfg.LeaveAutoApprove(),
		CacheTTL:         cfg.CacheTTL(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *slotsQuery != "" {
		if err := runSlotsQuery(ctx, service, *slotsQuery); err != nil {
			logger.Fatal().Err(err).Msg("slots query failed")
		}
		return
	}
	if *exportPath != "" {
		if err := runExport(ctx, database, *exportPath, *exportFrom, *exportTo, *workerList); err != nil {
			logger.Fatal().Err(err).Msg("export failed")
		}
		logger.Info().Str("path", *exportPath).Msg("report written")
		return
	}

	backup := db.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backup.Start(ctx)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Msg("staffbook service started")
	<-ctx.Done()
	logger.Info().Msg("shutting down")
}

// runSlotsQuery answers one availability question from the command line,
// e.g. -slots 1:3:2025-03-10:30.
func runSlotsQuery(ctx context.Context, service *availability.Service, query string) error {
	var workerID, locationID int64
	var dateStr string
	var duration int
	if _, err := fmt.Sscanf(query, "%d:%d:%10s:%d", &workerID, &locationID, &dateStr, &duration); err != nil {
		return fmt.Errorf("expected workerID:locationID:YYYY-MM-DD:durationMin: %w", err)
	}
	date, err := time.ParseInLocation(model.DateLayout, dateStr, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}

	starts, err := service.BookableStarts(ctx, workerID, locationID, date, duration)
	if err != nil {
		return err
	}
	if len(starts) == 0 {
		fmt.Println("no availability")
		return nil
	}
	fmt.Println(strings.Join(starts, " "))
	return nil
}

func runExport(ctx context.Context, database *db.DB, path, fromStr, toStr, workerList string) error {
	from, err := time.ParseInLocation(model.DateLayout, fromStr, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -from date: %w", err)
	}
	to, err := time.ParseInLocation(model.DateLayout, toStr, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -to date: %w", err)
	}

	var workerIDs []int64
	for _, part := range strings.Split(workerList, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err != nil {
			return fmt.Errorf("invalid worker id %q: %w", part, err)
		}
		workerIDs = append(workerIDs, id)
	}
	if len(workerIDs) == 0 {
		return fmt.Errorf("-workers is required for export")
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	reporter := export.NewReporter(database, func() export.SheetWriter { return export.NewExcelWriter() })
	return reporter.WriteAppointmentReport(ctx, out, workerIDs, from, to)
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
