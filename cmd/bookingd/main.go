// Command bookingd runs the booking engine's background lifecycle: it
// applies migrations, then periodically sweeps reserved bookings whose
// check-in grace elapsed into no-shows and closes out checked-in bookings
// that ran past their end.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/booking-engine/internal/application"
	"github.com/example/booking-engine/internal/config"
	"github.com/example/booking-engine/internal/logging"
	"github.com/example/booking-engine/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A local .env is optional; the real environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	spaceCatalog := newSpaceCatalogAdapter(sqlite.NewSpaceRepository(pool))
	ruleSource := newRuleSourceAdapter(sqlite.NewBookingRuleRepository(pool))
	bookingStore := newBookingStoreAdapter(sqlite.NewBookingRepository(pool))
	eventStore := newCheckInEventStoreAdapter(sqlite.NewCheckInEventRepository(pool))

	admission := application.NewAdmissionServiceWithLogger(spaceCatalog, ruleSource, bookingStore, idGenerator, now, logger)
	admission.ConfigureRuleCache(cfg.RuleCacheSize, cfg.RuleCacheTTL)
	retry := application.DefaultRetryPolicy()
	retry.MaxRetries = cfg.AdmissionRetries
	admission.SetRetryPolicy(retry)

	checkIn := application.NewCheckInServiceWithLogger(bookingStore, eventStore, cfg.CheckInGrace, idGenerator, now, logger)

	// The surrounding API layer embeds both services; the daemon itself
	// only drives the lifecycle sweep.
	eng := engine{admission: admission, checkIn: checkIn}

	logger.Info("booking lifecycle sweep running",
		"interval", cfg.SweepInterval.String(),
		"grace", cfg.CheckInGrace.String(),
	)

	runSweep(ctx, logger, eng.checkIn, cfg.SweepInterval)
	logger.Info("booking lifecycle sweep stopped")
}

// engine bundles the wired services a host process consumes.
type engine struct {
	admission *application.AdmissionService
	checkIn   *application.CheckInService
}

func runSweep(ctx context.Context, logger *slog.Logger, checkIn *application.CheckInService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, logger, checkIn)
		}
	}
}

func sweepOnce(ctx context.Context, logger *slog.Logger, checkIn *application.CheckInService) {
	sweepCtx := logging.WithLogger(ctx, logger)

	noShows, err := checkIn.SweepNoShows(sweepCtx)
	if err != nil {
		logger.Error("no-show sweep failed", "error", err)
	} else if noShows > 0 {
		logger.Info("marked no-shows", "count", noShows)
	}

	completed, err := checkIn.CompleteElapsed(sweepCtx)
	if err != nil {
		logger.Error("completion sweep failed", "error", err)
	} else if completed > 0 {
		logger.Info("completed elapsed bookings", "count", completed)
	}
}
