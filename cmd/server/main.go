package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"weekly-route-service/internal/adapters/geocode"
	"weekly-route-service/internal/adapters/lock"
	"weekly-route-service/internal/adapters/notify"
	"weekly-route-service/internal/adapters/repositories"
	"weekly-route-service/internal/api"
	"weekly-route-service/internal/config"
	"weekly-route-service/internal/domain"
	"weekly-route-service/internal/logger"
	"weekly-route-service/internal/metrics"
	"weekly-route-service/internal/platform/db"
	"weekly-route-service/internal/ports"
	"weekly-route-service/internal/scheduler"
	"weekly-route-service/internal/services"
)

// main is the application composition root. It wires concrete adapters
// (Postgres, Redis, geocoding providers, SMTP) behind ports, arms the
// recurring trigger, and starts the HTTP server.
func main() {
	log := logger.New("server")

	if err := godotenv.Load(); err != nil {
		log.Infof("no .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", ""))
	if err != nil {
		log.Errorf("load config: %v", err)
		os.Exit(1)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Errorf("open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := repositories.InitSchema(database); err != nil {
		log.Errorf("init schema: %v", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	reg := prometheus.NewRegistry()
	mets, err := metrics.New(reg)
	if err != nil {
		log.Errorf("register metrics: %v", err)
		os.Exit(1)
	}

	orderRepo := repositories.NewPostgresOrderRepository(database)
	snapshotRepo := repositories.NewPostgresSnapshotRepository(database)
	scheduleRepo := repositories.NewPostgresScheduleRepository(database)

	batch := &services.BatchService{
		Orders:    orderRepo,
		Snapshots: snapshotRepo,
		Geocoder:  buildGeocoder(cfg, log),
		Notifier: notify.NewSMTPNotifier(
			cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password,
			cfg.Mail.OpsEmail, logger.New("notify"),
		),
		Lock:      lock.NewRedisRunLock(redisClient, "", 0),
		Optimizer: services.NewOptimizer(cfg.Optimizer.Generations, cfg.Optimizer.PopulationSize, nil),
		Depot: domain.Depot{
			Coords:  domain.Coordinates{Lat: cfg.Depot.Lat, Lon: cfg.Depot.Lon},
			Address: cfg.Depot.Address,
		},
		Log:     logger.New("batch"),
		Metrics: mets,
	}

	trigger := scheduler.New(func(ctx context.Context) {
		if _, err := batch.Run(ctx); err != nil {
			log.Errorf("scheduled batch run: %v", err)
		}
	}, logger.New("scheduler"))
	defer trigger.Disarm()

	if err := armFromStore(scheduleRepo, trigger, log); err != nil {
		log.Errorf("arm schedule: %v", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.Deps{
		Snapshots:  snapshotRepo,
		Schedules:  scheduleRepo,
		Runner:     batch,
		Trigger:    trigger,
		DefaultExp: config.DefaultCronExpression,
		Gatherer:   reg,
		Log:        logger.New("api"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("server listening addr=%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("listen: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

// buildGeocoder assembles the provider chain: OpenCage first when a key is
// configured, public Nominatim as the fallback.
func buildGeocoder(cfg *config.Config, log logger.Logger) ports.Geocoder {
	providers := make([]geocode.Provider, 0, 2)

	if cfg.Geocoder.OpenCageKey != "" {
		oc, err := geocode.NewOpenCage(cfg.Geocoder.OpenCageKey, cfg.Geocoder.MinConfidence)
		if err != nil {
			log.Warnf("opencage disabled: %v", err)
		} else {
			providers = append(providers, oc)
		}
	} else {
		log.Warnf("no OpenCage key configured, relying on Nominatim only")
	}

	providers = append(providers, geocode.NewNominatim())
	return geocode.NewChain(logger.New("geocode"), providers...)
}

// armFromStore arms the trigger with the persisted expression, falling back
// to the built-in weekly default when none was ever saved.
func armFromStore(repo ports.ScheduleRepository, trigger *scheduler.Scheduler, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	expr := config.DefaultCronExpression
	cfg, err := repo.Latest(ctx)
	switch {
	case err == nil:
		expr = cfg.Expression
	case errors.Is(err, ports.ErrNoSchedule):
		log.Infof("no stored schedule, using default %q", expr)
	default:
		return err
	}

	return trigger.Arm(expr)
}
