package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/psicoapp/agenda-service/internal/agenda"
	"github.com/psicoapp/agenda-service/internal/api"
	"github.com/psicoapp/agenda-service/internal/booking"
	"github.com/psicoapp/agenda-service/internal/clock"
	"github.com/psicoapp/agenda-service/internal/config"
	"github.com/psicoapp/agenda-service/internal/db"
	"github.com/psicoapp/agenda-service/internal/directory"
	"github.com/psicoapp/agenda-service/internal/lock"
	"github.com/psicoapp/agenda-service/internal/store"
)

const version = "1.0.0"

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	log.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.System()

	var (
		st     store.Store
		pgPool *pgxpool.Pool
	)
	switch cfg.StoreDriver {
	case "memory":
		st = store.NewMemoryStore(clk)
	case "postgres":
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection error")
		}
		defer pgPool.Close()

		pg := store.NewPgStore(pgPool, clk)
		migCtx, cancelMig := context.WithTimeout(rootCtx, 10*time.Second)
		err = pg.Migrate(migCtx)
		cancelMig()
		if err != nil {
			log.Fatal().Err(err).Msg("store migration error")
		}
		st = pg
		log.Info().Msg("connected to Postgres")
	default:
		st, err = store.NewFileStore(cfg.DataDir, clk)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("file store error")
		}
	}

	var (
		locker lock.Locker
		rdb    *redis.Client
	)
	if cfg.UseRedisLock() {
		rdb, err = lock.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection error")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing redis")
			}
		}()
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL)
		log.Info().Msg("connected to Redis, using distributed slot locks")
	} else {
		locker = lock.NewLocalLocker()
		log.Info().Msg("using in-process slot locks")
	}

	dirRepo := directory.NewRepository(st)
	bookRepo := booking.NewRepository(st)

	bookingSvc := booking.NewService(bookRepo, dirRepo, locker, clk, cfg.CancelNotice, cfg.DefaultTimezone, log)
	agendaSvc := agenda.NewService(dirRepo, bookingSvc, clk, cfg.DefaultTimezone, log)
	dirSvc := directory.NewService(dirRepo, bookingSvc, cfg.DefaultTimezone, log)

	seedCtx, cancelSeed := context.WithTimeout(rootCtx, 10*time.Second)
	err = dirSvc.EnsureDefaultSpecialties(seedCtx)
	cancelSeed()
	if err != nil {
		log.Fatal().Err(err).Msg("default specialties error")
	}

	router := api.NewRouter(api.RouterConfig{
		Directory: dirSvc,
		Agenda:    agendaSvc,
		Bookings:  bookingSvc,
		Health:    api.NewHealthHandler(st, pgPool, rdb, cfg.Env, version),
		Log:       log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
}
