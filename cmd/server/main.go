package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/api"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/auth"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/config"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/engine"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/metrics"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/notify"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/payments"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/reminders"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/sheets"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/slots"
	"github.com/polasandeepreddy/Sixers-Cafe/internal/store"
)

func main() {
	// load .env if present
	_ = godotenv.Load()

	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("SIXERS_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Admin.Password == "" || cfg.Admin.JWTSecret == "" {
		logger.Fatal().Msg("set admin.password and admin.jwt_secret in config")
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	var cache *store.SlotCache
	if cfg.Redis.Address != "" && cfg.Redis.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = store.NewSlotCache(rdb, cfg.CacheTTL())
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("create telegram notifier error")
	}

	metrics.Register()

	eng := engine.New(engine.Config{
		Store:    st,
		Cache:    cache,
		Notifier: notifier,
		Hours: slots.HourRange{
			Open:  cfg.Booking.OpenHour,
			Close: cfg.Booking.CloseHour,
			Price: cfg.Booking.SlotPrice,
		},
		SessionTimeout: cfg.SessionTTL(),
		Logger:         &logger,
	})
	eng.Start()
	defer eng.Close()

	go eng.Sessions().StartCleanup(ctx.Done(), 5*time.Minute)

	if cfg.Sheets.Enabled {
		sheetsSvc, err := sheets.NewSheetsService(ctx,
			cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create sheets service error")
		}
		unsubscribe := st.Subscribe(func(bookings []models.Booking) {
			go func() {
				if err := sheetsSvc.Sync(ctx, bookings); err != nil {
					logger.Error().Err(err).Msg("sheets sync failed")
				}
			}()
		})
		defer unsubscribe()
	}

	if cfg.Reminders.Enabled {
		scheduler, err := reminders.NewScheduler(reminders.SchedulerConfig{
			Timezone:      cfg.Reminders.Timezone,
			DailyHour:     cfg.Reminders.DailyHour,
			DailyMinute:   cfg.Reminders.DailyMinute,
			CheckInterval: time.Minute,
		}, eng.Bookings, notifier, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create reminder scheduler error")
		}
		go scheduler.Start(ctx)
	}

	go store.NewBackupService(cfg.Database.Path, cfg.Backup, &logger).Start(ctx)

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, st, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.New(api.Config{
		Engine:         eng,
		Auth:           auth.NewService(cfg.Admin.Password, cfg.Admin.JWTSecret, cfg.TokenTTL()),
		Payments:       payments.NewGenerator(cfg.Payments.UPIAddress, cfg.Payments.PayeeName),
		Logger:         &logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()

	logger.Info().Str("addr", cfg.Server.Addr).Msg("booking server started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func startHealthServer(ctx context.Context, port int, st *store.SQLiteStore, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := st.PingContext(ctxPing); err != nil {
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
