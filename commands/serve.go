package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fanhub/cache"
	"fanhub/config"
	"fanhub/controllers"
	"fanhub/notify"
	"fanhub/router"
	"fanhub/tools"
	"fanhub/workers"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the scheduler and the notification dispatcher",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, database, err := bootstrap()
		if err != nil {
			return err
		}
		defer database.Close()

		if err := tools.InitSentry(cfg.Sentry.DSN, cfg.Env); err != nil {
			log.Warn("sentry disabled", "error", err)
		}
		defer tools.FlushSentry()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store := openCache(ctx, cfg, log)
		publisher := openPublisher(cfg, log)
		defer publisher.Close()

		var insights controllers.InsightGenerator
		if cfg.AI.OpenAIKey != "" {
			insights = tools.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.BaseURL)
		} else {
			log.Info("ai insights disabled (no openai key)")
		}

		if cfg.Env != "dev" {
			gin.SetMode(gin.ReleaseMode)
		}
		engine := gin.New()
		router.Initialize(engine, cfg, router.Dependencies{
			DB:       database,
			Cache:    store,
			Insights: insights,
			Logger:   log,
		})

		jobs := &workers.Jobs{DB: database, Publisher: publisher, Logger: log}
		scheduler := workers.NewScheduler(jobs, log)
		if err := scheduler.Schedule(cfg.Jobs.ExpireSubscriptionsSchedule, workers.JobExpireSubscriptions); err != nil {
			return err
		}
		scheduler.Start()

		dispatcher := &workers.Dispatcher{
			DB:        database,
			Publisher: publisher,
			Logger:    log,
			Interval:  time.Duration(cfg.Jobs.DispatchIntervalSeconds) * time.Second,
		}
		dispatcher.Start(ctx)

		srv := &http.Server{
			Addr:              ":" + cfg.ApiPort,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("fanhub listening", "port", cfg.ApiPort, "env", cfg.Env)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		<-scheduler.Stop().Done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
			return err
		}
		return nil
	},
}

// openCache prefers Redis and falls back to the in-memory store.
func openCache(ctx context.Context, cfg config.Configuration, log *slog.Logger) cache.Store {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryStore()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	store, err := cache.NewRedisStore(pingCtx, cache.RedisConfig{
		Address:  cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", "addr", cfg.Redis.Addr, "error", err)
		return cache.NewMemoryStore()
	}
	log.Info("connected to redis", "addr", cfg.Redis.Addr)
	return store
}

func openPublisher(cfg config.Configuration, log *slog.Logger) notify.Publisher {
	if cfg.Amqp.URL == "" {
		return notify.LogPublisher{Logger: log}
	}
	publisher, err := notify.NewAMQPPublisher(cfg.Amqp.URL, cfg.Amqp.Exchange)
	if err != nil {
		log.Warn("amqp unavailable, notifications are only logged", "error", err)
		return notify.LogPublisher{Logger: log}
	}
	log.Info("connected to amqp", "exchange", cfg.Amqp.Exchange)
	return publisher
}
