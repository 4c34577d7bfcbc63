package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/adapter/wa"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/broadcast"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/config"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/database"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/auth"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/bot"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/ingest"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/scheduler"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/session"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/webhook"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/logger"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/metrics"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/server"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/storage"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func StartApp() {
	boot := logger.New("info", false)
	utils.LoadEnv(boot)

	cfg, err := config.InitConfig()
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("gateway stopped with error")
	}
	log.Info().Msg("gateway stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.App.JWTSecret == "" {
		return errors.New("app.jwt_secret is required")
	}
	if !cfg.Log.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.NewCustomValidator(v)
	}

	db, err := database.InitDB(cfg.Database, logger.Component(log, "database"))
	if err != nil {
		return err
	}

	media, err := storage.NewLocal(cfg.Media.Dir, cfg.Media.BaseURL)
	if err != nil {
		return fmt.Errorf("preparing media storage: %w", err)
	}
	m := metrics.New(prometheus.DefaultRegisterer)

	g, gctx := errgroup.WithContext(ctx)

	hub := broadcast.NewHub(logger.Component(log, "hub"))
	defer hub.Close()
	var observers broadcast.Publisher = hub
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Pass})
		defer client.Close()
		relay := broadcast.NewRedisRelay(client, cfg.Redis.Channel, log)
		observers = relay
		g.Go(func() error {
			if err := relay.Forward(gctx, hub); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("redis relay stopped")
			}
			return nil
		})
	}

	dispatcher := webhook.NewDispatcher(webhook.NewRepo(db), cfg.Webhook, observers, m, log)
	dispatcher.Start(gctx)
	defer dispatcher.Stop()

	botRepo := bot.NewRepo(db)
	engine := bot.NewEngine(botRepo, m, log)
	ingestRepo := ingest.NewRepo(db)
	pipeline := ingest.NewPipeline(ingestRepo, media, dispatcher, engine, m, log)

	factory, err := wa.NewFactory(ctx, cfg.Store.Dialect, cfg.Store.DSN, logger.Component(log, "whatsmeow"), cfg.App.PrintQR)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	defer factory.Close()

	sessionRepo := session.NewRepo(db)
	registry := session.NewRegistry(session.Deps{
		Repo:       sessionRepo,
		BotConfigs: botRepo,
		Factory:    factory,
		Pipeline:   pipeline,
		Notifier:   dispatcher,
		Metrics:    m,
		Log:        log,
	})
	if err := registry.LoadAll(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		registry.Shutdown(shutdownCtx)
	}()

	scheduleRepo := scheduler.NewRepo(db)
	runner := scheduler.NewRunner(scheduleRepo, func(id string) (scheduler.Sender, bool) {
		inst, ok := registry.Get(id)
		if !ok {
			return nil, false
		}
		return inst, true
	}, media, cfg.Scheduler.Interval, m, log)
	g.Go(func() error {
		runner.Run(gctx)
		return nil
	})

	sessions := session.NewService(registry, sessionRepo, ingestRepo, media)
	services := server.Services{
		Auth:      auth.NewService(auth.NewRepo(db), cfg.App.JWTSecret),
		Sessions:  sessions,
		Bot:       bot.NewService(botRepo),
		Schedules: scheduler.NewService(scheduleRepo, sessions),
		Webhooks:  webhook.NewService(webhook.NewRepo(db)),
		Hub:       hub,
	}
	g.Go(func() error {
		return server.LaunchHttpServer(gctx, cfg, services, logger.Component(log, "http"))
	})

	return g.Wait()
}
