package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Depado/ginprom"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/app/api/routes"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/broadcast"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/config"
	_ "github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/docs"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/auth"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/bot"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/scheduler"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/session"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/domains/webhook"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/middleware"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Services are the domain services exposed over HTTP.
type Services struct {
	Auth      auth.Service
	Sessions  session.Service
	Bot       bot.Service
	Schedules scheduler.Service
	Webhooks  webhook.Service
	Hub       *broadcast.Hub
}

// NewRouter builds the gin engine with middleware and every route group.
func NewRouter(cfg *config.Config, s Services, log zerolog.Logger) *gin.Engine {
	app := gin.New()
	app.Use(middleware.RequestLogger(log))
	app.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	app.Use(gin.Recovery())
	app.Use(otelgin.Middleware(cfg.App.Name))
	app.Use(middleware.ClaimIp())
	app.Use(cors.New(corsConfig(cfg.Allows)))

	p := ginprom.New(
		ginprom.Engine(app),
		ginprom.Subsystem("gin"),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/docs/*any"),
	)
	app.Use(p.Instrument())

	app.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	app.Static(cfg.Media.BaseURL, cfg.Media.Dir)

	api := app.Group("/api/v1")
	protected := middleware.CheckAuth(cfg.App.JWTSecret)

	routes.AuthRoutes(api.Group("/auth"), protected, s.Auth)

	sessions := api.Group("/sessions", protected)
	routes.SessionRoutes(sessions, s.Sessions, s.Hub, log)
	routes.BotRoutes(sessions, s.Sessions, s.Bot)
	routes.ScheduleRoutes(sessions, s.Sessions, s.Schedules)

	routes.WebhookRoutes(api.Group("/webhooks", protected), s.Webhooks)
	return app
}

func corsConfig(allows config.Allows) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Origin", "Accept"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(allows.Methods) > 0 {
		c.AllowMethods = allows.Methods
	}
	if len(allows.Headers) > 0 {
		c.AllowHeaders = allows.Headers
	}
	if len(allows.Origins) > 0 {
		c.AllowOrigins = allows.Origins
	}
	return c
}

// LaunchHttpServer serves until ctx is cancelled, then drains in-flight
// requests.
func LaunchHttpServer(ctx context.Context, cfg *config.Config, s Services, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.App.Host, cfg.App.Port),
		Handler:           NewRouter(cfg, s, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
