package server

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/handler"
	"clutch-review/pkg/rabbitmq"
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

func RunHttp(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(SetupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewApp")
		return err
	}
	defer app.Close(ctx)

	serviceDeps := handler.ServiceDependencies{
		UploadService: app.Uploads,
	}

	if app.conn != nil {
		uploadConsumer := rabbitmq.NewConsumer(
			app.conn,
			cfg.Queue,
			rabbitmq.UploadTopology,
			cfg.Server.Workers,
			handler.UploadHandler,
			rabbitmq.WithPermanentErrors[handler.ServiceDependencies](handler.IsNonRetryable),
		)
		go func() {
			err := uploadConsumer.Consume(ctx, serviceDeps)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("Upload consumer error")
			}
		}()
	}

	if err := handler.RegisterValidators(); err != nil {
		return err
	}
	r := NewRouter(ctx, handler.NewHTTPHandler(app.Videos, app.Reviews, app.Bans))

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
	return nil
}

func NewRouter(ctx context.Context, h *handler.HTTPHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(ctx))
	addHealth(r)
	h.Register(r)
	return r
}

// requestLogger puts the process logger on every request context and logs the outcome.
func requestLogger(ctx context.Context) gin.HandlerFunc {
	logger := zerolog.Ctx(ctx)
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}
