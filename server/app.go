package server

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/pkg/banlist"
	"clutch-review/pkg/rabbitmq"
	"clutch-review/pkg/storage"
	"clutch-review/repository"
	"clutch-review/service"
	"context"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"os"
)

// App holds the services every entry point shares.
type App struct {
	Repo       repository.Repository
	Videos     service.VideoService
	Reviews    service.ReviewService
	Moderation service.ModerationService
	Accounts   service.AccountService
	Deletion   service.DeletionService
	Uploads    service.Service
	Bans       service.BanList

	conn      *amqp.Connection
	publisher *rabbitmq.Publisher
}

// NewApp connects to postgres, redis, minio and rabbitmq. A broker that cannot be reached
// leaves notifications disabled instead of failing startup.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	repo, err := repository.NewRepo(cfg.DB)
	if err != nil {
		return nil, err
	}

	app := &App{Repo: repo}
	deps := service.Deps{
		Repo:    repo,
		Objects: storage.NewMinioStore(cfg.Storage, cfg.MinIOBucket),
	}
	if cfg.Redis != nil {
		deps.Bans = banlist.NewRedisBanList(cfg.Redis)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	} else {
		app.conn = conn
		app.publisher = rabbitmq.NewPublisher(conn, cfg.Queue)
		deps.Notifier = app.publisher
	}

	app.wire(deps, cfg)
	return app, nil
}

func (a *App) wire(deps service.Deps, cfg *config.Config) {
	a.Reviews = service.NewReviewService(deps, cfg.Review)
	a.Videos = service.NewVideoService(deps)
	a.Moderation = service.NewModerationService(deps, cfg.Moderation)
	a.Accounts = service.NewAccountService(deps)
	a.Deletion = service.NewDeletionService(deps, cfg.Deletion)
	a.Uploads = service.NewService(deps.Repo, a.Videos)
	a.Bans = deps.Bans
	if a.Bans == nil {
		a.Bans = service.NopBanList{}
	}
}

func (a *App) Close(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close publisher")
		}
	}
	if a.conn != nil && !a.conn.IsClosed() {
		if err := a.conn.Close(); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to close rabbitmq connection")
		}
		zerolog.Ctx(ctx).Info().Msg("rabbitmq connection closed")
	}
}

func SetupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
