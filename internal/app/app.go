package app

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/app/ops"
	"github.com/neverluckskr/TSObukhivBot/internal/config"
	tginfra "github.com/neverluckskr/TSObukhivBot/internal/infra/telegram"
	pgrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/postgres"
	redisrepo "github.com/neverluckskr/TSObukhivBot/internal/repo/redis"
	banssvc "github.com/neverluckskr/TSObukhivBot/internal/services/bans"
	joinsvc "github.com/neverluckskr/TSObukhivBot/internal/services/joinrequests"
	notifysvc "github.com/neverluckskr/TSObukhivBot/internal/services/notify"
	paysvc "github.com/neverluckskr/TSObukhivBot/internal/services/payments"
	postsvc "github.com/neverluckskr/TSObukhivBot/internal/services/posts"
	rolesvc "github.com/neverluckskr/TSObukhivBot/internal/services/roles"
	sessionsvc "github.com/neverluckskr/TSObukhivBot/internal/services/sessions"
	statsvc "github.com/neverluckskr/TSObukhivBot/internal/services/stats"
)

// botClient is what the handlers need from the Telegram transport.
type botClient interface {
	Start(ctx context.Context) error
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) error
	SetCommands(commands []tgbotapi.BotCommand) error
}

type App struct {
	cfg    config.Config
	logger *zap.Logger

	postgres *pgxpool.Pool
	redis    *goredis.Client
	client   botClient
	gateway  *tginfra.Gateway

	users *pgrepo.UserRepo

	roles    *rolesvc.Service
	posts    *postsvc.Service
	payments *paysvc.Service
	notifier *notifysvc.Service
	joins    *joinsvc.Service
	sessions *sessionsvc.Service
	stats    *statsvc.Service
	bans     *banssvc.Service

	ops *ops.Server
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pgrepo.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	userRepo := pgrepo.NewUserRepo(pool)
	postRepo := pgrepo.NewPostRepo(pool)
	paymentRepo := pgrepo.NewPaymentRepo(pool)
	joinRepo := pgrepo.NewJoinRequestRepo(pool)
	moderatorRepo := pgrepo.NewModeratorRepo(pool)
	intentRepo := redisrepo.NewIntentRepo(redisClient, cfg.Session.TTL)

	a := &App{
		cfg:      cfg,
		logger:   logger,
		postgres: pool,
		redis:    redisClient,
		users:    userRepo,
	}

	client, err := tginfra.NewClient(cfg.Bot.Token, cfg.Bot.PollTimeoutSeconds, cfg.Bot.SendTimeout, logger, a.routeUpdate)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init telegram client: %w", err)
	}
	a.client = client
	a.gateway = tginfra.NewGateway(client, cfg.Channel.ChatID)

	a.roles = rolesvc.NewService(cfg.Roles.Moderators, cfg.Roles.Owners, moderatorRepo, userRepo)
	a.posts = postsvc.NewService(postRepo, a.gateway, logger)
	a.payments = paysvc.NewService(paymentRepo, cfg.Payments.ProviderToken, cfg.Payments.CardCurrency, logger)
	a.notifier = notifysvc.NewService(cfg.Roles.Owners, logger)
	a.joins = joinsvc.NewService(joinRepo, a.gateway, logger)
	a.sessions = sessionsvc.NewService(intentRepo)
	a.stats = statsvc.NewService(postRepo)
	a.bans = banssvc.NewService(userRepo, postRepo)
	a.ops = ops.NewServer(cfg.Ops.Addr, a.stats, logger)

	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("bot started",
		zap.String("env", a.cfg.Env),
		zap.Int64("channel_id", a.cfg.Channel.ChatID))

	if err := a.registerCommands(); err != nil {
		a.logger.Warn("register bot commands failed", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- a.ops.Run(ctx)
	}()
	go func() {
		errCh <- a.client.Start(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("bot stopped")
			return nil
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			return err
		}
	}
}

func (a *App) Close() {
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *App) registerCommands() error {
	return a.client.SetCommands([]tgbotapi.BotCommand{
		{Command: "start", Description: "Запустить бота"},
		{Command: "send", Description: "Отправить бесплатный пост"},
		{Command: "send35", Description: "Пост про подики/жидкости (35 грн)"},
		{Command: "send50", Description: "Пост не по тематике (50 грн)"},
		{Command: "stats", Description: "Статистика постов (модераторы)"},
		{Command: "help", Description: "Помощь"},
		{Command: "cancel", Description: "Отменить действие"},
	})
}
