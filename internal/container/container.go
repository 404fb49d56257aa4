package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-auth-service/config"
	"github.com/oksasatya/user-auth-service/internal/application"
	repouser "github.com/oksasatya/user-auth-service/internal/domain/repository"
	"github.com/oksasatya/user-auth-service/internal/infrastructure/cache"
	"github.com/oksasatya/user-auth-service/internal/infrastructure/memory"
	"github.com/oksasatya/user-auth-service/internal/infrastructure/migrations"
	pginfra "github.com/oksasatya/user-auth-service/internal/infrastructure/postgres"
	"github.com/oksasatya/user-auth-service/internal/infrastructure/sqlite"
	"github.com/oksasatya/user-auth-service/pkg/helpers"
	"github.com/oksasatya/user-auth-service/pkg/mailer"
)

const (
	redisPingTimeout = 3 * time.Second
	notifyTimeout    = 5 * time.Second
)

// Container holds the components built once at startup and shared by the
// router modules. Nothing here is a package-level singleton.
type Container struct {
	Config   *config.Config
	Logger   *logrus.Logger
	Repo     repouser.UserRepository
	JWT      *helpers.JWTManager
	Hasher   *helpers.PasswordHasher
	Notifier mailer.Notifier
	Cache    application.ProfileCache

	authSvc    *application.AuthService
	profileSvc *application.ProfileService
	closers    []func() error
}

// Build wires the configured store, optional cache and optional reset queue.
// A store that cannot be reached is an error; the cache and queue degrade
// to disabled with a warning.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	jwtm, err := helpers.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	c.JWT = jwtm

	params := helpers.DefaultArgon2Params
	params.Memory = cfg.Argon2Memory
	params.Time = cfg.Argon2Time
	params.Parallelism = cfg.Argon2Parallelism
	hasher, err := helpers.NewPasswordHasher(cfg.PasswordHasher, params)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}
	if cfg.BcryptCost > 0 {
		hasher.WithBcryptCost(cfg.BcryptCost)
	}
	c.Hasher = hasher

	if err := c.openStore(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.openCache(ctx)
	c.openNotifier()

	c.authSvc = application.NewAuthService(c.Repo, c.JWT, c.Hasher, c.Notifier, logger, cfg.AccessTTL, cfg.ResetTokenTTL)
	c.profileSvc = application.NewProfileService(c.Repo, c.Cache, logger)
	return c, nil
}

func (c *Container) openStore(ctx context.Context) error {
	log := c.Logger.WithField("driver", c.Config.StoreDriver)

	switch c.Config.StoreDriver {
	case config.StorePostgres:
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         c.Config.PostgresDSN(),
			MaxConns:    c.Config.DBMaxConns,
			MinConns:    c.Config.DBMinConns,
			MaxConnLife: c.Config.DBMaxConnLife,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		c.closers = append(c.closers, func() error { pool.Close(); return nil })
		if err := migrations.RunPostgres(c.Config.PostgresDSN(), c.Logger); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		c.Repo = pginfra.NewUserRepository(pool)

	case config.StoreSQLite:
		repo, err := sqlite.Open(c.Config.SQLitePath, c.Logger)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		c.closers = append(c.closers, repo.Close)
		c.Repo = repo

	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		c.Repo = memory.NewUserRepository()

	default:
		return fmt.Errorf("unknown store driver %q", c.Config.StoreDriver)
	}

	log.Info("user store ready")
	return nil
}

func (c *Container) openCache(ctx context.Context) {
	if c.Config.RedisAddr == "" {
		return
	}
	rdb := cache.NewClient(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		c.Logger.WithError(err).WithField("addr", c.Config.RedisAddr).Warn("redis unreachable, profile cache disabled")
		_ = rdb.Close()
		return
	}
	c.closers = append(c.closers, rdb.Close)
	c.useCache(rdb)
}

func (c *Container) useCache(rdb redis.Cmdable) {
	c.Cache = cache.NewProfileCache(rdb, c.Config.ProfileCacheTTL)
	c.Logger.Info("profile cache enabled")
}

func (c *Container) openNotifier() {
	notifiers := mailer.MultiNotifier{mailer.LogNotifier{Logger: c.Logger}}

	if c.Config.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQResetQueue)
		if err != nil {
			c.Logger.WithError(err).Warn("rabbitmq unreachable, reset jobs will only be logged")
		} else {
			c.closers = append(c.closers, pub.Close)
			notifiers = append(notifiers, mailer.QueueNotifier{Publisher: pub, Timeout: notifyTimeout})
			c.Logger.WithField("queue", c.Config.RabbitMQResetQueue).Info("reset jobs published to rabbitmq")
		}
	}
	c.Notifier = notifiers
}

func (c *Container) AuthService() *application.AuthService { return c.authSvc }

func (c *Container) ProfileService() *application.ProfileService { return c.profileSvc }

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.WithError(err).Warn("close failed")
		}
	}
	c.closers = nil
}
