package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"goblog-api/internal/app"
	"goblog-api/internal/cache"
	"goblog-api/internal/config"
	"goblog-api/internal/pkg/jwtutil"
	"goblog-api/internal/pkg/password"
	mysqlClient "goblog-api/internal/platform/mysql"
	rabbitmqClient "goblog-api/internal/platform/rabbitmq"
	redisClient "goblog-api/internal/platform/redis"
	sqliteClient "goblog-api/internal/platform/sqlite"
	"goblog-api/internal/repository"
	"goblog-api/internal/repository/memory"
	"goblog-api/internal/worker"
)

// App owns every long-lived resource and the services built on them.
type App struct {
	Config *config.Config
	Log    zerolog.Logger

	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.BlogEventWorker

	Users  repository.UserRepository
	Blogs  repository.BlogRepository
	Events repository.BlogEventRepository

	Tokens      *jwtutil.Manager
	AuthService *app.AuthService
	Guard       *app.Guard
	BlogService *app.BlogService
	UserService *app.UserService

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Log:       log,
		StartedAt: time.Now(),
	}

	if err := a.openStorage(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}

	blogOpts := []app.BlogServiceOption{app.WithBlogLogger(log.With().Str("component", "blog_service").Logger())}

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Redis = redisCli
		ttl := time.Duration(cfg.Redis.PostTTLSeconds) * time.Second
		blogOpts = append(blogOpts, app.WithPostCache(cache.NewPostCache(redisCli, ttl)))
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.BlogEventQueue)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn = mqConn

		a.EventWorker = worker.NewBlogEventWorker(mqConn, a.Events, cfg.RabbitMQ.BlogEventQueue, log)
		if err := a.EventWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start blog event worker failed: %w", err)
		}
		blogOpts = append(blogOpts, app.WithEventPublisher(rabbitmqClient.NewBlogEventPublisher(mqConn, cfg.RabbitMQ.BlogEventQueue)))
	}

	a.Tokens = jwtutil.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.JWTExpireMinute)*time.Minute)
	a.AuthService = app.NewAuthService(a.Users, password.NewHasher(cfg.Auth.BcryptCost), a.Tokens)
	a.Guard = app.NewGuard(a.Tokens, a.Users)
	a.BlogService = app.NewBlogService(a.Blogs, a.Users, a.Events, blogOpts...)
	a.UserService = app.NewUserService(a.Users)

	log.Info().
		Str("driver", cfg.Database.Driver).
		Bool("redis", a.Redis != nil).
		Bool("rabbitmq", a.MQConn != nil).
		Msg("application bootstrapped")
	return a, nil
}

func (a *App) openStorage(ctx context.Context) error {
	switch a.Config.Database.Driver {
	case config.DriverMemory:
		users := memory.NewUserRepository()
		a.Users = users
		a.Blogs = memory.NewBlogRepository(users)
		a.Events = memory.NewBlogEventRepository()
		return nil
	case config.DriverMySQL:
		db, err := mysqlClient.New(ctx, a.Config.MySQLDSN(), a.Log)
		if err != nil {
			return err
		}
		a.DB = db
	case config.DriverSQLite:
		db, err := sqliteClient.New(ctx, a.Config.Database.SQLitePath, a.Log)
		if err != nil {
			return err
		}
		a.DB = db
	default:
		return fmt.Errorf("unsupported database driver %q", a.Config.Database.Driver)
	}

	if err := a.DB.AutoMigrate(repository.Models()...); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	a.Users = repository.NewUserRepository(a.DB)
	a.Blogs = repository.NewBlogRepository(a.DB)
	a.Events = repository.NewBlogEventRepository(a.DB)
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
