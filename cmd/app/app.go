package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/happy2help/h2h-api/internal/api"
	"github.com/happy2help/h2h-api/internal/config"
	"github.com/happy2help/h2h-api/internal/db"
	"github.com/happy2help/h2h-api/internal/lock"
	"github.com/happy2help/h2h-api/internal/logger"
	"github.com/happy2help/h2h-api/internal/service"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	loader := config.NewLoader(configPath)
	conf, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	locker, err := newLocker(conf.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize job lock -> %w", err)
	}

	policy, err := conf.Policy()
	if err != nil {
		return fmt.Errorf("failed to read domain policy -> %w", err)
	}
	policies := service.NewPolicies(policy)

	loader.Watch(func(reloaded *config.AppConfig) {
		p, err := reloaded.Policy()
		if err != nil {
			zap.L().Error("ignoring invalid domain policy", zap.Error(err))
			return
		}
		policies.Store(p)
		zap.L().Info("domain policy updated",
			zap.Bool("allow_negative_balance", p.Credit.AllowNegativeBalance),
			zap.Bool("allow_reapply_after_decline", p.Transitions.AllowReapplyAfterDecline),
		)
	})

	s := api.NewServer(conf, postgresDB, locker, policies)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

// newLocker uses Redis when configured so that several API instances share
// job locks, and an in-process mutex otherwise.
func newLocker(conf *config.RedisConfig) (lock.Locker, error) {
	if !conf.Enabled() {
		zap.L().Info("redis not configured, using in-process job locks")
		return lock.NewKeyedMutex(), nil
	}

	ttl, err := time.ParseDuration(conf.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis.lock_ttl %q -> %w", conf.LockTTL, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := lock.NewRedisClient(ctx, conf.Addr, conf.Password, conf.DB)
	if err != nil {
		return nil, fmt.Errorf("lock.NewRedisClient -> %w", err)
	}

	zap.L().Info("using redis job locks", zap.String("addr", conf.Addr), zap.Duration("ttl", ttl))
	return lock.NewRedisLocker(client, ttl), nil
}
