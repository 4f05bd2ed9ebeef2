// Package bootstrap opens the backing services named in the configuration.
// It is shared by the API server and devexctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/devextech/devex-api/internal/config"
	"github.com/devextech/devex-api/internal/database"
	"github.com/devextech/devex-api/internal/database/memory"
	"github.com/devextech/devex-api/internal/database/mongodb"
	"github.com/devextech/devex-api/internal/database/postgres"
	"github.com/devextech/devex-api/internal/logging"
)

// OpenStore connects the store selected by STORE_DRIVER. Postgres
// migrations are applied when migrate is true.
func OpenStore(ctx context.Context, cfg *config.Config, logger *logging.Logger, migrate bool) (database.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		store, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to mongodb", "database", cfg.Mongo.Database)
		return store, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Database.ConnectionString())
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := postgres.Migrate(ctx, db.DB); err != nil {
				db.Close()
				return nil, err
			}
		}
		logger.Info("connected to postgres", "host", cfg.Database.Host, "database", cfg.Database.DBName)
		return postgres.NewStore(db), nil

	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// OpenRedis returns nil when Redis is disabled.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
