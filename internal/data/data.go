package data

import (
	"context"
	"database/sql"
	"time"

	"offer-redirect/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewOfferRepo, NewClickRepo, NewShortLinkRepo)

// Data holds the shared connection pool and the optional redis client.
// Repositories hold a *Data and coordinate only through the store.
type Data struct {
	db  *sql.DB
	rdb *redis.Client
}

// NewData opens the postgres pool, runs the schema migration and connects to
// redis when configured. Redis is best-effort: a failed ping logs a warning
// and the service runs without a cache.
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if c.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.Database.MaxIdleConns)
	}
	if lifetime, err := time.ParseDuration(c.Database.ConnMaxLifetime); err == nil && lifetime > 0 {
		db.SetConnMaxLifetime(lifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	var rdb *redis.Client
	if c.Redis != nil && c.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			helper.Warnf("redis unavailable, running without cache: %v", err)
			_ = rdb.Close()
			rdb = nil
		}
	}

	d := &Data{db: db, rdb: rdb}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.rdb != nil {
			if err := d.rdb.Close(); err != nil {
				helper.Errorf("closing redis: %v", err)
			}
		}
		if err := d.db.Close(); err != nil {
			helper.Errorf("closing database: %v", err)
		}
	}

	return d, cleanup, nil
}
