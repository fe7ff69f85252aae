package clients

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/cfg"
	"github.com/DRSN-tech/shop-backend/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// RedisClient обёртка над go-redis, используется кэшем каталога.
type RedisClient struct {
	Client *r.Client
	addr   string
}

func NewRedisClient(cfg *cfg.RedisCfg) *RedisClient {
	client := r.NewClient(&r.Options{
		Addr:         cfg.Addr,
		Username:     cfg.User,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	return &RedisClient{Client: client, addr: cfg.Addr}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return e.Wrap("redis ping "+c.addr, err)
	}

	return nil
}

func (c *RedisClient) Close() error {
	if err := c.Client.Close(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	return nil
}
