package redis

import (
	"context"
	"strings"

	"github.com/paybridgehq/paybridge/internal/config"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("redis", fx.Provide(New))

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

// New returns a redis client, or nil when no address is configured.
// Consumers treat a nil client as "dedupe disabled".
func New(p Params) *goredis.Client {
	addr := strings.TrimSpace(p.Cfg.RedisAddr)
	if addr == "" {
		p.Log.Info("redis not configured, webhook dedupe disabled")
		return nil
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})
	p.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}
