package webhook

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/paybridgehq/paybridge/internal/config"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/paybridgehq/paybridge/internal/gateway/resolver"
	"github.com/paybridgehq/paybridge/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dedupeTTL = 24 * time.Hour

type Params struct {
	fx.In

	Log      *zap.Logger
	Resolver *resolver.Service
	Redis    *redis.Client `optional:"true"`
	Metrics  *metrics.Metrics
	Cfg      config.Config
}

// Service runs webhook signature verification after the HTTP
// acknowledgment has been sent. Verification never influences the ack:
// every failure path here ends in a log line and a counter.
type Service struct {
	log      *zap.Logger
	resolver *resolver.Service
	redis    *redis.Client
	metrics  *metrics.Metrics
	timeout  time.Duration
	opts     domain.WebhookOptions
}

func NewService(p Params) *Service {
	return &Service{
		log:      p.Log.Named("gateway.webhook"),
		resolver: p.Resolver,
		redis:    p.Redis,
		metrics:  p.Metrics,
		timeout:  p.Cfg.Gateway.WebhookTimeout,
		opts: domain.WebhookOptions{
			FullAuth: p.Cfg.Gateway.WebhookFullAuth,
			Full:     p.Cfg.Gateway.WebhookFull,
		},
	}
}

// Schedule spawns the verification task and returns immediately. The
// caller has already committed the acknowledgment response; rawBody is
// copied so the request buffer can be reused.
func (s *Service) Schedule(signature string, rawBody []byte) {
	if strings.TrimSpace(signature) == "" {
		s.metrics.WebhookEvents.WithLabelValues("unsigned").Inc()
		s.log.Debug("webhook without signature dropped")
		return
	}
	body := append([]byte(nil), rawBody...)
	go s.verify(signature, body)
}

func (s *Service) verify(signature string, body []byte) {
	defer func() {
		// A panic in a detached task would take the process down.
		if r := recover(); r != nil {
			s.metrics.WebhookEvents.WithLabelValues("panic").Inc()
			s.log.Error("webhook verification panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if s.duplicate(ctx, body) {
		s.metrics.WebhookEvents.WithLabelValues("duplicate").Inc()
		s.log.Debug("duplicate webhook delivery dropped")
		return
	}

	instance, err := s.resolver.ResolveBySignature(ctx, signature)
	if err != nil {
		s.metrics.WebhookEvents.WithLabelValues("unresolved").Inc()
		s.log.Warn("webhook signature matched no configuration", zap.Error(err))
		return
	}

	err = instance.Processor.WebhookVerify(ctx, signature, body, s.opts, instance.WebhookCallback)
	if err != nil {
		s.metrics.WebhookEvents.WithLabelValues("rejected").Inc()
		s.log.Warn("webhook verification rejected",
			zap.String("identifier", instance.Identifier),
			zap.String("kind", instance.Kind),
			zap.Error(err))
		return
	}

	s.metrics.WebhookEvents.WithLabelValues("verified").Inc()
	s.log.Info("webhook verified",
		zap.String("identifier", instance.Identifier),
		zap.String("kind", instance.Kind))
}

// duplicate marks the event body in redis and reports whether it was
// already seen. Redis being unavailable must never block verification.
func (s *Service) duplicate(ctx context.Context, body []byte) bool {
	if s.redis == nil {
		return false
	}
	digest := sha256.Sum256(body)
	key := "paybridge:webhook:seen:" + hex.EncodeToString(digest[:])

	fresh, err := s.redis.SetNX(ctx, key, 1, dedupeTTL).Result()
	if err != nil {
		s.log.Warn("webhook dedupe unavailable", zap.Error(err))
		return false
	}
	return !fresh
}
