package gateway

import (
	"context"

	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/paybridgehq/paybridge/internal/gateway/processors"
	"github.com/paybridgehq/paybridge/internal/gateway/processors/flutterwave"
	"github.com/paybridgehq/paybridge/internal/gateway/processors/paystack"
	"github.com/paybridgehq/paybridge/internal/gateway/repository"
	"github.com/paybridgehq/paybridge/internal/gateway/resolver"
	"github.com/paybridgehq/paybridge/internal/gateway/service"
	"github.com/paybridgehq/paybridge/internal/gateway/webhook"
	"github.com/paybridgehq/paybridge/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("gateway",
	fx.Provide(repository.New),
	fx.Provide(func() *processors.Registry {
		return processors.NewRegistry(
			flutterwave.NewFactory(),
			paystack.NewFactory(),
		)
	}),
	fx.Provide(newEventCallback),
	fx.Provide(resolver.New),
	fx.Provide(webhook.NewService),
	fx.Provide(service.New),
)

// newEventCallback is the webhookCallback bound into every resolved
// instance: verified events are logged with sensitive fields masked.
func newEventCallback(log *zap.Logger) domain.WebhookCallback {
	events := log.Named("gateway.events")
	return func(ctx context.Context, event map[string]any) {
		events.Info("webhook event received", zap.Any("event", observability.MaskFields(event)))
	}
}
