package resolver

import (
	"context"
	"strings"

	"github.com/paybridgehq/paybridge/internal/config"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/paybridgehq/paybridge/internal/gateway/processors"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Repo     domain.Repository
	Registry *processors.Registry
	Cfg      config.Config
	Callback domain.WebhookCallback `optional:"true"`
}

// Service resolves identifiers to request-scoped ProcessorInstances.
// Every call looks the configuration up and constructs a fresh processor
// client; nothing is cached, so instances never outlive one operation.
type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	registry *processors.Registry
	encKey   []byte
	fallback string
	callback domain.WebhookCallback
}

func New(p Params) *Service {
	return &Service{
		log:      p.Log.Named("gateway.resolver"),
		repo:     p.Repo,
		registry: p.Registry,
		encKey:   DeriveKey(p.Cfg.Gateway.ConfigSecret),
		fallback: p.Cfg.Gateway.CallbackBaseURL,
		callback: p.Callback,
	}
}

func (s *Service) Resolve(ctx context.Context, identifier string) (*domain.ProcessorInstance, error) {
	record, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return s.build(record)
}

// ResolveBySignature resolves the configuration a webhook signature
// header belongs to. Processors that send a static verification token
// (Flutterwave's verif-hash) are matched on the stored webhook key.
func (s *Service) ResolveBySignature(ctx context.Context, signature string) (*domain.ProcessorInstance, error) {
	record, err := s.repo.FindByWebhookKey(ctx, signature)
	if err != nil {
		return nil, err
	}
	return s.build(record)
}

func (s *Service) build(record *domain.ProcessorConfig) (*domain.ProcessorInstance, error) {
	settings, err := decryptConfig(s.encKey, record.Config)
	if err != nil {
		s.log.Error("processor config unreadable",
			zap.String("identifier", record.Identifier),
			zap.Error(err))
		return nil, err
	}

	processor, err := s.registry.NewProcessor(record.Kind, domain.ProcessorSettings{
		Identifier: record.Identifier,
		Kind:       record.Kind,
		Config:     settings,
	})
	if err != nil {
		s.log.Error("processor construction failed",
			zap.String("identifier", record.Identifier),
			zap.String("kind", record.Kind),
			zap.Error(err))
		return nil, err
	}

	base := s.fallback
	if v, ok := settings["callback_base_url"].(string); ok && strings.TrimSpace(v) != "" {
		base = v
	}

	return &domain.ProcessorInstance{
		Identifier:      record.Identifier,
		Kind:            record.Kind,
		Processor:       processor,
		WebhookCallback: s.callback,
		RedirectBuilder: domain.NewRedirectBuilder(base),
	}, nil
}
