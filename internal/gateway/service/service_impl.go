package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/paybridgehq/paybridge/internal/gateway/resolver"
	"github.com/paybridgehq/paybridge/internal/gateway/webhook"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Resolver *resolver.Service
	Webhook  *webhook.Service
}

// Service is the gateway facade. It validates inputs before any
// resolver or processor call, converts transport faults into generic
// failure results, and hands webhooks to the background verifier.
type Service struct {
	log      *zap.Logger
	resolver *resolver.Service
	webhook  *webhook.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("gateway.service"),
		resolver: p.Resolver,
		webhook:  p.Webhook,
	}
}

func (s *Service) CreateAccount(ctx context.Context, identifier string, in domain.CreateAccountInput) (*domain.OperationResult, error) {
	if strings.TrimSpace(in.AccountName) == "" || strings.TrimSpace(in.ClientEmail) == "" {
		return nil, clientError("Missing account name or client email")
	}

	instance, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	created, err := instance.Processor.CreatePaymentAccount(ctx, in.AccountName, in.ClientEmail, in.Permanent)
	if err != nil {
		s.log.Error("account provisioning fault",
			zap.String("identifier", identifier),
			zap.String("kind", instance.Kind),
			zap.Error(err))
		return &domain.OperationResult{Status: false, Message: "Payment processor unavailable"}, nil
	}

	return &domain.OperationResult{Status: created.Success, Message: created.Message, Data: created.Data}, nil
}

func (s *Service) VerifyPayment(ctx context.Context, identifier string, in domain.VerifyPaymentInput) (*domain.OperationResult, error) {
	if strings.TrimSpace(in.Amount) == "" || strings.TrimSpace(in.Reference) == "" {
		return nil, clientError("missing `amount` or `txref` query parameters")
	}

	instance, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	verified, err := instance.Processor.VerifyPayment(ctx, in.Reference, in.Amount, in.AmountOnly)
	if err != nil {
		s.log.Error("payment verification fault",
			zap.String("identifier", identifier),
			zap.String("kind", instance.Kind),
			zap.Error(err))
		return &domain.OperationResult{Status: false, Message: "Verification Failed"}, nil
	}
	if !verified.Success {
		return &domain.OperationResult{Status: false, Message: "Verification Failed"}, nil
	}

	// Amount-only verifications never carry a detail payload, whatever the
	// processor returned.
	if in.AmountOnly {
		return &domain.OperationResult{Status: true, Message: verified.Message}, nil
	}
	return &domain.OperationResult{Status: true, Message: verified.Message, Data: verified.Data}, nil
}

func (s *Service) BuildPaymentObject(ctx context.Context, identifier string, in domain.PaymentObjectInput) (*domain.OperationResult, error) {
	if strings.TrimSpace(in.Amount) == "" || strings.TrimSpace(in.OrderID) == "" {
		return nil, clientError("missing `amount` or `order`")
	}

	instance, err := s.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	redirectURL := instance.RedirectBuilder(in.Amount, in.OrderID)
	paymentObj := instance.Processor.ProcessorInfo(in.Amount, redirectURL)

	// Merge precedence: user fields, then order/callback/amount, then
	// caller processor_info overrides (last writer wins).
	merged := domain.MergeFields(
		in.User,
		map[string]any{
			"order":        in.OrderID,
			"callback_url": redirectURL,
			"amount":       in.Amount,
		},
		in.ProcessorInfo,
	)
	buttonInfo := instance.Processor.OtherPaymentInfo(in.Currency, merged)

	return &domain.OperationResult{
		Status: true,
		Data: map[string]any{
			"processor_button_info": buttonInfo,
			"payment_obj":           paymentObj,
			"kind":                  instance.Kind,
		},
	}, nil
}

func (s *Service) AcknowledgeWebhook(signature string, rawBody []byte) {
	s.webhook.Schedule(signature, rawBody)
}

func clientError(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrMissingField, msg)
}
