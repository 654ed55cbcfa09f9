package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paybridgehq/paybridge/internal/config"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/paybridgehq/paybridge/internal/gateway/processors"
	"github.com/paybridgehq/paybridge/internal/gateway/resolver"
	"github.com/paybridgehq/paybridge/internal/gateway/webhook"
	"github.com/paybridgehq/paybridge/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// fakeRepo serves plaintext configs from memory.
type fakeRepo struct {
	configs map[string]*domain.ProcessorConfig
	lookups int
}

func (r *fakeRepo) FindByIdentifier(ctx context.Context, identifier string) (*domain.ProcessorConfig, error) {
	r.lookups++
	if cfg, ok := r.configs[identifier]; ok {
		return cfg, nil
	}
	return nil, domain.ErrConfigNotFound
}

func (r *fakeRepo) FindByWebhookKey(ctx context.Context, key string) (*domain.ProcessorConfig, error) {
	for _, cfg := range r.configs {
		if cfg.WebhookKey == key {
			return cfg, nil
		}
	}
	return nil, domain.ErrConfigNotFound
}

// fakeProcessor records calls and returns canned results. With leakData
// set it ignores amountOnly and returns the detail payload anyway.
type fakeProcessor struct {
	verifyResult  *domain.Verification
	accountResult *domain.AccountCreation
	fault         error
	leakData      bool
	calls         *int
}

type fakeFactory struct {
	proc *fakeProcessor
}

func (f *fakeFactory) Kind() string { return "fake" }

func (f *fakeFactory) NewProcessor(cfg domain.ProcessorSettings) (domain.Processor, error) {
	return f.proc, nil
}

func (p *fakeProcessor) CreatePaymentAccount(ctx context.Context, accountName, clientEmail string, permanent bool) (*domain.AccountCreation, error) {
	*p.calls++
	if p.fault != nil {
		return nil, p.fault
	}
	return p.accountResult, nil
}

func (p *fakeProcessor) VerifyPayment(ctx context.Context, reference, amount string, amountOnly bool) (*domain.Verification, error) {
	*p.calls++
	if p.fault != nil {
		return nil, p.fault
	}
	result := *p.verifyResult
	if amountOnly && !p.leakData {
		result.Data = nil
	}
	return &result, nil
}

func (p *fakeProcessor) WebhookVerify(ctx context.Context, signature string, rawBody []byte, opts domain.WebhookOptions, callback domain.WebhookCallback) error {
	*p.calls++
	return nil
}

func (p *fakeProcessor) ProcessorInfo(amount, redirectURL string) map[string]any {
	return map[string]any{"amount": amount, "redirect_url": redirectURL, "key": "pk_fake"}
}

func (p *fakeProcessor) OtherPaymentInfo(currency string, fields map[string]any) map[string]any {
	return domain.MergeFields(map[string]any{"key": "pk_fake", "currency": currency}, fields)
}

func newFacade(t *testing.T, proc *fakeProcessor) (domain.Service, *fakeRepo) {
	t.Helper()

	repo := &fakeRepo{configs: map[string]*domain.ProcessorConfig{
		"acct_123": {
			Identifier: "acct_123",
			Kind:       "fake",
			Config:     datatypes.JSON(`{"any":"thing"}`),
			WebhookKey: "hook-token",
			IsActive:   true,
		},
	}}

	res := resolver.New(resolver.Params{
		Log:      zap.NewNop(),
		Repo:     repo,
		Registry: processors.NewRegistry(&fakeFactory{proc: proc}),
		Cfg: config.Config{
			Gateway: config.GatewayConfig{CallbackBaseURL: "https://gw.example.com/cb"},
		},
	})

	hooks := webhook.NewService(webhook.Params{
		Log:      zap.NewNop(),
		Resolver: res,
		Metrics:  metrics.New(),
		Cfg: config.Config{
			Gateway: config.GatewayConfig{WebhookTimeout: time.Second, WebhookFullAuth: true},
		},
	})

	return New(Params{Log: zap.NewNop(), Resolver: res, Webhook: hooks}), repo
}

func newFakeProcessor() *fakeProcessor {
	calls := 0
	return &fakeProcessor{
		calls: &calls,
		verifyResult: &domain.Verification{
			Success: true,
			Message: "Verification successful",
			Data:    map[string]any{"reference": "r1", "amount": 100},
		},
		accountResult: &domain.AccountCreation{
			Success: true,
			Message: "Account created",
			Data:    map[string]any{"account_number": "1234567890"},
		},
	}
}

func TestCreateAccountMissingFieldsSkipsResolution(t *testing.T) {
	proc := newFakeProcessor()
	svc, repo := newFacade(t, proc)

	_, err := svc.CreateAccount(context.Background(), "acct_123", domain.CreateAccountInput{
		AccountName: "Jane Doe",
	})

	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, "Missing account name or client email", domain.ClientMessage(err))
	assert.Equal(t, 0, repo.lookups)
	assert.Equal(t, 0, *proc.calls)
}

func TestCreateAccountSuccess(t *testing.T) {
	proc := newFakeProcessor()
	svc, _ := newFacade(t, proc)

	result, err := svc.CreateAccount(context.Background(), "acct_123", domain.CreateAccountInput{
		AccountName: "Jane Doe",
		ClientEmail: "jane@example.com",
		Permanent:   true,
	})
	require.NoError(t, err)

	assert.True(t, result.Status)
	assert.Equal(t, "Account created", result.Message)
	assert.Equal(t, "1234567890", result.Data["account_number"])
}

func TestOperationsFailForUnknownIdentifierWithoutProcessorCall(t *testing.T) {
	proc := newFakeProcessor()
	svc, _ := newFacade(t, proc)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, "unknown", domain.CreateAccountInput{AccountName: "J", ClientEmail: "j@e.com"})
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = svc.VerifyPayment(ctx, "unknown", domain.VerifyPaymentInput{Reference: "r1", Amount: "100"})
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)

	_, err = svc.BuildPaymentObject(ctx, "unknown", domain.PaymentObjectInput{Amount: "100", OrderID: "o-1"})
	assert.ErrorIs(t, err, domain.ErrConfigNotFound)

	assert.Equal(t, 0, *proc.calls)
}

func TestVerifyPaymentAmountOnlyOmitsData(t *testing.T) {
	proc := newFakeProcessor()
	svc, _ := newFacade(t, proc)

	result, err := svc.VerifyPayment(context.Background(), "acct_123", domain.VerifyPaymentInput{
		Reference:  "r1",
		Amount:     "100",
		AmountOnly: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Status)
	assert.Nil(t, result.Data)
}

func TestVerifyPaymentAmountOnlyStripsProcessorDetail(t *testing.T) {
	proc := newFakeProcessor()
	proc.leakData = true
	proc.verifyResult.Data = map[string]any{
		"card_last4":     "4242",
		"customer_email": "jane@example.com",
	}
	svc, _ := newFacade(t, proc)

	result, err := svc.VerifyPayment(context.Background(), "acct_123", domain.VerifyPaymentInput{
		Reference:  "r1",
		Amount:     "100",
		AmountOnly: true,
	})
	require.NoError(t, err)

	assert.True(t, result.Status)
	assert.Nil(t, result.Data)
}

func TestVerifyPaymentIncludesDataByDefault(t *testing.T) {
	proc := newFakeProcessor()
	svc, _ := newFacade(t, proc)

	result, err := svc.VerifyPayment(context.Background(), "acct_123", domain.VerifyPaymentInput{
		Reference: "r1",
		Amount:    "100",
	})
	require.NoError(t, err)

	assert.True(t, result.Status)
	assert.Equal(t, "r1", result.Data["reference"])
}

func TestVerifyPaymentMissingParams(t *testing.T) {
	proc := newFakeProcessor()
	svc, repo := newFacade(t, proc)

	_, err := svc.VerifyPayment(context.Background(), "acct_123", domain.VerifyPaymentInput{Reference: "r1"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, 0, repo.lookups)
}

func TestVerifyPaymentTransportFaultIsGenericFailure(t *testing.T) {
	proc := newFakeProcessor()
	proc.fault = errors.New("dial tcp: connection refused")
	svc, _ := newFacade(t, proc)

	result, err := svc.VerifyPayment(context.Background(), "acct_123", domain.VerifyPaymentInput{
		Reference: "r1",
		Amount:    "100",
	})
	require.NoError(t, err)

	assert.False(t, result.Status)
	assert.Equal(t, "Verification Failed", result.Message)
	assert.NotContains(t, result.Message, "connection refused")
}

func TestVerifyPaymentUpstreamRejection(t *testing.T) {
	proc := newFakeProcessor()
	proc.verifyResult = &domain.Verification{Success: false, Message: "amount mismatch"}
	svc, _ := newFacade(t, proc)

	result, err := svc.VerifyPayment(context.Background(), "acct_123", domain.VerifyPaymentInput{
		Reference: "r1",
		Amount:    "100",
	})
	require.NoError(t, err)

	assert.False(t, result.Status)
	assert.Equal(t, "Verification Failed", result.Message)
}

func TestBuildPaymentObject(t *testing.T) {
	proc := newFakeProcessor()
	svc, _ := newFacade(t, proc)

	result, err := svc.BuildPaymentObject(context.Background(), "acct_123", domain.PaymentObjectInput{
		Amount:   "100",
		OrderID:  "o-1",
		Currency: "NGN",
		User:     map[string]any{"email": "jane@example.com", "amount": "999"},
		ProcessorInfo: map[string]any{
			"channels": []string{"card"},
		},
	})
	require.NoError(t, err)
	require.True(t, result.Status)

	assert.Equal(t, "fake", result.Data["kind"])

	paymentObj, ok := result.Data["payment_obj"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "100", paymentObj["amount"])
	assert.Contains(t, paymentObj["redirect_url"], "https://gw.example.com/cb?")

	buttonInfo, ok := result.Data["processor_button_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jane@example.com", buttonInfo["email"])
	// order/callback/amount override user-supplied collisions
	assert.Equal(t, "100", buttonInfo["amount"])
	assert.Equal(t, "o-1", buttonInfo["order"])
	assert.Contains(t, buttonInfo["callback_url"], "order=o-1")
	// processor_info wins last
	assert.Equal(t, []string{"card"}, buttonInfo["channels"])
}

func TestBuildPaymentObjectMissingFields(t *testing.T) {
	proc := newFakeProcessor()
	svc, repo := newFacade(t, proc)

	_, err := svc.BuildPaymentObject(context.Background(), "acct_123", domain.PaymentObjectInput{Amount: "100"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, "missing `amount` or `order`", domain.ClientMessage(err))
	assert.Equal(t, 0, repo.lookups)
}
