package flutterwave

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, baseURL string) domain.Processor {
	t.Helper()
	proc, err := NewFactory().NewProcessor(domain.ProcessorSettings{
		Identifier: "acct_123",
		Kind:       "flutterwave",
		Config: map[string]any{
			"secret_key":  "FLWSECK-test",
			"public_key":  "FLWPUBK-test",
			"secret_hash": "hash-value",
			"base_url":    baseURL,
		},
	})
	require.NoError(t, err)
	return proc
}

func TestFactoryRequiresCredentials(t *testing.T) {
	_, err := NewFactory().NewProcessor(domain.ProcessorSettings{
		Config: map[string]any{"secret_key": "sk"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestVerifyPaymentSuccessWithDetail(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer FLWSECK-test", r.Header.Get("Authorization"))
		assert.Equal(t, "ref-1", r.URL.Query().Get("tx_ref"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Transaction fetched",
			"data": map[string]any{
				"status":   "successful",
				"amount":   1500,
				"currency": "NGN",
				"customer": map[string]any{"email": "jane@example.com"},
			},
		})
	}))
	defer upstream.Close()

	proc := newTestProcessor(t, upstream.URL)
	result, err := proc.VerifyPayment(context.Background(), "ref-1", "1500", false)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.NotNil(t, result.Data)
	assert.Equal(t, "successful", result.Data["status"])
}

func TestVerifyPaymentAmountOnlyOmitsDetail(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"status": "successful", "amount": 1500, "currency": "NGN"},
		})
	}))
	defer upstream.Close()

	proc := newTestProcessor(t, upstream.URL)
	result, err := proc.VerifyPayment(context.Background(), "ref-1", "1500", true)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Nil(t, result.Data)
}

func TestVerifyPaymentAmountMismatch(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"status": "successful", "amount": 100, "currency": "NGN"},
		})
	}))
	defer upstream.Close()

	proc := newTestProcessor(t, upstream.URL)
	result, err := proc.VerifyPayment(context.Background(), "ref-1", "1500", false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "amount mismatch", result.Message)
}

func TestVerifyPaymentCurrencyMismatch(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"status": "successful", "amount": 1500, "currency": "USD"},
		})
	}))
	defer upstream.Close()

	proc := newTestProcessor(t, upstream.URL)
	result, err := proc.VerifyPayment(context.Background(), "ref-1", "1500", false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "currency mismatch", result.Message)
}

func TestVerifyPaymentAuthFailureIsTransportFault(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer upstream.Close()

	proc := newTestProcessor(t, upstream.URL)
	_, err := proc.VerifyPayment(context.Background(), "ref-1", "1500", false)
	assert.Error(t, err)
}

func TestCreatePaymentAccount(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jane@example.com", body["email"])
		assert.Equal(t, true, body["is_permanent"])
		assert.NotEmpty(t, body["tx_ref"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Virtual account created",
			"data":    map[string]any{"account_number": "1234567890", "bank_name": "Test Bank"},
		})
	}))
	defer upstream.Close()

	proc := newTestProcessor(t, upstream.URL)
	result, err := proc.CreatePaymentAccount(context.Background(), "Jane Doe", "jane@example.com", true)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Virtual account created", result.Message)
	assert.Equal(t, "1234567890", result.Data["account_number"])
}

func TestCreatePaymentAccountDecline(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "error",
			"message": "email is invalid",
		})
	}))
	defer upstream.Close()

	proc := newTestProcessor(t, upstream.URL)
	result, err := proc.CreatePaymentAccount(context.Background(), "Jane Doe", "not-an-email", false)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "email is invalid", result.Message)
}

func TestWebhookVerify(t *testing.T) {
	proc := newTestProcessor(t, "http://unused")
	body := []byte(`{"event":"charge.completed","data":{"tx_ref":"ref-1"}}`)
	opts := domain.WebhookOptions{FullAuth: true, Full: false}

	t.Run("valid signature invokes callback", func(t *testing.T) {
		var got map[string]any
		err := proc.WebhookVerify(context.Background(), "hash-value", body, opts, func(ctx context.Context, event map[string]any) {
			got = event
		})
		require.NoError(t, err)
		assert.Equal(t, "charge.completed", got["event"])
	})

	t.Run("bad signature never invokes callback", func(t *testing.T) {
		invoked := false
		err := proc.WebhookVerify(context.Background(), "badsig", body, opts, func(ctx context.Context, event map[string]any) {
			invoked = true
		})
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		assert.False(t, invoked)
	})

	t.Run("empty signature rejected even without full auth", func(t *testing.T) {
		err := proc.WebhookVerify(context.Background(), "", body, domain.WebhookOptions{}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("full mode requires event envelope", func(t *testing.T) {
		err := proc.WebhookVerify(context.Background(), "hash-value", []byte(`{"foo":1}`),
			domain.WebhookOptions{FullAuth: true, Full: true}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		err := proc.WebhookVerify(context.Background(), "hash-value", []byte("not json"), opts, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	})
}

func TestOtherPaymentInfoMergeOrder(t *testing.T) {
	proc := newTestProcessor(t, "http://unused")

	info := proc.OtherPaymentInfo("usd", map[string]any{
		"country": "GH",
		"order":   "o-1",
	})

	assert.Equal(t, "FLWPUBK-test", info["public_key"])
	assert.Equal(t, "USD", info["currency"])
	// caller fields override defaults
	assert.Equal(t, "GH", info["country"])
	assert.Equal(t, "o-1", info["order"])
	assert.Equal(t, "card,banktransfer,ussd", info["payment_options"])
}

func TestProcessorInfo(t *testing.T) {
	proc := newTestProcessor(t, "http://unused")

	obj := proc.ProcessorInfo("2500", "https://pay.example.com/cb?amount=2500&order=o-9")

	assert.Equal(t, "FLWPUBK-test", obj["public_key"])
	assert.Equal(t, "2500", obj["amount"])
	assert.Equal(t, "NGN", obj["currency"])
	assert.Equal(t, "https://pay.example.com/cb?amount=2500&order=o-9", obj["redirect_url"])
	assert.NotEmpty(t, obj["tx_ref"])
}
