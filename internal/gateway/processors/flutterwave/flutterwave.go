package flutterwave

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
)

const defaultBaseURL = "https://api.flutterwave.com/v3"

// Factory creates Flutterwave processors
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Kind() string {
	return "flutterwave"
}

func (f *Factory) NewProcessor(cfg domain.ProcessorSettings) (domain.Processor, error) {
	secretKey, ok := readString(cfg.Config, "secret_key")
	if !ok || strings.TrimSpace(secretKey) == "" {
		return nil, domain.ErrInvalidConfig
	}
	publicKey, ok := readString(cfg.Config, "public_key")
	if !ok || strings.TrimSpace(publicKey) == "" {
		return nil, domain.ErrInvalidConfig
	}
	// secret_hash is the value Flutterwave echoes back in the verif-hash
	// header; without it webhook verification cannot succeed.
	secretHash, ok := readString(cfg.Config, "secret_hash")
	if !ok || strings.TrimSpace(secretHash) == "" {
		return nil, domain.ErrInvalidConfig
	}

	baseURL, ok := readString(cfg.Config, "base_url")
	if !ok || strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	currency, ok := readString(cfg.Config, "currency")
	if !ok || strings.TrimSpace(currency) == "" {
		currency = "NGN"
	}

	return &Processor{
		secretKey:  strings.TrimSpace(secretKey),
		publicKey:  strings.TrimSpace(publicKey),
		secretHash: strings.TrimSpace(secretHash),
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		currency:   strings.ToUpper(strings.TrimSpace(currency)),
		http:       &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Processor implements domain.Processor against the Flutterwave v3 API
type Processor struct {
	secretKey  string
	publicKey  string
	secretHash string
	baseURL    string
	currency   string
	http       *http.Client
}

type flwEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type flwTransaction struct {
	Status   string      `json:"status"`
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

func (p *Processor) VerifyPayment(ctx context.Context, reference, amount string, amountOnly bool) (*domain.Verification, error) {
	endpoint := fmt.Sprintf("%s/transactions/verify_by_reference?tx_ref=%s", p.baseURL, url.QueryEscape(reference))
	envelope, status, err := p.call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !strings.EqualFold(envelope.Status, "success") {
		return &domain.Verification{Success: false, Message: rejectionMessage(envelope.Message, "transaction not found")}, nil
	}

	var tx flwTransaction
	if err := json.Unmarshal(envelope.Data, &tx); err != nil {
		return nil, fmt.Errorf("flutterwave: decode transaction: %w", err)
	}
	if !strings.EqualFold(tx.Status, "successful") {
		return &domain.Verification{Success: false, Message: "transaction not successful"}, nil
	}
	if !strings.EqualFold(tx.Currency, p.currency) {
		return &domain.Verification{Success: false, Message: "currency mismatch"}, nil
	}

	expected, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return &domain.Verification{Success: false, Message: "invalid amount"}, nil
	}
	paid, err := tx.Amount.Float64()
	if err != nil || paid < expected {
		return &domain.Verification{Success: false, Message: "amount mismatch"}, nil
	}

	result := &domain.Verification{Success: true, Message: "Verification successful"}
	if !amountOnly {
		var detail map[string]any
		if err := json.Unmarshal(envelope.Data, &detail); err != nil {
			return nil, fmt.Errorf("flutterwave: decode transaction detail: %w", err)
		}
		result.Data = detail
	}
	return result, nil
}

func (p *Processor) CreatePaymentAccount(ctx context.Context, accountName, clientEmail string, permanent bool) (*domain.AccountCreation, error) {
	body := map[string]any{
		"email":        clientEmail,
		"is_permanent": permanent,
		"tx_ref":       uuid.NewString(),
		"narration":    accountName,
	}
	envelope, status, err := p.call(ctx, http.MethodPost, p.baseURL+"/virtual-account-numbers", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !strings.EqualFold(envelope.Status, "success") {
		return &domain.AccountCreation{Success: false, Message: rejectionMessage(envelope.Message, "account creation declined")}, nil
	}

	var data map[string]any
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, fmt.Errorf("flutterwave: decode account: %w", err)
	}
	return &domain.AccountCreation{Success: true, Message: envelope.Message, Data: data}, nil
}

func (p *Processor) WebhookVerify(ctx context.Context, signature string, rawBody []byte, opts domain.WebhookOptions, callback domain.WebhookCallback) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return domain.ErrInvalidSignature
	}
	if opts.FullAuth && !hmac.Equal([]byte(signature), []byte(p.secretHash)) {
		return domain.ErrInvalidSignature
	}

	var event map[string]any
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return domain.ErrInvalidPayload
	}
	if opts.Full {
		if _, ok := event["event"]; !ok {
			return domain.ErrInvalidPayload
		}
		if _, ok := event["data"]; !ok {
			return domain.ErrInvalidPayload
		}
	}

	if callback != nil {
		callback(ctx, event)
	}
	return nil
}

func (p *Processor) ProcessorInfo(amount, redirectURL string) map[string]any {
	return map[string]any{
		"public_key":   p.publicKey,
		"tx_ref":       uuid.NewString(),
		"amount":       amount,
		"currency":     p.currency,
		"redirect_url": redirectURL,
	}
}

func (p *Processor) OtherPaymentInfo(currency string, fields map[string]any) map[string]any {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		cur = p.currency
	}
	defaults := map[string]any{
		"public_key":      p.publicKey,
		"currency":        cur,
		"country":         "NG",
		"payment_options": "card,banktransfer,ussd",
	}
	return domain.MergeFields(defaults, fields)
}

// call performs an authenticated API request. Non-2xx responses with a
// parseable envelope are upstream rejections; auth and 5xx responses are
// transport faults.
func (p *Processor) call(ctx context.Context, method, endpoint string, body map[string]any) (*flwEnvelope, int, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("flutterwave: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, resp.StatusCode, fmt.Errorf("flutterwave: authentication failed: %d", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, resp.StatusCode, fmt.Errorf("flutterwave: upstream error: %d", resp.StatusCode)
	}

	var envelope flwEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("flutterwave: decode response: %w", err)
	}
	return &envelope, resp.StatusCode, nil
}

func rejectionMessage(message, fallback string) string {
	if strings.TrimSpace(message) != "" {
		return message
	}
	return fallback
}

func readString(config map[string]any, key string) (string, bool) {
	value, ok := config[key]
	if !ok {
		return "", false
	}
	switch cast := value.(type) {
	case string:
		return cast, true
	default:
		return "", false
	}
}
