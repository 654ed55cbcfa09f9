package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
)

const defaultBaseURL = "https://api.paystack.co"

// Factory creates Paystack processors
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Kind() string {
	return "paystack"
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

	baseURL, ok := readString(cfg.Config, "base_url")
	if !ok || strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	currency, ok := readString(cfg.Config, "currency")
	if !ok || strings.TrimSpace(currency) == "" {
		currency = "NGN"
	}
	bank, ok := readString(cfg.Config, "preferred_bank")
	if !ok || strings.TrimSpace(bank) == "" {
		bank = "wema-bank"
	}

	return &Processor{
		secretKey: strings.TrimSpace(secretKey),
		publicKey: strings.TrimSpace(publicKey),
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		currency:  strings.ToUpper(strings.TrimSpace(currency)),
		bank:      strings.TrimSpace(bank),
		http:      &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Processor implements domain.Processor against the Paystack API.
// Amounts on the wire are in subunits (kobo).
type Processor struct {
	secretKey string
	publicKey string
	baseURL   string
	currency  string
	bank      string
	http      *http.Client
}

type pstkEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type pstkTransaction struct {
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (p *Processor) VerifyPayment(ctx context.Context, reference, amount string, amountOnly bool) (*domain.Verification, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", p.baseURL, url.PathEscape(reference))
	envelope, status, err := p.call(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK || !envelope.Status {
		return &domain.Verification{Success: false, Message: rejectionMessage(envelope.Message, "transaction not found")}, nil
	}

	var tx pstkTransaction
	if err := json.Unmarshal(envelope.Data, &tx); err != nil {
		return nil, fmt.Errorf("paystack: decode transaction: %w", err)
	}
	if !strings.EqualFold(tx.Status, "success") {
		return &domain.Verification{Success: false, Message: "transaction not successful"}, nil
	}
	if !strings.EqualFold(tx.Currency, p.currency) {
		return &domain.Verification{Success: false, Message: "currency mismatch"}, nil
	}

	expected, err := subunits(amount)
	if err != nil {
		return &domain.Verification{Success: false, Message: "invalid amount"}, nil
	}
	if tx.Amount < expected {
		return &domain.Verification{Success: false, Message: "amount mismatch"}, nil
	}

	result := &domain.Verification{Success: true, Message: "Verification successful"}
	if !amountOnly {
		var detail map[string]any
		if err := json.Unmarshal(envelope.Data, &detail); err != nil {
			return nil, fmt.Errorf("paystack: decode transaction detail: %w", err)
		}
		result.Data = detail
	}
	return result, nil
}

// CreatePaymentAccount assigns a dedicated virtual account. Paystack
// dedicated accounts are always permanent, so the flag is accepted but
// has no effect on this variant.
func (p *Processor) CreatePaymentAccount(ctx context.Context, accountName, clientEmail string, permanent bool) (*domain.AccountCreation, error) {
	first, last := splitName(accountName)
	body := map[string]any{
		"email":          clientEmail,
		"first_name":     first,
		"last_name":      last,
		"preferred_bank": p.bank,
		"country":        "NG",
	}
	envelope, status, err := p.call(ctx, http.MethodPost, p.baseURL+"/dedicated_account/assign", body)
	if err != nil {
		return nil, err
	}
	if (status != http.StatusOK && status != http.StatusCreated) || !envelope.Status {
		return &domain.AccountCreation{Success: false, Message: rejectionMessage(envelope.Message, "account assignment declined")}, nil
	}

	data := map[string]any{}
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("paystack: decode account: %w", err)
		}
	}
	return &domain.AccountCreation{Success: true, Message: envelope.Message, Data: data}, nil
}

func (p *Processor) WebhookVerify(ctx context.Context, signature string, rawBody []byte, opts domain.WebhookOptions, callback domain.WebhookCallback) error {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		return domain.ErrInvalidSignature
	}
	if opts.FullAuth {
		mac := hmac.New(sha512.New, []byte(p.secretKey))
		mac.Write(rawBody)
		expected := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(signature), []byte(expected)) {
			return domain.ErrInvalidSignature
		}
	}

	var event map[string]any
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return domain.ErrInvalidPayload
	}
	if opts.Full {
		if _, ok := event["event"]; !ok {
			return domain.ErrInvalidPayload
		}
	}

	if callback != nil {
		callback(ctx, event)
	}
	return nil
}

func (p *Processor) ProcessorInfo(amount, redirectURL string) map[string]any {
	info := map[string]any{
		"key":          p.publicKey,
		"ref":          uuid.NewString(),
		"currency":     p.currency,
		"callback_url": redirectURL,
	}
	if kobo, err := subunits(amount); err == nil {
		info["amount"] = strconv.FormatInt(kobo, 10)
	} else {
		info["amount"] = amount
	}
	return info
}

func (p *Processor) OtherPaymentInfo(currency string, fields map[string]any) map[string]any {
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		cur = p.currency
	}
	defaults := map[string]any{
		"key":      p.publicKey,
		"currency": cur,
		"channels": []string{"card", "bank", "ussd"},
	}
	return domain.MergeFields(defaults, fields)
}

func (p *Processor) call(ctx context.Context, method, endpoint string, body map[string]any) (*pstkEnvelope, int, error) {
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
		return nil, 0, fmt.Errorf("paystack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, resp.StatusCode, fmt.Errorf("paystack: authentication failed: %d", resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, resp.StatusCode, fmt.Errorf("paystack: upstream error: %d", resp.StatusCode)
	}

	var envelope pstkEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("paystack: decode response: %w", err)
	}
	return &envelope, resp.StatusCode, nil
}

// subunits converts a major-unit amount string to kobo.
func subunits(amount string) (int64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(value * 100)), nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], parts[0]
	}
	return parts[0], strings.Join(parts[1:], " ")
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
