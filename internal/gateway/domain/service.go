package domain

import (
	"context"
	"errors"
)

// Service is the payment gateway facade. Errors are reserved for client
// input problems and identifier resolution failures; upstream rejections
// and transport faults surface as OperationResult with Status=false.
type Service interface {
	CreateAccount(ctx context.Context, identifier string, in CreateAccountInput) (*OperationResult, error)
	VerifyPayment(ctx context.Context, identifier string, in VerifyPaymentInput) (*OperationResult, error)
	BuildPaymentObject(ctx context.Context, identifier string, in PaymentObjectInput) (*OperationResult, error)

	// AcknowledgeWebhook schedules background signature verification and
	// returns immediately. It never fails observably.
	AcknowledgeWebhook(signature string, rawBody []byte)
}

type CreateAccountInput struct {
	AccountName string
	ClientEmail string
	Permanent   bool
}

type VerifyPaymentInput struct {
	Reference  string
	Amount     string
	AmountOnly bool
}

type PaymentObjectInput struct {
	Amount        string
	OrderID       string
	Currency      string
	User          map[string]any
	ProcessorInfo map[string]any
}

// ClientMessage extracts the human-readable part of a wrapped
// ErrMissingField for the transport layer.
func ClientMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if prefix := ErrMissingField.Error() + ": "; len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

var (
	ErrMissingField     = errors.New("missing_field")
	ErrConfigNotFound   = errors.New("config_not_found")
	ErrInvalidConfig    = errors.New("invalid_config")
	ErrUnknownKind      = errors.New("unknown_processor_kind")
	ErrInvalidSignature = errors.New("invalid_signature")
	ErrInvalidPayload   = errors.New("invalid_payload")
)
