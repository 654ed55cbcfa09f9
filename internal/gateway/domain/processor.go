package domain

import (
	"context"
)

// WebhookCallback receives the parsed event payload of a webhook whose
// signature verified. It is never invoked for rejected events.
type WebhookCallback func(ctx context.Context, event map[string]any)

// WebhookOptions carries variant-specific strictness flags for webhook
// verification.
type WebhookOptions struct {
	// FullAuth requires full cryptographic validation of the signature.
	// When false the adapter only performs plausibility checks.
	FullAuth bool
	// Full additionally requires the payload to parse as a complete
	// event envelope before the callback is invoked.
	Full bool
}

// Processor is the normalized contract every payment-processor client
// satisfies. Upstream rejections are reported through the result types
// with Success=false; a non-nil error always means a transport-level
// fault (network, credentials), never an ordinary decline.
type Processor interface {
	// CreatePaymentAccount provisions a virtual/dedicated account number
	// with the upstream processor.
	CreatePaymentAccount(ctx context.Context, accountName, clientEmail string, permanent bool) (*AccountCreation, error)

	// VerifyPayment checks a transaction reference against the expected
	// amount. When amountOnly is set the result carries no transaction
	// detail payload even if the processor returned one.
	VerifyPayment(ctx context.Context, reference, amount string, amountOnly bool) (*Verification, error)

	// WebhookVerify validates signature against rawBody using the
	// variant's secret material and invokes callback with the parsed
	// event on success. It runs strictly after the webhook has been
	// acknowledged; its error is only ever logged.
	WebhookVerify(ctx context.Context, signature string, rawBody []byte, opts WebhookOptions, callback WebhookCallback) error

	// ProcessorInfo builds the processor-specific payment-initiation
	// payload a client SDK needs to render a payment widget.
	ProcessorInfo(amount, redirectURL string) map[string]any

	// OtherPaymentInfo builds button-display metadata by merging caller
	// fields over variant defaults (last writer wins).
	OtherPaymentInfo(currency string, fields map[string]any) map[string]any
}

// ProcessorSettings is the decrypted configuration handed to a factory.
type ProcessorSettings struct {
	Identifier string
	Kind       string
	Config     map[string]any
}

// Factory constructs a fresh Processor per resolution. Implementations
// must be stateless and safe for concurrent use.
type Factory interface {
	Kind() string
	NewProcessor(cfg ProcessorSettings) (Processor, error)
}
