package domain

// Verification is the outcome of a processor-side payment verification.
// Data is nil for amount-only verifications by contract, not merely empty.
type Verification struct {
	Success bool
	Message string
	Data    map[string]any
}

// AccountCreation is the outcome of provisioning a payment account number.
type AccountCreation struct {
	Success bool
	Message string
	Data    map[string]any
}

// ProcessorInstance is a request-scoped binding of an identifier to a
// concrete processor client. Instances carry no cross-identifier state
// and are discarded after one logical operation; resolution constructs
// a fresh one every call.
type ProcessorInstance struct {
	Identifier      string
	Kind            string
	Processor       Processor
	WebhookCallback WebhookCallback
	RedirectBuilder RedirectBuilder
}

// OperationResult is the facade-level result envelope: Status=false with
// a message represents an upstream rejection or converted fault, never a
// Go error.
type OperationResult struct {
	Status  bool
	Message string
	Data    map[string]any
}
