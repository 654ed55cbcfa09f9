package observability

import (
	"strings"
)

var sensitiveKeys = map[string]struct{}{
	"card":            {},
	"account_number":  {},
	"authorization":   {},
	"secret":          {},
	"secret_key":      {},
	"token":           {},
	"api_key":         {},
	"webhook_secret":  {},
	"billing_details": {},
}

// MaskFields returns a copy of m with sensitive values replaced, nested
// maps and arrays included. The input is never mutated.
func MaskFields(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if _, sensitive := sensitiveKeys[strings.ToLower(k)]; sensitive {
			out[k] = "***"
			continue
		}
		switch cast := v.(type) {
		case map[string]any:
			out[k] = MaskFields(cast)
		case []any:
			masked := make([]any, len(cast))
			for i, item := range cast {
				if nested, ok := item.(map[string]any); ok {
					masked[i] = MaskFields(nested)
				} else {
					masked[i] = item
				}
			}
			out[k] = masked
		default:
			out[k] = v
		}
	}
	return out
}
