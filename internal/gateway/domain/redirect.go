package domain

import (
	"net/url"
	"strings"
)

// RedirectBuilder computes the redirect/callback URL for a payment from
// its amount and order id.
type RedirectBuilder func(amount, orderID string) string

// NewRedirectBuilder returns a deterministic builder over base: identical
// (amount, orderID) pairs always yield the identical URL. url.Values
// encoding sorts keys, so the output is stable.
func NewRedirectBuilder(base string) RedirectBuilder {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return func(amount, orderID string) string {
		q := url.Values{}
		q.Set("amount", amount)
		q.Set("order", orderID)
		return base + "?" + q.Encode()
	}
}
