// Package oauth implements the provider-specific halves of the account
// linking flow: authorize-URL construction, authorization-code exchange and
// profile fetch. GitHub uses a plain exchange; X uses PKCE.
package oauth

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// Profile is the subset of a provider's "who am I" response we persist.
type Profile struct {
	ID       string
	Username string
}

func newHTTPClient() *http.Client {
	// Provider calls must never hang a callback indefinitely.
	return &http.Client{Timeout: 15 * time.Second}
}

func drainBody(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return string(body)
}

func statusError(op string, resp *http.Response) error {
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, drainBody(resp))
}
