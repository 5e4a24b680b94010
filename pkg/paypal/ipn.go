package paypal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	ipnEndpointLive    = "https://ipnpb.paypal.com/cgi-bin/webscr"
	ipnEndpointSandbox = "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"
)

// IPNValidator performs the authenticity round-trip for inbound IPN messages:
// the raw body is echoed back to PayPal prefixed with cmd=_notify-validate.
type IPNValidator struct {
	Endpoint string
	client   *http.Client
}

// NewIPNValidator builds a validator with an explicit timeout. A timeout or
// transport error during validation counts as validation failure, never as
// implicit success.
func NewIPNValidator(endpoint string, testMode bool, timeout time.Duration) *IPNValidator {
	if endpoint == "" {
		endpoint = ipnEndpointLive
		if testMode {
			endpoint = ipnEndpointSandbox
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IPNValidator{
		Endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Validate echoes rawBody back to PayPal. It returns nil only for a VERIFIED
// response; every other outcome wraps ErrValidationFailed.
func (v *IPNValidator) Validate(ctx context.Context, rawBody []byte) error {
	body := "cmd=_notify-validate&" + string(rawBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: round-trip: %v", ErrValidationFailed, err)
	}
	defer resp.Body.Close()
	verdict, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read: %v", ErrValidationFailed, err)
	}
	if strings.TrimSpace(string(verdict)) != "VERIFIED" {
		return fmt.Errorf("%w: paypal answered %q", ErrValidationFailed, strings.TrimSpace(string(verdict)))
	}
	return nil
}
