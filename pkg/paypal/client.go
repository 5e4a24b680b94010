// Package paypal wraps PayPal's three protocol families: Express Checkout
// (NVP), PaymentsPro (REST with OAuth2 client credentials) and Standard
// (redirect only).
package paypal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"paypalgw/pkg/nvp"
)

// Version is the NVP API version sent with every request.
const Version = "124.0"

const (
	nvpEndpointLive    = "https://api-3t.paypal.com/nvp"
	nvpEndpointSandbox = "https://api-3t.sandbox.paypal.com/nvp"

	redirectLive    = "https://www.paypal.com/checkoutnow?token="
	redirectSandbox = "https://www.sandbox.paypal.com/checkoutnow?token="
)

// Hook can mutate an outgoing NVP request before it is sent. Hooks let
// collaborators (shipping modules, fraud layers) compose extra fields
// without touching the client.
type Hook func(method string, req *nvp.Values)

// NVPConfig holds the classic API signature credentials.
type NVPConfig struct {
	User      string
	Pwd       string
	Signature string
	TestMode  bool
}

// NVPClient talks to the Express Checkout NVP endpoint.
type NVPClient struct {
	Endpoint string
	cfg      NVPConfig
	hooks    []Hook
	client   *http.Client
}

// NewNVPClient builds a client for the endpoint selected by cfg.TestMode.
// endpoint overrides the default when non-empty (tests).
func NewNVPClient(endpoint string, cfg NVPConfig) *NVPClient {
	if endpoint == "" {
		endpoint = nvpEndpointLive
		if cfg.TestMode {
			endpoint = nvpEndpointSandbox
		}
	}
	return &NVPClient{
		Endpoint: endpoint,
		cfg:      cfg,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// RegisterHook adds a request hook; hooks run in registration order.
func (c *NVPClient) RegisterHook(h Hook) {
	c.hooks = append(c.hooks, h)
}

// RedirectURL is where the buyer is sent to approve an Express Checkout token.
func (c *NVPClient) RedirectURL(token string) string {
	if c.cfg.TestMode {
		return redirectSandbox + token
	}
	return redirectLive + token
}

// DoRequest merges fields with the fixed credential/version/method fields,
// runs hooks, POSTs, and returns the decoded response verbatim. Error
// interpretation (ACK checking) is the caller's responsibility.
func (c *NVPClient) DoRequest(ctx context.Context, method string, fields *nvp.Values) (*nvp.Values, error) {
	req := nvp.New()
	req.Set("METHOD", method)
	req.Set("VERSION", Version)
	req.Set("USER", c.cfg.User)
	req.Set("PWD", c.cfg.Pwd)
	req.Set("SIGNATURE", c.cfg.Signature)
	req.Merge(fields)
	for _, h := range c.hooks {
		h(method, req)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(req.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	log.Printf("[EC] POST %s METHOD=%s", c.Endpoint, method)
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGatewayUnreachable, method, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrGatewayUnreachable, method, err)
	}
	out := nvp.Decode(body)
	log.Printf("[EC] %s ACK=%s CORRELATIONID=%s", method, out.Get("ACK"), out.Get("CORRELATIONID"))
	return out, nil
}
