package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	restEndpointLive    = "https://api.paypal.com"
	restEndpointSandbox = "https://api.sandbox.paypal.com"
)

// ProConfig holds the REST app credentials.
type ProConfig struct {
	ClientID string
	Secret   string
	TestMode bool
}

// ProClient talks to the PayPal REST /v1 API with a cached bearer token.
type ProClient struct {
	BaseURL string
	client  *http.Client
	tokens  oauth2.TokenSource
}

// NewProClient builds a REST client. baseURL overrides the endpoint selected
// by cfg.TestMode when non-empty (tests).
func NewProClient(baseURL string, cfg ProConfig) *ProClient {
	if baseURL == "" {
		baseURL = restEndpointLive
		if cfg.TestMode {
			baseURL = restEndpointSandbox
		}
	}
	hc := &http.Client{Timeout: 30 * time.Second}
	return &ProClient{
		BaseURL: baseURL,
		client:  hc,
		tokens:  newTokenSource(baseURL, cfg.ClientID, cfg.Secret, hc),
	}
}

func (c *ProClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	tok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("%w: token: %v", ErrGatewayUnreachable, err)
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	log.Printf("[PRO] %s %s", method, path)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrGatewayUnreachable, method, path, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrGatewayUnreachable, method, path, err)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		_ = json.Unmarshal(respBody, &apiErr)
		log.Printf("[PRO] %s %s failed: status=%d name=%s", method, path, resp.StatusCode, apiErr.Name)
		return &DeclinedError{Code: apiErr.Name, Message: apiErr.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// CreatePayment creates a sale or authorize payment.
func (c *ProClient) CreatePayment(ctx context.Context, p *Payment) (*Payment, error) {
	var out Payment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/payments/payment", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPayment fetches a payment with its related resources.
func (c *ProClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var out Payment
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/payment/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CapturePayment captures an authorized payment. The authorization id is not
// returned by PayPal at capture time, so the payment is re-fetched first to
// discover it.
func (c *ProClient) CapturePayment(ctx context.Context, paymentID string, amount Amount) (*Capture, error) {
	p, err := c.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	authID := p.AuthorizationID()
	if authID == "" {
		return nil, &DeclinedError{Message: "payment " + paymentID + " has no authorization to capture"}
	}
	var out Capture
	body := CaptureRequest{Amount: amount, IsFinalCapture: true}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/payments/authorization/"+authID+"/capture", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VoidPayment voids an authorized payment, discovering the authorization id
// the same way CapturePayment does.
func (c *ProClient) VoidPayment(ctx context.Context, paymentID string) (*Authorization, error) {
	p, err := c.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	authID := p.AuthorizationID()
	if authID == "" {
		return nil, &DeclinedError{Message: "payment " + paymentID + " has no authorization to void"}
	}
	var out Authorization
	if err := c.doJSON(ctx, http.MethodPost, "/v1/payments/authorization/"+authID+"/void", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefundPayment refunds a completed payment. Sale-intent payments refund the
// sale sub-resource; authorize-intent payments refund the capture.
func (c *ProClient) RefundPayment(ctx context.Context, paymentID string, amount *Amount) (*Refund, error) {
	p, err := c.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	var path string
	if p.Intent == IntentSale {
		saleID := p.SaleID()
		if saleID == "" {
			return nil, &DeclinedError{Message: "payment " + paymentID + " has no sale to refund"}
		}
		path = "/v1/payments/sale/" + saleID + "/refund"
	} else {
		captureID := p.CaptureID()
		if captureID == "" {
			return nil, &DeclinedError{Message: "payment " + paymentID + " has no capture to refund"}
		}
		path = "/v1/payments/capture/" + captureID + "/refund"
	}
	var out Refund
	if err := c.doJSON(ctx, http.MethodPost, path, RefundRequest{Amount: amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StoreCreditCard vaults a card. The response carries the remote vault id and
// a masked number; the full PAN is never kept locally.
func (c *ProClient) StoreCreditCard(ctx context.Context, card *CreditCard) (*CreditCard, error) {
	var out CreditCard
	if err := c.doJSON(ctx, http.MethodPost, "/v1/vault/credit-cards", card, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCreditCard removes a vaulted card at PayPal.
func (c *ProClient) DeleteCreditCard(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/vault/credit-cards/"+id, nil, nil)
}
