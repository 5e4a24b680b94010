package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"

	"paypalgw/internal/models"
	"paypalgw/pkg/money"
	"paypalgw/pkg/paypal"
)

// CheckoutConfig carries the merchant-facing checkout settings.
type CheckoutConfig struct {
	// Capture true finalizes as a sale, false as an authorization.
	Capture bool
	// SendShippingAddress transmits the order's shipping profile when the
	// order has exactly one.
	SendShippingAddress bool
	ReturnURL           string
	CancelURL           string
	NotifyURL           string
}

// CheckoutService drives the redirect flows: Express Checkout initiate /
// return / cancel, and the Standard return.
type CheckoutService struct {
	payments PaymentStore
	sessions SessionStore
	ec       *paypal.NVPClient
	standard *paypal.StandardClient
	cfg      CheckoutConfig
	now      func() time.Time
}

func NewCheckoutService(payments PaymentStore, sessions SessionStore, ec *paypal.NVPClient, standard *paypal.StandardClient, cfg CheckoutConfig) *CheckoutService {
	return &CheckoutService{
		payments: payments,
		sessions: sessions,
		ec:       ec,
		standard: standard,
		cfg:      cfg,
		now:      time.Now,
	}
}

// InitiateExpressCheckout builds the order breakdown, calls
// SetExpressCheckout and stores the session. Returns the buyer redirect URL.
func (s *CheckoutService) InitiateExpressCheckout(ctx context.Context, order *models.Order) (string, error) {
	breakdown, addr, err := BuildBreakdown(order, s.cfg.SendShippingAddress)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !breakdown.Total.IsPositive() {
		return "", fmt.Errorf("%w: order %s total is not positive", ErrInvalidRequest, order.ID)
	}

	resp, err := s.ec.SetExpressCheckout(ctx, paypal.SetExpressCheckoutRequest{
		Breakdown:       breakdown,
		Capture:         s.cfg.Capture,
		OrderID:         order.ID,
		ReturnURL:       s.cfg.ReturnURL,
		CancelURL:       s.cfg.CancelURL,
		NotifyURL:       s.cfg.NotifyURL,
		ShippingAddress: addr,
	})
	if err != nil {
		return "", err
	}
	if paypal.IsFailure(resp) {
		return "", paypal.Declined(resp)
	}
	token := resp.Get("TOKEN")
	if token == "" {
		return "", &paypal.DeclinedError{Message: "SetExpressCheckout returned no token"}
	}

	sess := &models.CheckoutSession{
		OrderID:  order.ID,
		Flow:     models.FlowExpressCheckout,
		Token:    token,
		Capture:  s.cfg.Capture,
		Amount:   breakdown.Total.Value,
		Currency: breakdown.Total.Currency,
	}
	if err := s.sessions.Create(sess); err != nil {
		return "", err
	}
	log.Printf("[CHECKOUT] order %s: ec session token=%s capture=%t", order.ID, token, s.cfg.Capture)
	return s.ec.RedirectURL(token), nil
}

// OnExpressReturn finalizes a checkout the buyer approved at PayPal. It uses
// the stored session token, never request query parameters. The resulting
// payment lands in authorization or capture_completed depending on what
// PayPal reports.
func (s *CheckoutService) OnExpressReturn(ctx context.Context, orderID string) (*models.Payment, error) {
	sess, err := s.sessions.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Flow != models.FlowExpressCheckout {
		return nil, fmt.Errorf("%w: order %s has no express checkout session", ErrInvalidRequest, orderID)
	}

	details, err := s.ec.GetExpressCheckoutDetails(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	if paypal.IsFailure(details) {
		return nil, paypal.Declined(details)
	}
	payerID := details.Get("PAYERID")
	if payerID == "" {
		return nil, fmt.Errorf("%w: buyer has not approved token %s", ErrInvalidRequest, sess.Token)
	}
	sess.PayerID = payerID
	if err := s.sessions.Update(sess); err != nil {
		return nil, err
	}

	amount := money.FromDecimal(sess.Amount, sess.Currency)
	resp, err := s.ec.DoExpressCheckoutPayment(ctx, paypal.DoExpressCheckoutPaymentRequest{
		Token:   sess.Token,
		PayerID: payerID,
		Amount:  amount,
		Capture: sess.Capture,
	})
	if err != nil {
		return nil, err
	}
	if paypal.IsFailure(resp) {
		return nil, paypal.Declined(resp)
	}

	status := resp.Get("PAYMENTINFO_0_PAYMENTSTATUS")
	now := s.now()
	p := &models.Payment{
		LocalRef: uuid.NewString(),
		OrderID:  orderID,
		Gateway:  models.GatewayExpressCheckout,
		Amount:   sess.Amount,
		Currency: sess.Currency,
		State:    models.StateNew,
		RemoteID: resp.Get("PAYMENTINFO_0_TRANSACTIONID"),
		Intent:   models.IntentSale,
	}
	if !sess.Capture {
		p.Intent = models.IntentAuthorize
	}
	if applyRemoteStatus(p, status) {
		switch p.State {
		case models.StateAuthorization:
			p.AuthorizedAt = &now
			exp := now.Add(models.AuthorizationWindow)
			p.ExpiresAt = &exp
		case models.StateCaptureCompleted:
			p.CapturedAt = &now
		}
	}
	if err := s.payments.Create(p); err != nil {
		return nil, err
	}
	if err := s.sessions.Delete(sess); err != nil {
		return nil, err
	}
	log.Printf("[CHECKOUT] order %s: payment %d finalized state=%s remote=%s", orderID, p.ID, p.State, p.RemoteID)
	return p, nil
}

// OnExpressCancel drops the session for an abandoned checkout.
func (s *CheckoutService) OnExpressCancel(orderID string) error {
	sess, err := s.sessions.GetByOrderID(orderID)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	log.Printf("[CHECKOUT] order %s: ec session cancelled", orderID)
	return s.sessions.Delete(sess)
}

// StandardRedirectURL builds the Website Payments Standard cart redirect.
func (s *CheckoutService) StandardRedirectURL(order *models.Order) (string, error) {
	breakdown, _, err := BuildBreakdown(order, false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.standard.RedirectURL(paypal.RedirectRequest{
		Breakdown: breakdown,
		OrderID:   order.ID,
		ReturnURL: s.cfg.ReturnURL,
		CancelURL: s.cfg.CancelURL,
		NotifyURL: s.cfg.NotifyURL,
	}), nil
}

// OnStandardReturn records the payment from the browser's return POST.
// Standard has no API to call back, so txn_id and payment_status are read
// directly from the posted fields. If the IPN for the same transaction
// already created the payment, that record is returned unchanged.
func (s *CheckoutService) OnStandardReturn(ctx context.Context, orderID string, form url.Values) (*models.Payment, error) {
	ret := paypal.ParseReturn(form)
	if ret.TxnID == "" {
		return nil, fmt.Errorf("%w: standard return without txn_id", ErrInvalidRequest)
	}
	if existing, err := s.payments.GetByRemoteID(ret.TxnID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	amount, err := money.New(ret.Gross, ret.Currency)
	if err != nil {
		return nil, fmt.Errorf("%w: standard return amount: %v", ErrInvalidRequest, err)
	}
	now := s.now()
	p := &models.Payment{
		LocalRef: uuid.NewString(),
		OrderID:  orderID,
		Gateway:  models.GatewayStandard,
		Amount:   amount.Value,
		Currency: amount.Currency,
		State:    models.StateNew,
		RemoteID: ret.TxnID,
		Intent:   models.IntentSale,
	}
	if applyRemoteStatus(p, ret.PaymentStatus) {
		switch p.State {
		case models.StateAuthorization:
			p.AuthorizedAt = &now
			exp := now.Add(models.AuthorizationWindow)
			p.ExpiresAt = &exp
		case models.StateCaptureCompleted:
			p.CapturedAt = &now
		}
	}
	if err := s.payments.Create(p); err != nil {
		return nil, err
	}
	log.Printf("[CHECKOUT] order %s: standard payment %d state=%s remote=%s", orderID, p.ID, p.State, p.RemoteID)
	return p, nil
}
