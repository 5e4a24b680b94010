package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"paypalgw/internal/models"
	"paypalgw/pkg/money"
	"paypalgw/pkg/paypal"
)

func newTestPaymentService(t *testing.T, srv *nvpServer) (*PaymentService, *fakePayments) {
	t.Helper()
	payments := newFakePayments()
	ec := paypal.NewNVPClient(srv.srv.URL, paypal.NVPConfig{User: "u", Pwd: "p", Signature: "s", TestMode: true})
	svc := NewPaymentService(payments, newFakeMethods(), ec, nil, NewPaymentLocks())
	return svc, payments
}

func seedPayment(t *testing.T, payments *fakePayments, state, amount string) *models.Payment {
	t.Helper()
	now := time.Now()
	p := &models.Payment{
		OrderID:  "order-1",
		Gateway:  models.GatewayExpressCheckout,
		Amount:   decimal.RequireFromString(amount),
		Currency: "USD",
		State:    state,
		RemoteID: "AUTH-1",
	}
	if state == models.StateAuthorization {
		p.AuthorizedAt = &now
	}
	if err := payments.Create(p); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return p
}

func TestCaptureRequiresAuthorizationState(t *testing.T) {
	srv := newNVPServer()
	defer srv.Close()
	svc, payments := newTestPaymentService(t, srv)

	for _, state := range []string{
		models.StateNew,
		models.StateCaptureCompleted,
		models.StateAuthorizationVoided,
		models.StateCaptureRefunded,
	} {
		t.Run(state, func(t *testing.T) {
			p := seedPayment(t, payments, state, "50.00")
			_, err := svc.Capture(context.Background(), p.ID, nil)
			if !errors.Is(err, ErrInvalidState) {
				t.Fatalf("expected ErrInvalidState, got %v", err)
			}
		})
	}
	if n := srv.calls("DoCapture"); n != 0 {
		t.Errorf("precondition failures must not reach the gateway, saw %d calls", n)
	}
}

func TestCaptureFromAuthorization(t *testing.T) {
	srv := newNVPServer()
	defer srv.Close()
	srv.respond("DoCapture", "ACK=Success&TRANSACTIONID=T2&PAYMENTSTATUS=Completed")
	svc, payments := newTestPaymentService(t, srv)
	p := seedPayment(t, payments, models.StateAuthorization, "50.00")

	got, err := svc.Capture(context.Background(), p.ID, nil)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if got.State != models.StateCaptureCompleted {
		t.Errorf("state = %s, want capture_completed", got.State)
	}
	if got.RemoteID != "T2" {
		t.Errorf("remote id = %s, want T2", got.RemoteID)
	}
	if got.CapturedAt == nil {
		t.Error("captured_at not stamped")
	}
	req := srv.lastRequest()
	if req.Get("AUTHORIZATIONID") != "AUTH-1" || req.Get("AMT") != "50.00" {
		t.Errorf("unexpected capture request: %v", req.Keys())
	}
}

func TestCaptureExpiredAuthorization(t *testing.T) {
	srv := newNVPServer()
	defer srv.Close()
	svc, payments := newTestPaymentService(t, srv)
	p := seedPayment(t, payments, models.StateAuthorization, "50.00")
	old := time.Now().Add(-30 * 24 * time.Hour)
	p.AuthorizedAt = &old
	_ = payments.Update(p)

	_, err := svc.Capture(context.Background(), p.ID, nil)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	stored, _ := payments.GetByID(p.ID)
	if stored.State != models.StateAuthorizationExpired {
		t.Errorf("state = %s, want authorization_expired", stored.State)
	}
	if n := srv.calls("DoCapture"); n != 0 {
		t.Errorf("expired capture must not reach the gateway, saw %d calls", n)
	}
}

func TestVoid(t *testing.T) {
	srv := newNVPServer()
	defer srv.Close()
	srv.respond("DoVoid", "ACK=Success&AUTHORIZATIONID=AUTH-1")
	svc, payments := newTestPaymentService(t, srv)

	p := seedPayment(t, payments, models.StateAuthorization, "50.00")
	got, err := svc.Void(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("Void: %v", err)
	}
	if got.State != models.StateAuthorizationVoided {
		t.Errorf("state = %s, want authorization_voided", got.State)
	}

	captured := seedPayment(t, payments, models.StateCaptureCompleted, "50.00")
	if _, err := svc.Void(context.Background(), captured.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState voiding a captured payment, got %v", err)
	}
}

func TestRefundPartialThenFullThenRejected(t *testing.T) {
	srv := newNVPServer()
	defer srv.Close()
	srv.respond("RefundTransaction", "ACK=Success&REFUNDTRANSACTIONID=R1")
	svc, payments := newTestPaymentService(t, srv)
	p := seedPayment(t, payments, models.StateCaptureCompleted, "100.00")

	got, err := svc.Refund(context.Background(), p.ID, money.MustNew("40.00", "USD"))
	if err != nil {
		t.Fatalf("first refund: %v", err)
	}
	if got.State != models.StateCapturePartiallyRefunded {
		t.Errorf("state = %s, want capture_partially_refunded", got.State)
	}
	if got.RefundedAmount.String() != "40" {
		t.Errorf("refunded = %s, want 40", got.RefundedAmount.String())
	}
	req := srv.lastRequest()
	if req.Get("REFUNDTYPE") != "Partial" || req.Get("AMT") != "40.00" {
		t.Errorf("partial refund request wrong: REFUNDTYPE=%s AMT=%s", req.Get("REFUNDTYPE"), req.Get("AMT"))
	}

	got, err = svc.Refund(context.Background(), p.ID, money.MustNew("60.00", "USD"))
	if err != nil {
		t.Fatalf("second refund: %v", err)
	}
	if got.State != models.StateCaptureRefunded {
		t.Errorf("state = %s, want capture_refunded", got.State)
	}
	if got.RefundedAmount.String() != "100" {
		t.Errorf("refunded = %s, want 100", got.RefundedAmount.String())
	}
	if srv.lastRequest().Get("REFUNDTYPE") != "Full" {
		t.Errorf("final refund should be Full, got %s", srv.lastRequest().Get("REFUNDTYPE"))
	}

	if _, err := svc.Refund(context.Background(), p.ID, money.MustNew("0.01", "USD")); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("refund after full refund: expected ErrInvalidRequest, got %v", err)
	}
	if n := srv.calls("RefundTransaction"); n != 2 {
		t.Errorf("expected exactly 2 gateway refunds, saw %d", n)
	}
}

func TestRefundExceedsBalance(t *testing.T) {
	srv := newNVPServer()
	defer srv.Close()
	svc, payments := newTestPaymentService(t, srv)
	p := seedPayment(t, payments, models.StateCaptureCompleted, "100.00")
	p.RefundedAmount = decimal.RequireFromString("70.00")
	p.State = models.StateCapturePartiallyRefunded
	_ = payments.Update(p)

	_, err := svc.Refund(context.Background(), p.ID, money.MustNew("30.01", "USD"))
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if n := srv.calls("RefundTransaction"); n != 0 {
		t.Errorf("over-balance refund must not reach the gateway, saw %d calls", n)
	}

	// exactly the balance is fine
	srv.respond("RefundTransaction", "ACK=Success&REFUNDTRANSACTIONID=R9")
	got, err := svc.Refund(context.Background(), p.ID, money.MustNew("30.00", "USD"))
	if err != nil {
		t.Fatalf("balance refund: %v", err)
	}
	if got.State != models.StateCaptureRefunded {
		t.Errorf("state = %s, want capture_refunded", got.State)
	}
}

func TestRefundDeclinedByGateway(t *testing.T) {
	srv := newNVPServer()
	defer srv.Close()
	srv.respond("RefundTransaction", "ACK=Failure&L_ERRORCODE0=10009&L_LONGMESSAGE0=You can not refund this type of transaction")
	svc, payments := newTestPaymentService(t, srv)
	p := seedPayment(t, payments, models.StateCaptureCompleted, "100.00")

	_, err := svc.Refund(context.Background(), p.ID, money.MustNew("10.00", "USD"))
	var declined *paypal.DeclinedError
	if !errors.As(err, &declined) {
		t.Fatalf("expected DeclinedError, got %v", err)
	}
	if declined.Code != "10009" {
		t.Errorf("code = %s, want 10009", declined.Code)
	}
	stored, _ := payments.GetByID(p.ID)
	if stored.State != models.StateCaptureCompleted || !stored.RefundedAmount.IsZero() {
		t.Errorf("declined refund must not mutate the record: state=%s refunded=%s", stored.State, stored.RefundedAmount)
	}
}
