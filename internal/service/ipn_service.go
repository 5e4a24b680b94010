package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"paypalgw/internal/models"
	"paypalgw/pkg/money"
	"paypalgw/pkg/nvp"
	"paypalgw/pkg/paypal"
)

// Verdict is the outcome of processing one inbound notification.
type Verdict string

const (
	// VerdictProcessed means a state change was applied.
	VerdictProcessed Verdict = "processed"
	// VerdictIgnored means the notification was understood but deliberately
	// not acted on (duplicates, unknown transactions, statuses handled by
	// the synchronous path).
	VerdictIgnored Verdict = "ignored"
	// VerdictRejected means the notification failed authenticity validation.
	VerdictRejected Verdict = "rejected"
)

// Statuses the reconciler acts on itself.
const (
	statusVoided    = "Voided"
	statusPending   = "Pending"
	statusCompleted = "Completed"
	statusRefunded  = "Refunded"
	statusFailed    = "Failed"
)

// recognizedStatuses is the full vocabulary PayPal may send. Statuses outside
// this set are a protocol error, not an ignorable event.
var recognizedStatuses = map[string]bool{
	statusVoided:        true,
	statusPending:       true,
	statusCompleted:     true,
	statusRefunded:      true,
	statusFailed:        true,
	"Processed":         true,
	"Expired":           true,
	"Denied":            true,
	"Reversed":          true,
	"Canceled_Reversal": true,
}

// IPNService reconciles asynchronous notifications against local payment
// records, tolerant of duplicates and out-of-order delivery.
type IPNService struct {
	payments  PaymentStore
	validator *paypal.IPNValidator
	locks     *PaymentLocks
	now       func() time.Time
}

// NewIPNService wires the reconciler. locks must be the same instance the
// synchronous payment service holds, or a notification racing a refund can
// double-apply against one record.
func NewIPNService(payments PaymentStore, validator *paypal.IPNValidator, locks *PaymentLocks) *IPNService {
	return &IPNService{
		payments:  payments,
		validator: validator,
		locks:     locks,
		now:       time.Now,
	}
}

// Process validates and applies one raw notification body. A non-nil error is
// only returned for protocol errors the sender should see (HTTP 400); every
// other outcome, including failed validation, is acknowledged with 200.
func (s *IPNService) Process(ctx context.Context, rawBody []byte) (Verdict, error) {
	if err := s.validator.Validate(ctx, rawBody); err != nil {
		log.Printf("[IPN] validation failed, notification discarded: %v", err)
		return VerdictRejected, nil
	}

	n := nvp.Decode(rawBody)
	txnID := n.Get("txn_id")
	if txnID == "" {
		// subscription and account events carry no transaction
		log.Printf("[IPN] no txn_id, ignoring")
		return VerdictIgnored, nil
	}
	status := n.Get("payment_status")
	if !recognizedStatuses[status] {
		return VerdictRejected, fmt.Errorf("%w: payment_status %q", ErrProtocol, status)
	}

	switch status {
	case statusVoided, statusPending, statusCompleted:
		return s.reconcileAuthorization(n, status, txnID)
	case statusRefunded:
		return s.reconcileRefund(n, txnID)
	case statusFailed:
		// Upstream behavior for Failed is unspecified; log only until the
		// product intent is clarified.
		log.Printf("[IPN] Failed notification for txn=%s left unreconciled", txnID)
		return VerdictIgnored, nil
	default:
		log.Printf("[IPN] status %q for txn=%s ignored, handled by the return flow", status, txnID)
		return VerdictIgnored, nil
	}
}

// reconcileAuthorization handles Voided/Pending/Completed, which correlate by
// auth_id. The authorization must already exist locally; IPNs never originate
// one.
func (s *IPNService) reconcileAuthorization(n *nvp.Values, status, txnID string) (Verdict, error) {
	authID := n.Get("auth_id")
	if authID == "" {
		log.Printf("[IPN] %s for txn=%s without auth_id ignored, handled by the return flow", status, txnID)
		return VerdictIgnored, nil
	}
	p, err := s.payments.GetByRemoteID(authID)
	if err != nil {
		return VerdictIgnored, err
	}
	if p == nil {
		log.Printf("[IPN] %s for unknown auth_id=%s ignored", status, authID)
		return VerdictIgnored, nil
	}

	unlock := s.locks.Lock(p.ID)
	defer unlock()
	p, err = s.payments.GetByID(p.ID)
	if err != nil {
		return VerdictIgnored, err
	}

	if !applyRemoteStatus(p, status) {
		return VerdictIgnored, nil
	}
	if amt, err := money.New(n.Get("mc_gross"), n.Get("mc_currency")); err == nil {
		p.Amount = amt.Value
		p.Currency = amt.Currency
	}
	if p.State == models.StateCaptureCompleted {
		now := s.now()
		p.CapturedAt = &now
	}
	p.RemoteID = txnID
	if err := s.payments.Update(p); err != nil {
		return VerdictIgnored, err
	}
	log.Printf("[IPN] payment %d: %s applied, state=%s remote=%s", p.ID, status, p.State, p.RemoteID)
	return VerdictProcessed, nil
}

// reconcileRefund handles Refunded, which correlates by parent_txn_id and
// accumulates like the synchronous refund. Redelivery of the same
// notification is idempotent once the payment is fully refunded.
func (s *IPNService) reconcileRefund(n *nvp.Values, txnID string) (Verdict, error) {
	parent := n.Get("parent_txn_id")
	if parent == "" {
		log.Printf("[IPN] Refunded txn=%s without parent_txn_id ignored", txnID)
		return VerdictIgnored, nil
	}
	p, err := s.payments.GetByRemoteID(parent)
	if err != nil {
		return VerdictIgnored, err
	}
	if p == nil {
		log.Printf("[IPN] Refunded for unknown parent_txn_id=%s ignored", parent)
		return VerdictIgnored, nil
	}

	unlock := s.locks.Lock(p.ID)
	defer unlock()
	p, err = s.payments.GetByID(p.ID)
	if err != nil {
		return VerdictIgnored, err
	}
	if p.State == models.StateCaptureRefunded {
		log.Printf("[IPN] payment %d already fully refunded, duplicate ignored", p.ID)
		return VerdictIgnored, nil
	}
	if p.State != models.StateCaptureCompleted && p.State != models.StateCapturePartiallyRefunded {
		log.Printf("[IPN] Refunded for payment %d in state %s ignored", p.ID, p.State)
		return VerdictIgnored, nil
	}

	amount, err := money.New(n.Get("mc_gross"), n.Get("mc_currency"))
	if err != nil {
		return VerdictRejected, fmt.Errorf("%w: refund amount: %v", ErrProtocol, err)
	}
	refund := amount.Abs()
	if refund.Currency != p.Currency {
		return VerdictRejected, fmt.Errorf("%w: refund currency %s on %s payment", ErrProtocol, refund.Currency, p.Currency)
	}

	p.RefundedAmount = p.RefundedAmount.Add(refund.Value)
	if p.RefundedAmount.Cmp(p.Amount) >= 0 {
		p.State = models.StateCaptureRefunded
	} else {
		p.State = models.StateCapturePartiallyRefunded
	}
	p.RemoteState = statusRefunded
	p.Currency = refund.Currency
	if err := s.payments.Update(p); err != nil {
		return VerdictIgnored, err
	}
	log.Printf("[IPN] payment %d: refund %s applied, state=%s refunded=%s", p.ID, refund.Format(), p.State, p.RefundedAmount.String())
	return VerdictProcessed, nil
}
