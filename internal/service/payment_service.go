package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"paypalgw/internal/models"
	"paypalgw/pkg/money"
	"paypalgw/pkg/paypal"
)

// PaymentService drives the synchronous payment lifecycle: capture, void and
// refund against either gateway, plus PaymentsPro payment creation and card
// vaulting. Every state mutation holds the per-payment lock.
type PaymentService struct {
	payments PaymentStore
	methods  PaymentMethodStore
	ec       *paypal.NVPClient
	pro      *paypal.ProClient
	locks    *PaymentLocks
	now      func() time.Time
}

// NewPaymentService wires the synchronous lifecycle operations. locks must be
// the same instance handed to the IPN service; the two paths mutate the same
// records.
func NewPaymentService(payments PaymentStore, methods PaymentMethodStore, ec *paypal.NVPClient, pro *paypal.ProClient, locks *PaymentLocks) *PaymentService {
	return &PaymentService{
		payments: payments,
		methods:  methods,
		ec:       ec,
		pro:      pro,
		locks:    locks,
		now:      time.Now,
	}
}

// Capture collects funds from an authorization. Precondition: state is
// exactly authorization and the 29-day window has not passed. The nil amount
// captures the full authorized amount.
func (s *PaymentService) Capture(ctx context.Context, paymentID uint, amount *money.Amount) (*models.Payment, error) {
	unlock := s.locks.Lock(paymentID)
	defer unlock()

	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if p.State != models.StateAuthorization {
		return nil, fmt.Errorf("%w: capture requires authorization, payment %d is %s", ErrInvalidState, p.ID, p.State)
	}
	if p.AuthorizationExpired(s.now()) {
		p.State = models.StateAuthorizationExpired
		if err := s.payments.Update(p); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: authorization for payment %d expired", ErrInvalidState, p.ID)
	}
	amt := p.AmountMoney()
	if amount != nil {
		if amount.Currency != p.Currency {
			return nil, fmt.Errorf("%w: capture currency %s does not match payment %s", ErrInvalidRequest, amount.Currency, p.Currency)
		}
		amt = *amount
	}

	now := s.now()
	switch p.Gateway {
	case models.GatewayExpressCheckout:
		resp, err := s.ec.DoCapture(ctx, p.RemoteID, amt)
		if err != nil {
			return nil, err
		}
		if paypal.IsFailure(resp) {
			return nil, paypal.Declined(resp)
		}
		p.RemoteID = resp.Get("TRANSACTIONID")
		p.RemoteState = resp.Get("PAYMENTSTATUS")
	case models.GatewayPaymentsPro:
		captured, err := s.pro.CapturePayment(ctx, p.RemoteID, paypal.Amount{Total: amt.Format(), Currency: amt.Currency})
		if err != nil {
			return nil, err
		}
		p.RemoteState = captured.State
	default:
		return nil, fmt.Errorf("%w: gateway %s cannot capture", ErrInvalidRequest, p.Gateway)
	}

	p.State = models.StateCaptureCompleted
	p.Amount = amt.Value
	p.CapturedAt = &now
	if err := s.payments.Update(p); err != nil {
		return nil, err
	}
	log.Printf("[PAYMENT] captured payment %d (%s %s) via %s", p.ID, amt.Format(), p.Currency, p.Gateway)
	return p, nil
}

// Void cancels an authorization without collecting funds.
func (s *PaymentService) Void(ctx context.Context, paymentID uint) (*models.Payment, error) {
	unlock := s.locks.Lock(paymentID)
	defer unlock()

	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if p.State != models.StateAuthorization {
		return nil, fmt.Errorf("%w: void requires authorization, payment %d is %s", ErrInvalidState, p.ID, p.State)
	}

	switch p.Gateway {
	case models.GatewayExpressCheckout:
		resp, err := s.ec.DoVoid(ctx, p.RemoteID)
		if err != nil {
			return nil, err
		}
		if paypal.IsFailure(resp) {
			return nil, paypal.Declined(resp)
		}
		p.RemoteState = "Voided"
	case models.GatewayPaymentsPro:
		auth, err := s.pro.VoidPayment(ctx, p.RemoteID)
		if err != nil {
			return nil, err
		}
		p.RemoteState = auth.State
	default:
		return nil, fmt.Errorf("%w: gateway %s cannot void", ErrInvalidRequest, p.Gateway)
	}

	p.State = models.StateAuthorizationVoided
	if err := s.payments.Update(p); err != nil {
		return nil, err
	}
	log.Printf("[PAYMENT] voided payment %d via %s", p.ID, p.Gateway)
	return p, nil
}

// Refund pays back part or all of a captured payment. The refund is partial
// or full depending on the cumulative refunded amount after this one.
func (s *PaymentService) Refund(ctx context.Context, paymentID uint, amount money.Amount) (*models.Payment, error) {
	unlock := s.locks.Lock(paymentID)
	defer unlock()

	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	switch p.State {
	case models.StateCaptureCompleted, models.StateCapturePartiallyRefunded, models.StateCaptureRefunded:
		// captured family; a fully refunded payment falls through to the
		// balance check and fails there
	default:
		return nil, fmt.Errorf("%w: refund requires a captured payment, payment %d is %s", ErrInvalidState, p.ID, p.State)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be positive", ErrInvalidRequest)
	}
	over, err := amount.GreaterThan(p.Balance())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if over {
		return nil, fmt.Errorf("%w: refund %s exceeds balance %s", ErrInvalidRequest, amount.Format(), p.Balance().Format())
	}
	full := amount.Equal(p.Balance())

	switch p.Gateway {
	case models.GatewayExpressCheckout:
		resp, err := s.ec.RefundTransaction(ctx, p.RemoteID, amount, full)
		if err != nil {
			return nil, err
		}
		if paypal.IsFailure(resp) {
			return nil, paypal.Declined(resp)
		}
	case models.GatewayPaymentsPro:
		wire := paypal.Amount{Total: amount.Format(), Currency: amount.Currency}
		if _, err := s.pro.RefundPayment(ctx, p.RemoteID, &wire); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: gateway %s cannot refund", ErrInvalidRequest, p.Gateway)
	}

	p.RefundedAmount = p.RefundedAmount.Add(amount.Value)
	if p.RefundedAmount.Equal(p.Amount) {
		p.State = models.StateCaptureRefunded
	} else {
		p.State = models.StateCapturePartiallyRefunded
	}
	if err := s.payments.Update(p); err != nil {
		return nil, err
	}
	log.Printf("[PAYMENT] refunded %s %s on payment %d, state %s", amount.Format(), p.Currency, p.ID, p.State)
	return p, nil
}

// CreateProPaymentRequest is a direct card (or vaulted card) charge.
type CreateProPaymentRequest struct {
	Order *models.Order
	// Card is charged directly when set; PaymentMethodID charges a vaulted card.
	Card            *paypal.CreditCard
	PaymentMethodID uint
	Capture         bool
}

// CreateProPayment charges via PaymentsPro with sale or authorize intent and
// creates the local payment record.
func (s *PaymentService) CreateProPayment(ctx context.Context, r CreateProPaymentRequest) (*models.Payment, error) {
	total, err := r.Order.GrandTotal()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: order %s total is not positive", ErrInvalidRequest, r.Order.ID)
	}

	var instrument paypal.FundingInstrument
	switch {
	case r.Card != nil:
		instrument.CreditCard = r.Card
	case r.PaymentMethodID != 0:
		m, err := s.methods.GetByID(r.PaymentMethodID)
		if err != nil {
			return nil, fmt.Errorf("%w: payment method %d: %v", ErrInvalidRequest, r.PaymentMethodID, err)
		}
		instrument.CreditCardToken = &paypal.CreditCardToken{CreditCardID: m.RemoteID}
	default:
		return nil, fmt.Errorf("%w: a card or a vaulted payment method is required", ErrInvalidRequest)
	}

	intent := paypal.IntentAuthorize
	if r.Capture {
		intent = paypal.IntentSale
	}
	created, err := s.pro.CreatePayment(ctx, &paypal.Payment{
		Intent: intent,
		Payer: paypal.Payer{
			PaymentMethod:      "credit_card",
			FundingInstruments: []paypal.FundingInstrument{instrument},
		},
		Transactions: []paypal.Transaction{{
			Amount:        paypal.Amount{Total: total.Format(), Currency: total.Currency},
			InvoiceNumber: r.Order.ID,
		}},
	})
	if err != nil {
		return nil, err
	}
	if created.State == paypal.StateFailed {
		return nil, &paypal.DeclinedError{Code: created.FailureReason, Message: "payment state failed"}
	}

	now := s.now()
	p := &models.Payment{
		LocalRef:    uuid.NewString(),
		OrderID:     r.Order.ID,
		Gateway:     models.GatewayPaymentsPro,
		Amount:      total.Value,
		Currency:    total.Currency,
		State:       models.StateNew,
		RemoteID:    created.ID,
		RemoteState: created.State,
		Intent:      intent,
	}
	if r.Capture {
		p.State = models.StateCaptureCompleted
		p.CapturedAt = &now
	} else {
		p.State = models.StateAuthorization
		p.AuthorizedAt = &now
		exp := now.Add(models.AuthorizationWindow)
		p.ExpiresAt = &exp
	}
	if err := s.payments.Create(p); err != nil {
		return nil, err
	}
	log.Printf("[PAYMENT] created pro payment %d order=%s intent=%s remote=%s", p.ID, p.OrderID, intent, p.RemoteID)
	return p, nil
}

// CreatePaymentMethod vaults a card at PayPal and stores the remote id plus
// masked digits locally.
func (s *PaymentService) CreatePaymentMethod(ctx context.Context, card *paypal.CreditCard, ownerRef string) (*models.PaymentMethod, error) {
	card.ExternalCustomerID = ownerRef
	stored, err := s.pro.StoreCreditCard(ctx, card)
	if err != nil {
		return nil, err
	}
	m := &models.PaymentMethod{
		RemoteID:    stored.ID,
		CardType:    stored.Type,
		Last4:       last4(stored.Number),
		ExpireMonth: stored.ExpireMonth,
		ExpireYear:  stored.ExpireYear,
		OwnerRef:    ownerRef,
	}
	if err := s.methods.Create(m); err != nil {
		return nil, err
	}
	log.Printf("[PAYMENT] vaulted card %s ending %s for %s", m.RemoteID, m.Last4, ownerRef)
	return m, nil
}

// DeletePaymentMethod removes the card remotely first, then locally.
func (s *PaymentService) DeletePaymentMethod(ctx context.Context, id uint) error {
	m, err := s.methods.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.pro.DeleteCreditCard(ctx, m.RemoteID); err != nil {
		return err
	}
	return s.methods.Delete(m)
}

// last4 trims a masked PAN ("xxxxxxxxxxx1111") down to its last four digits.
func last4(masked string) string {
	if len(masked) <= 4 {
		return masked
	}
	return masked[len(masked)-4:]
}
