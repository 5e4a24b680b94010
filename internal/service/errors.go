package service

import "errors"

// ErrInvalidState means a payment-state precondition failed. Surfaced before
// any network call is made.
var ErrInvalidState = errors.New("payment: invalid state")

// ErrInvalidRequest means caller-level misuse, e.g. a refund amount above the
// remaining balance. Also surfaced before any network call.
var ErrInvalidRequest = errors.New("payment: invalid request")

// ErrProtocol marks an inbound notification that is malformed in a way the
// sender should know about (unrecognized payment_status), as opposed to one
// that is merely ignored.
var ErrProtocol = errors.New("ipn: unexpected notification")
