package paypal

import (
	"errors"
	"fmt"

	"paypalgw/pkg/nvp"
)

// ErrGatewayUnreachable marks transport-level failures (timeouts, connection
// errors). Callers may retry at their discretion; this package never does.
var ErrGatewayUnreachable = errors.New("paypal: gateway unreachable")

// ErrValidationFailed marks an IPN whose authenticity round-trip did not
// come back VERIFIED.
var ErrValidationFailed = errors.New("paypal: ipn validation failed")

// DeclinedError is a failure reported by PayPal itself (ACK=Failure on NVP,
// error response or state=failed on REST). Not retryable.
type DeclinedError struct {
	Code    string
	Message string
}

func (e *DeclinedError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("paypal: declined (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("paypal: declined: %s", e.Message)
}

// NVP ACK values. The NVP client returns responses verbatim; callers check
// these explicitly.
const (
	AckSuccess            = "Success"
	AckSuccessWithWarning = "SuccessWithWarning"
	AckFailure            = "Failure"
)

// IsFailure reports whether an NVP response signals failure. Anything other
// than Success or SuccessWithWarning counts, including FailureWithWarning
// and empty responses.
func IsFailure(resp *nvp.Values) bool {
	ack := resp.Get("ACK")
	return ack != AckSuccess && ack != AckSuccessWithWarning
}

// Declined builds a DeclinedError from a failed NVP response.
func Declined(resp *nvp.Values) *DeclinedError {
	return &DeclinedError{
		Code:    resp.Get("L_ERRORCODE0"),
		Message: resp.Get("L_LONGMESSAGE0"),
	}
}
