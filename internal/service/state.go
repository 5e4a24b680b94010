package service

import (
	"log"

	"paypalgw/internal/models"
)

// legalTransitions is the full set of allowed payment state changes. Every
// mutation, synchronous or IPN-driven, goes through canTransition.
var legalTransitions = map[string][]string{
	models.StateNew: {
		models.StateAuthorization,
		models.StateCaptureCompleted,
	},
	models.StateAuthorization: {
		models.StateAuthorizationVoided,
		models.StateAuthorizationExpired,
		models.StateCaptureCompleted,
	},
	models.StateCaptureCompleted: {
		models.StateCaptureRefunded,
		models.StateCapturePartiallyRefunded,
	},
	models.StateCapturePartiallyRefunded: {
		models.StateCapturePartiallyRefunded,
		models.StateCaptureRefunded,
	},
}

func canTransition(from, to string) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// remoteStatusToState maps PayPal's status strings (Express Checkout
// responses and IPNs share the vocabulary) onto local states.
func remoteStatusToState(status string) (string, bool) {
	switch status {
	case "Voided":
		return models.StateAuthorizationVoided, true
	case "Pending":
		return models.StateAuthorization, true
	case "Completed", "Processed":
		return models.StateCaptureCompleted, true
	case "Refunded":
		return models.StateCaptureRefunded, true
	case "Partially-Refunded":
		return models.StateCapturePartiallyRefunded, true
	case "Expired":
		return models.StateAuthorizationExpired, true
	}
	return "", false
}

// applyRemoteStatus transitions p according to a gateway status string.
// Unrecognized statuses leave the state untouched but are logged as
// unhandled, never treated as success. Returns whether the state changed.
func applyRemoteStatus(p *models.Payment, status string) bool {
	target, ok := remoteStatusToState(status)
	if !ok {
		log.Printf("[STATE] payment %d: unhandled remote status %q, state left at %s", p.ID, status, p.State)
		return false
	}
	if !canTransition(p.State, target) {
		log.Printf("[STATE] payment %d: illegal transition %s -> %s (status %q), ignored", p.ID, p.State, target, status)
		return false
	}
	p.State = target
	p.RemoteState = status
	return true
}
