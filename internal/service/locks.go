package service

import "sync"

// PaymentLocks serializes the read-check-transition-write sequence per local
// payment id. PayPal delivers duplicate IPNs, and a notification racing the
// synchronous path (or another duplicate) must not double-apply a refund or
// double-transition a state. One instance is shared by every service that
// mutates payments so both paths contend on the same lock.
type PaymentLocks struct {
	mu    sync.Mutex
	locks map[uint]*paymentLock
}

type paymentLock struct {
	mu   sync.Mutex
	refs int
}

func NewPaymentLocks() *PaymentLocks {
	return &PaymentLocks{locks: make(map[uint]*paymentLock)}
}

// Lock acquires the mutex for a payment id and returns its unlock func.
// Entries are reference counted and dropped from the map once the last
// holder releases, so the map does not grow with payment history.
func (l *PaymentLocks) Lock(id uint) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &paymentLock{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
