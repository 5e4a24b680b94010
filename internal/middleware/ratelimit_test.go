package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterWindowRollover(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r := &RateLimiter{
		windows: make(map[string]*window),
		limit:   2,
		span:    time.Minute,
		now:     func() time.Time { return now },
	}

	if ok, _ := r.Allow("1.2.3.4"); !ok {
		t.Fatal("first request blocked")
	}
	if ok, _ := r.Allow("1.2.3.4"); !ok {
		t.Fatal("second request blocked")
	}
	ok, wait := r.Allow("1.2.3.4")
	if ok {
		t.Fatal("third request allowed over limit")
	}
	if wait <= 0 || wait > time.Minute {
		t.Errorf("wait = %s", wait)
	}

	// other keys are independent
	if ok, _ := r.Allow("5.6.7.8"); !ok {
		t.Error("unrelated key blocked")
	}

	now = now.Add(time.Minute)
	if ok, _ := r.Allow("1.2.3.4"); !ok {
		t.Error("request blocked after window rolled over")
	}
}

func TestRateLimiterStopEndsSweeper(t *testing.T) {
	r := NewRateLimiter(1, time.Minute)
	r.Stop()
	r.Stop() // idempotent

	// the limiter still answers after the sweeper is gone
	if ok, _ := r.Allow("1.2.3.4"); !ok {
		t.Error("request blocked on a stopped limiter")
	}
}
