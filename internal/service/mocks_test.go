package service

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"paypalgw/internal/models"
	"paypalgw/pkg/nvp"
)

// fakePayments is an in-memory PaymentStore. Records are copied on the way
// in and out, matching repository semantics.
type fakePayments struct {
	mu   sync.Mutex
	seq  uint
	byID map[uint]*models.Payment
}

func newFakePayments() *fakePayments {
	return &fakePayments{byID: make(map[uint]*models.Payment)}
}

func (f *fakePayments) Create(p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePayments) GetByID(id uint) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("payment %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) GetByRemoteID(remoteID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.RemoteID == remoteID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePayments) Update(p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

// fakeSessions is an in-memory SessionStore.
type fakeSessions struct {
	mu      sync.Mutex
	seq     uint
	byOrder map[string]*models.CheckoutSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byOrder: make(map[string]*models.CheckoutSession)}
}

func (f *fakeSessions) Create(s *models.CheckoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	s.ID = f.seq
	cp := *s
	f.byOrder[s.OrderID] = &cp
	return nil
}

func (f *fakeSessions) GetByOrderID(orderID string) (*models.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessions) Update(s *models.CheckoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.byOrder[s.OrderID] = &cp
	return nil
}

func (f *fakeSessions) Delete(s *models.CheckoutSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byOrder, s.OrderID)
	return nil
}

// fakeMethods is an in-memory PaymentMethodStore.
type fakeMethods struct {
	mu   sync.Mutex
	seq  uint
	byID map[uint]*models.PaymentMethod
}

func newFakeMethods() *fakeMethods {
	return &fakeMethods{byID: make(map[uint]*models.PaymentMethod)}
}

func (f *fakeMethods) Create(m *models.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	m.ID = f.seq
	cp := *m
	f.byID[m.ID] = &cp
	return nil
}

func (f *fakeMethods) GetByID(id uint) (*models.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("payment method %d not found", id)
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMethods) Delete(m *models.PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, m.ID)
	return nil
}

// nvpServer is a fake NVP endpoint answering per-METHOD canned responses and
// counting calls.
type nvpServer struct {
	mu        sync.Mutex
	responses map[string]string // METHOD -> encoded response body
	requests  []*nvp.Values
	srv       *httptest.Server
}

func newNVPServer() *nvpServer {
	s := &nvpServer{responses: make(map[string]string)}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req := nvp.Decode(body)
		s.mu.Lock()
		s.requests = append(s.requests, req)
		resp := s.responses[req.Get("METHOD")]
		s.mu.Unlock()
		if resp == "" {
			resp = "ACK=Failure&L_ERRORCODE0=10002&L_LONGMESSAGE0=Unexpected method"
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(resp))
	}))
	return s
}

func (s *nvpServer) respond(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[method] = body
}

func (s *nvpServer) calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Get("METHOD") == method {
			n++
		}
	}
	return n
}

func (s *nvpServer) lastRequest() *nvp.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nvp.New()
	}
	return s.requests[len(s.requests)-1]
}

func (s *nvpServer) Close() { s.srv.Close() }
