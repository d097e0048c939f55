package memory

import (
	"context"
	"sync"
	"time"

	"github.com/go-phone-auth/internal/domain"
	"github.com/go-phone-auth/internal/pkg/otp"
)

type entry struct {
	v        domain.PendingVerification
	deadline time.Time
}

// CodeStore is an in-process pending-verification store keyed by phone number.
// Expiry is checked on every read; a background sweep drops stale entries.
type CodeStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// Option configures a CodeStore.
type Option func(*CodeStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *CodeStore) { s.now = now }
}

// NewCodeStore creates the store and starts a sweep every sweepEvery.
// A non-positive sweepEvery disables the sweep.
func NewCodeStore(sweepEvery time.Duration, opts ...Option) *CodeStore {
	s := &CodeStore{
		entries: make(map[string]entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if sweepEvery > 0 {
		go s.sweep(sweepEvery)
	}
	return s
}

func (s *CodeStore) Put(_ context.Context, v *domain.PendingVerification, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[v.PhoneNumber] = entry{v: *v, deadline: s.now().Add(ttl)}
	return nil
}

func (s *CodeStore) Get(_ context.Context, phone string) (*domain.PendingVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	v := e.v
	return &v, nil
}

func (s *CodeStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, phone)
	return nil
}

// Consume deletes and returns the entry for phone when code matches.
// A mismatch leaves the entry in place.
func (s *CodeStore) Consume(_ context.Context, phone, code string) (*domain.PendingVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(phone)
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	if !otp.Equal(e.v.Code, code) {
		return nil, domain.ErrCodeMismatch
	}
	delete(s.entries, phone)
	v := e.v
	return &v, nil
}

// Len returns the number of stored entries, expired or not.
func (s *CodeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the background sweep.
func (s *CodeStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

// live must be called with mu held.
func (s *CodeStore) live(phone string) (entry, bool) {
	e, ok := s.entries[phone]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.deadline) {
		delete(s.entries, phone)
		return entry{}, false
	}
	return e, true
}

func (s *CodeStore) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.purge()
		}
	}
}

func (s *CodeStore) purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for phone, e := range s.entries {
		if !now.Before(e.deadline) {
			delete(s.entries, phone)
		}
	}
}
