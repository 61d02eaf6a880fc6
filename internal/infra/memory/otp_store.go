package memory

import (
	"context"
	"sync"
	"time"

	"matha-service/internal/app"
	"matha-service/internal/domain"
)

// OTPStore keeps issued codes in process, honouring the TTL on read.
type OTPStore struct {
	mu      sync.Mutex
	clock   func() time.Time
	records map[string]otpEntry
}

type otpEntry struct {
	record    app.OTPRecord
	expiresAt time.Time
}

func NewOTPStore() *OTPStore {
	return NewOTPStoreWithClock(time.Now)
}

// NewOTPStoreWithClock is test-only for deterministic expiry.
func NewOTPStoreWithClock(clock func() time.Time) *OTPStore {
	return &OTPStore{clock: clock, records: make(map[string]otpEntry)}
}

func (s *OTPStore) Save(_ context.Context, record app.OTPRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.PhoneNumber] = otpEntry{record: record, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *OTPStore) Get(_ context.Context, phoneNumber string) (app.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.records[phoneNumber]
	if !ok {
		return app.OTPRecord{}, domain.ErrOTPNotFound
	}
	if !entry.expiresAt.After(s.clock()) {
		delete(s.records, phoneNumber)
		return app.OTPRecord{}, domain.ErrOTPNotFound
	}
	return entry.record, nil
}

func (s *OTPStore) Delete(_ context.Context, phoneNumber string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, phoneNumber)
	return nil
}
