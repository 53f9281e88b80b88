// internal/payments/memory.go
package payments

import (
	"context"
	"sync"
	"time"

	"abiturbot/internal/models"
)

// MemoryStore is the single-process Store used when no Redis is
// configured, and in tests. A plain mutex around the map is enough: access
// is keyed and the critical sections are tiny.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*models.PaymentRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*models.PaymentRecord),
	}
}

func (s *MemoryStore) Create(_ context.Context, record *models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.SessionKey]; ok && existing.Status == models.PaymentStatusPaid {
		return ErrAlreadyPaid
	}

	clone := *record
	clone.Status = models.PaymentStatusCreated
	if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now().UTC()
	}
	s.records[record.SessionKey] = &clone
	return nil
}

func (s *MemoryStore) MarkPaid(_ context.Context, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[sessionKey]
	if !ok {
		return ErrNotFound
	}
	if record.Status == models.PaymentStatusPaid {
		return nil
	}

	now := time.Now().UTC()
	record.Status = models.PaymentStatusPaid
	record.PaidAt = &now
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionKey string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[sessionKey]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (s *MemoryStore) ReadAndClear(_ context.Context, sessionKey string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[sessionKey]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.records, sessionKey)
	return record, nil
}
