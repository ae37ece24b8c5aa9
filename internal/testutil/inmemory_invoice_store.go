package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/yellowpin/yellowpin/internal/domain/invoice"
	ierr "github.com/yellowpin/yellowpin/internal/errors"
	"github.com/yellowpin/yellowpin/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	mu        sync.Mutex
	sequences map[int]int64
}

// NewInMemoryInvoiceStore creates a new in-memory invoice repository
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		sequences:     make(map[int]int64),
	}
}

// Clear resets invoices and the per-year sequence counters
func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.InMemoryStore.Clear()
	s.sequences = make(map[int]int64)
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice %s does not exist", id).
			Mark(ierr.ErrNotFound)
	}
	return inv, nil
}

func (s *InMemoryInvoiceStore) ListBySubscriber(ctx context.Context, subscriberID string) ([]*invoice.Invoice, error) {
	return s.InMemoryStore.List(ctx, nil, func(_ context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.SubscriberID == subscriberID && inv.Status != types.StatusDeleted
	}, func(i, j *invoice.Invoice) bool {
		if !i.IssueDate.Equal(j.IssueDate) {
			return i.IssueDate.After(j.IssueDate)
		}
		return i.InvoiceNumber > j.InvoiceNumber
	})
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	inv.UpdatedAt = time.Now().UTC()
	return s.InMemoryStore.Update(ctx, inv.ID, inv)
}

// SeedSequence positions a year's counter so the next invoice takes n+1
func (s *InMemoryInvoiceStore) SeedSequence(year int, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[year] = n
}

func (s *InMemoryInvoiceStore) NextSequence(ctx context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[year]++
	return s.sequences[year], nil
}
