package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ThousifMd/MatchlensAI/models"
)

// MemoryStore is an in-memory SubmissionStore with the same constraint
// semantics as the MySQL implementation. It backs handler tests and local
// development without a database.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]models.ProfileSubmission // by user id
	payments map[string]models.PaymentRecord     // by payment id
	byOrder  map[string]string                   // order id -> payment id
	byEmail  map[string]string                   // email -> user id

	// FailNextCreate makes the next CreateWithPayment fail after constraint
	// checks pass, standing in for a transaction error. Both rows must be
	// absent afterwards.
	FailNextCreate error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]models.ProfileSubmission),
		payments: make(map[string]models.PaymentRecord),
		byOrder:  make(map[string]string),
		byEmail:  make(map[string]string),
	}
}

func (s *MemoryStore) CreateWithPayment(ctx context.Context, sub *models.ProfileSubmission, pay *models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Enforce both unique constraints before touching state so a violation
	// leaves no partial rows, matching transactional rollback.
	if _, exists := s.byOrder[pay.OrderID]; exists {
		return ErrDuplicateOrder
	}
	if _, exists := s.byEmail[sub.Email]; exists {
		return ErrDuplicateEmail
	}
	if s.FailNextCreate != nil {
		err := s.FailNextCreate
		s.FailNextCreate = nil
		return err
	}

	if sub.UserID == "" {
		sub.UserID = uuid.NewString()
	}
	if pay.PaymentID == "" {
		pay.PaymentID = uuid.NewString()
	}
	now := time.Now()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	pay.UserID = sub.UserID
	pay.CreatedAt = now
	pay.UpdatedAt = now

	s.profiles[sub.UserID] = *sub
	s.payments[pay.PaymentID] = *pay
	s.byOrder[pay.OrderID] = pay.PaymentID
	s.byEmail[sub.Email] = sub.UserID
	return nil
}

func (s *MemoryStore) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOrder[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	pay := s.payments[id]
	return &pay, nil
}

func (s *MemoryStore) GetPaymentByID(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pay, ok := s.payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	return &pay, nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.ProfileSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	sub.Payments = s.paymentsForUser(userID)
	return &sub, nil
}

func (s *MemoryStore) ListSubmissions(ctx context.Context, opts ListOptions) ([]models.ProfileSubmission, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]models.ProfileSubmission, 0, len(s.profiles))
	for id, sub := range s.profiles {
		sub.Payments = s.paymentsForUser(id)
		all = append(all, sub)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	_, limit, offset := opts.Normalize()
	if offset >= len(all) {
		return []models.ProfileSubmission{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *MemoryStore) UpdatePaymentStatus(ctx context.Context, paymentID, status string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pay, ok := s.payments[paymentID]
	if !ok {
		return nil, ErrNotFound
	}
	if !models.CanTransition(pay.Status, status) {
		return nil, ErrInvalidTransition
	}
	pay.Status = status
	pay.UpdatedAt = time.Now()
	s.payments[paymentID] = pay
	return &pay, nil
}

func (s *MemoryStore) paymentsForUser(userID string) []models.PaymentRecord {
	var out []models.PaymentRecord
	for _, pay := range s.payments {
		if pay.UserID == userID {
			out = append(out, pay)
		}
	}
	return out
}
