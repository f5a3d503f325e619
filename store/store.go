package store

import (
	"context"
	"errors"

	"github.com/ThousifMd/MatchlensAI/models"
)

// Error kinds surfaced by SubmissionStore implementations. Constraint
// violations are translated here so callers never have to sniff driver errors.
var (
	ErrDuplicateOrder    = errors.New("a payment with this order id already exists")
	ErrDuplicateEmail    = errors.New("a profile with this email already exists")
	ErrNotFound          = errors.New("record not found")
	ErrInvalidTransition = errors.New("payment status transition not allowed")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions controls the paginated submission listing. Limit is clamped to
// MaxPageSize by implementations.
type ListOptions struct {
	Page  int
	Limit int
}

func (o ListOptions) Normalize() (page, limit, offset int) {
	page = o.Page
	if page < 1 {
		page = 1
	}
	limit = o.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, (page - 1) * limit
}

// SubmissionStore is the persistence contract for the intake workflow. The two
// inserts in CreateWithPayment are one atomic unit: either both rows exist
// afterwards or neither does.
type SubmissionStore interface {
	// CreateWithPayment inserts the profile and its payment in a single
	// transaction, generating identities for both. The payment's UserID is
	// filled from the generated profile identity.
	CreateWithPayment(ctx context.Context, sub *models.ProfileSubmission, pay *models.PaymentRecord) error

	GetPaymentByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error)
	GetPaymentByID(ctx context.Context, paymentID string) (*models.PaymentRecord, error)

	// GetProfile returns the submission with its dependent payment rows.
	GetProfile(ctx context.Context, userID string) (*models.ProfileSubmission, error)

	// ListSubmissions returns a page of submissions ordered by creation time
	// descending, plus the total row count.
	ListSubmissions(ctx context.Context, opts ListOptions) ([]models.ProfileSubmission, int64, error)

	// UpdatePaymentStatus applies an allowed status transition and returns the
	// updated record. Illegal transitions fail with ErrInvalidTransition.
	UpdatePaymentStatus(ctx context.Context, paymentID, status string) (*models.PaymentRecord, error)
}
