package store

import (
	"context"
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ThousifMd/MatchlensAI/models"
)

// GormStore is the MySQL-backed SubmissionStore. The connection pool lives on
// the injected *gorm.DB and is shared by all requests.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateWithPayment(ctx context.Context, sub *models.ProfileSubmission, pay *models.PaymentRecord) error {
	if sub.UserID == "" {
		sub.UserID = uuid.NewString()
	}
	if pay.PaymentID == "" {
		pay.PaymentID = uuid.NewString()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		pay.UserID = sub.UserID
		if err := tx.Create(pay).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return translateDuplicate(err)
	}
	return nil
}

func (s *GormStore) GetPaymentByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error) {
	var pay models.PaymentRecord
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&pay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

func (s *GormStore) GetPaymentByID(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	var pay models.PaymentRecord
	err := s.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&pay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

func (s *GormStore) GetProfile(ctx context.Context, userID string) (*models.ProfileSubmission, error) {
	var sub models.ProfileSubmission
	err := s.db.WithContext(ctx).Preload("Payments").Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (s *GormStore) ListSubmissions(ctx context.Context, opts ListOptions) ([]models.ProfileSubmission, int64, error) {
	_, limit, offset := opts.Normalize()

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.ProfileSubmission{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.ProfileSubmission
	err := s.db.WithContext(ctx).
		Preload("Payments").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (s *GormStore) UpdatePaymentStatus(ctx context.Context, paymentID, status string) (*models.PaymentRecord, error) {
	var pay models.PaymentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_id = ?", paymentID).First(&pay).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !models.CanTransition(pay.Status, status) {
			return ErrInvalidTransition
		}
		if err := tx.Model(&pay).Update("status", status).Error; err != nil {
			return err
		}
		pay.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pay, nil
}

// translateDuplicate maps MySQL unique-constraint violations (error 1062) onto
// the store error kinds. The index name in the driver message tells the order
// and email constraints apart.
func translateDuplicate(err error) error {
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		msg := strings.ToLower(mysqlErr.Message)
		if strings.Contains(msg, "order_id") {
			return ErrDuplicateOrder
		}
		if strings.Contains(msg, "email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicateOrder
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrder
	}
	return err
}
