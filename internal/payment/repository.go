package payment

import (
	"aligner-lab/internal/domain"
	"context"
	"time"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	ListBySet(ctx context.Context, setID uint64) ([]domain.Payment, error)
}

type PaymentRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new payment repository
func NewRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *domain.Payment) error {
	p.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepositoryImpl) ListBySet(ctx context.Context, setID uint64) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("payment_date ASC").
		Find(&payments).Error
	return payments, err
}
