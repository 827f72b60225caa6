package payment

import (
	"aligner-lab/internal/domain"
	"aligner-lab/internal/errors"
	"context"
	defError "errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	RecordPayment(ctx context.Context, setID uint64, amount float64, date time.Time, currency string) (*RecordPaymentResponse, error)
	GetLedger(ctx context.Context, setID uint64) (*LedgerResponse, error)
}

// SetProvider resolves the set a payment is recorded against
type SetProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.AlignerSet, error)
}

// VersionCache bumps the version key invalidating per-work set list caches
type VersionCache interface {
	IncrementVersion(ctx context.Context, key string)
}

type DefaultService struct {
	repository PaymentRepository
	sets       SetProvider
	cache      VersionCache
}

func NewService(repository PaymentRepository, sets SetProvider, cache VersionCache) Service {
	return &DefaultService{repository: repository, sets: sets, cache: cache}
}

// Balance is the money projection of a set. Status is empty when the set has
// no cost recorded.
type Balance struct {
	TotalPaid float64 `json:"total_paid"`
	Balance   float64 `json:"balance"`
	Status    string  `json:"status,omitempty"`
	Currency  string  `json:"currency,omitempty"`
}

// ComputeBalance sums the recorded payments against the set cost. The balance
// is floored at zero: an overpayment is a data-quality signal, not a negative
// balance.
func ComputeBalance(set *domain.AlignerSet, payments []domain.Payment) Balance {
	var totalPaid float64
	for i := range payments {
		totalPaid += payments[i].Amount
	}

	balance := set.Cost - totalPaid
	if balance < 0 {
		balance = 0
	}

	status := ""
	if set.Cost > 0 {
		switch {
		case totalPaid == 0:
			status = domain.PaymentStatusUnpaid
		case balance == 0:
			status = domain.PaymentStatusPaid
		default:
			status = domain.PaymentStatusPartial
		}
	}

	return Balance{
		TotalPaid: totalPaid,
		Balance:   balance,
		Status:    status,
		Currency:  set.Currency,
	}
}

type RecordPaymentResponse struct {
	Payment domain.Payment `json:"payment"`
	Balance Balance        `json:"balance"`
	// Overpaid flags a payment that pushed the total past the set cost.
	// Allowed, but surfaced so the boundary can warn.
	Overpaid bool `json:"overpaid,omitempty"`
}

func (s *DefaultService) RecordPayment(ctx context.Context, setID uint64, amount float64, date time.Time, currency string) (*RecordPaymentResponse, error) {
	if amount <= 0 {
		return nil, errors.Validation("amount", "Payment amount must be positive")
	}

	set, err := s.sets.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}

	existing, err := s.repository.ListBySet(ctx, setID)
	if err != nil {
		return nil, err
	}
	before := ComputeBalance(set, existing)

	if currency == "" {
		currency = set.Currency
	}

	p := &domain.Payment{
		SetID:       setID,
		Amount:      amount,
		Currency:    currency,
		PaymentDate: date,
	}
	if err := s.repository.Create(ctx, p); err != nil {
		return nil, err
	}

	after := ComputeBalance(set, append(existing, *p))

	// the payment status shows up in the cached per-work set summaries
	s.bumpWorkVersion(ctx, set.WorkID)

	return &RecordPaymentResponse{
		Payment:  *p,
		Balance:  after,
		Overpaid: set.Cost > 0 && amount > before.Balance,
	}, nil
}

func (s *DefaultService) bumpWorkVersion(ctx context.Context, workID uint64) {
	if s.cache == nil {
		return
	}
	s.cache.IncrementVersion(ctx, fmt.Sprintf("work:%d:sets:version", workID))
}

type LedgerResponse struct {
	Payments []domain.Payment `json:"payments"`
	Balance  Balance          `json:"balance"`
}

func (s *DefaultService) GetLedger(ctx context.Context, setID uint64) (*LedgerResponse, error) {
	set, err := s.sets.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}

	payments, err := s.repository.ListBySet(ctx, setID)
	if err != nil {
		return nil, err
	}

	return &LedgerResponse{
		Payments: payments,
		Balance:  ComputeBalance(set, payments),
	}, nil
}
