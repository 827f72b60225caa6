package batch

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
	CreateBatch(ctx context.Context, setID uint64, input *BatchInput) (*domain.Batch, error)
	UpdateBatch(ctx context.Context, batchID uint64, input *BatchInput) (*domain.Batch, error)
	MarkDelivered(ctx context.Context, batchID uint64) (*domain.Batch, error)
	DeleteBatch(ctx context.Context, batchID uint64) error
	ListBySet(ctx context.Context, setID uint64) ([]domain.Batch, error)
}

// SetProvider resolves the owning set of a batch
type SetProvider interface {
	FindByID(ctx context.Context, id uint64) (*domain.AlignerSet, error)
}

// VersionCache bumps the version key invalidating per-work set list caches
type VersionCache interface {
	IncrementVersion(ctx context.Context, key string)
}

type DefaultService struct {
	repository BatchRepository
	sets       SetProvider
	cache      VersionCache
}

func NewService(repository BatchRepository, sets SetProvider, cache VersionCache) Service {
	return &DefaultService{repository: repository, sets: sets, cache: cache}
}

// BatchInput carries the staff-editable batch fields. End sequences are
// deliberately absent: they are derived from start+count and recomputed per
// read, never accepted from the caller.
type BatchInput struct {
	Sequence        uint
	UpperCount      uint
	LowerCount      uint
	UpperStart      uint
	LowerStart      uint
	ManufactureDate *time.Time
	DaysPerAligner  uint
	Remarks         string
	IsActive        *bool
	IsLast          bool
}

func (s *DefaultService) CreateBatch(ctx context.Context, setID uint64, input *BatchInput) (*domain.Batch, error) {
	if input.Sequence == 0 {
		return nil, errors.Validation("sequence", "Batch sequence is required")
	}

	b := &domain.Batch{
		SetID:           setID,
		Sequence:        input.Sequence,
		UpperCount:      input.UpperCount,
		LowerCount:      input.LowerCount,
		UpperStart:      input.UpperStart,
		LowerStart:      input.LowerStart,
		ManufactureDate: input.ManufactureDate,
		DaysPerAligner:  input.DaysPerAligner,
		Remarks:         input.Remarks,
		IsActive:        true,
		IsLast:          input.IsLast,
	}
	if input.IsActive != nil {
		b.IsActive = *input.IsActive
	}

	// set existence, activation state and sequence uniqueness are all checked
	// by the repository inside the insert transaction
	if err := s.repository.Create(ctx, b); err != nil {
		return nil, s.mapWriteError(err, setID, input.Sequence)
	}

	s.bumpWorkVersionForSet(ctx, setID)
	return b, nil
}

func (s *DefaultService) UpdateBatch(ctx context.Context, batchID uint64, input *BatchInput) (*domain.Batch, error) {
	b, err := s.repository.FindByID(ctx, batchID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Batch not found", err)
		}
		return nil, err
	}

	if input.Sequence == 0 {
		return nil, errors.Validation("sequence", "Batch sequence is required")
	}

	// set reference is immutable; delivery only moves through MarkDelivered
	b.Sequence = input.Sequence
	b.UpperCount = input.UpperCount
	b.LowerCount = input.LowerCount
	b.UpperStart = input.UpperStart
	b.LowerStart = input.LowerStart
	b.ManufactureDate = input.ManufactureDate
	b.DaysPerAligner = input.DaysPerAligner
	b.Remarks = input.Remarks
	b.IsLast = input.IsLast
	if input.IsActive != nil {
		b.IsActive = *input.IsActive
	}

	if err := s.repository.Update(ctx, b); err != nil {
		return nil, s.mapWriteError(err, b.SetID, input.Sequence)
	}

	s.bumpWorkVersionForSet(ctx, b.SetID)
	return b, nil
}

// MarkDelivered stamps the delivery date. Calling it on an already-delivered
// batch is a no-op, so retries are safe.
func (s *DefaultService) MarkDelivered(ctx context.Context, batchID uint64) (*domain.Batch, error) {
	b, err := s.repository.FindByID(ctx, batchID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Batch not found", err)
		}
		return nil, err
	}

	if b.Delivered() {
		return b, nil
	}

	now := time.Now().UTC()
	b.DeliveredAt = &now
	if err := s.repository.Update(ctx, b); err != nil {
		return nil, err
	}

	s.bumpWorkVersionForSet(ctx, b.SetID)
	return b, nil
}

func (s *DefaultService) DeleteBatch(ctx context.Context, batchID uint64) error {
	b, err := s.repository.FindByID(ctx, batchID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Batch not found", err)
		}
		return err
	}

	if err := s.repository.Delete(ctx, batchID); err != nil {
		return err
	}

	s.bumpWorkVersionForSet(ctx, b.SetID)
	return nil
}

func (s *DefaultService) ListBySet(ctx context.Context, setID uint64) ([]domain.Batch, error) {
	return s.repository.ListBySet(ctx, setID)
}

func (s *DefaultService) mapWriteError(err error, setID uint64, sequence uint) error {
	switch {
	case defError.Is(err, gorm.ErrRecordNotFound):
		return errors.NotFound("Set not found", err)
	case defError.Is(err, ErrSetInactive):
		return errors.InactiveSetConflict(setID)
	case defError.Is(err, ErrSequenceTaken):
		return errors.Conflict("Batch sequence already used in this set", err).
			WithDetail("sequence", sequence)
	}
	return err
}

func (s *DefaultService) bumpWorkVersionForSet(ctx context.Context, setID uint64) {
	set, err := s.sets.FindByID(ctx, setID)
	if err != nil {
		return
	}
	s.bumpWorkVersion(ctx, set.WorkID)
}

func (s *DefaultService) bumpWorkVersion(ctx context.Context, workID uint64) {
	if s.cache == nil {
		return
	}
	s.cache.IncrementVersion(ctx, fmt.Sprintf("work:%d:sets:version", workID))
}
