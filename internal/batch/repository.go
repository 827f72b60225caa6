package batch

import (
	"aligner-lab/internal/domain"
	"context"
	defError "errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Guard failures surfaced by the transactional writes. The service maps them
// to the API error taxonomy.
var (
	ErrSetInactive   = defError.New("set is not active")
	ErrSequenceTaken = defError.New("batch sequence already used in set")
)

type BatchRepository interface {
	Create(ctx context.Context, b *domain.Batch) error
	FindByID(ctx context.Context, id uint64) (*domain.Batch, error)
	ListBySet(ctx context.Context, setID uint64) ([]domain.Batch, error)
	Update(ctx context.Context, b *domain.Batch) error
	Delete(ctx context.Context, id uint64) error
}

type BatchRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new batch repository
func NewRepository(db *gorm.DB) BatchRepository {
	return &BatchRepositoryImpl{db: db}
}

// Create inserts the batch after checking, inside one transaction, that the
// owning set is still active and the sequence is still free. The set row is
// locked so concurrent sibling writes serialize on it instead of both passing
// the check on a stale snapshot.
func (r *BatchRepositoryImpl) Create(ctx context.Context, b *domain.Batch) error {
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var set domain.AlignerSet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&set, b.SetID).Error; err != nil {
			return err
		}
		if !set.IsActive {
			return ErrSetInactive
		}

		var count int64
		if err := tx.Model(&domain.Batch{}).
			Where("set_id = ? AND sequence = ?", b.SetID, b.Sequence).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSequenceTaken
		}

		return tx.Create(b).Error
	})
}

func (r *BatchRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Batch, error) {
	var b domain.Batch
	err := r.db.WithContext(ctx).First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepositoryImpl) ListBySet(ctx context.Context, setID uint64) ([]domain.Batch, error) {
	var batches []domain.Batch
	err := r.db.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("sequence ASC").
		Find(&batches).Error
	return batches, err
}

// Update saves the batch under the same per-set lock and sequence guard as
// Create, excluding the row itself from the sequence check.
func (r *BatchRepositoryImpl) Update(ctx context.Context, b *domain.Batch) error {
	b.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var set domain.AlignerSet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&set, b.SetID).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&domain.Batch{}).
			Where("set_id = ? AND sequence = ? AND id <> ?", b.SetID, b.Sequence, b.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSequenceTaken
		}

		return tx.Save(b).Error
	})
}

// Delete removes the row; sibling batches keep their sequences
func (r *BatchRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Batch{}, id).Error
}
