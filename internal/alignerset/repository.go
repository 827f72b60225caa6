package alignerset

import (
	"aligner-lab/internal/domain"
	"context"
	"time"

	"gorm.io/gorm"
)

type SetRepository interface {
	Create(ctx context.Context, set *domain.AlignerSet) error
	FindByID(ctx context.Context, id uint64) (*domain.AlignerSet, error)
	ListByWork(ctx context.Context, workID uint64) ([]domain.AlignerSet, error)
	NextSequence(ctx context.Context, workID uint64) (uint, error)
	Update(ctx context.Context, set *domain.AlignerSet) error
	UpdateReactivating(ctx context.Context, set *domain.AlignerSet) (uint64, error)
	DeleteCascade(ctx context.Context, setID uint64) error
}

type SetRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new set repository
func NewRepository(db *gorm.DB) SetRepository {
	return &SetRepositoryImpl{db: db}
}

func (r *SetRepositoryImpl) Create(ctx context.Context, set *domain.AlignerSet) error {
	set.CreatedAt = time.Now().UTC() // Use UTC for consistency
	set.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(set).Error
}

func (r *SetRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.AlignerSet, error) {
	var set domain.AlignerSet
	err := r.db.WithContext(ctx).First(&set, id).Error
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *SetRepositoryImpl) ListByWork(ctx context.Context, workID uint64) ([]domain.AlignerSet, error) {
	var sets []domain.AlignerSet
	err := r.db.WithContext(ctx).
		Where("work_id = ?", workID).
		Order("sequence ASC").
		Find(&sets).Error
	return sets, err
}

// NextSequence suggests max(existing sequence)+1 within a work. Contiguity is
// not enforced; staff may still assign sequences by hand.
func (r *SetRepositoryImpl) NextSequence(ctx context.Context, workID uint64) (uint, error) {
	var maxSeq uint
	err := r.db.WithContext(ctx).Model(&domain.AlignerSet{}).
		Where("work_id = ?", workID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&maxSeq).Error
	return maxSeq + 1, err
}

func (r *SetRepositoryImpl) Update(ctx context.Context, set *domain.AlignerSet) error {
	set.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(set).Error
}

// UpdateReactivating persists an update that flips an inactive set back to
// active. The guard check and the write share one transaction so two
// concurrent reactivations can't both act on a stale "no newer batches"
// snapshot. Returns the blocking set id (and writes nothing) when a newer set
// of the same work already owns batches.
func (r *SetRepositoryImpl) UpdateReactivating(ctx context.Context, set *domain.AlignerSet) (uint64, error) {
	var blockingID uint64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var blocking struct{ ID uint64 }
		if err := tx.Model(&domain.AlignerSet{}).
			Select("aligner_sets.id").
			Joins("JOIN batches ON batches.set_id = aligner_sets.id").
			Where("aligner_sets.work_id = ? AND aligner_sets.id <> ? AND aligner_sets.created_at > ?",
				set.WorkID, set.ID, set.CreatedAt).
			Order("aligner_sets.created_at ASC").
			Limit(1).
			Scan(&blocking).Error; err != nil {
			return err
		}

		if blocking.ID != 0 {
			blockingID = blocking.ID
			return nil // no write, caller rejects
		}

		set.UpdatedAt = time.Now().UTC()
		return tx.Save(set).Error
	})

	return blockingID, err
}

// DeleteCascade removes a set together with its batches, payments, notes and
// activity flags. All-or-nothing: a partial cascade rolls back.
func (r *SetRepositoryImpl) DeleteCascade(ctx context.Context, setID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("set_id = ?", setID).Delete(&domain.ActivityFlag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("set_id = ?", setID).Delete(&domain.Note{}).Error; err != nil {
			return err
		}
		if err := tx.Where("set_id = ?", setID).Delete(&domain.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("set_id = ?", setID).Delete(&domain.Batch{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.AlignerSet{}, setID).Error
	})
}
