package note

import (
	"aligner-lab/internal/domain"
	"context"
	"time"

	"gorm.io/gorm"
)

type NoteRepository interface {
	Create(ctx context.Context, n *domain.Note) error
	FindByID(ctx context.Context, id uint64) (*domain.Note, error)
	ListBySet(ctx context.Context, setID uint64) ([]domain.Note, error)
	ListUnreadByAuthor(ctx context.Context, setID uint64, author string) ([]domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id uint64) error
	UnreadCount(ctx context.Context, setID uint64, author string) (int64, error)

	CreateFlag(ctx context.Context, f *domain.ActivityFlag) error
	ListUnreadFlags(ctx context.Context, limit, offset int) ([]domain.ActivityFlag, error)
	MarkFlagRead(ctx context.Context, id uint64) error
	MarkSetFlagsRead(ctx context.Context, setID uint64) error
}

type NoteRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new note repository
func NewRepository(db *gorm.DB) NoteRepository {
	return &NoteRepositoryImpl{db: db}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, n *domain.Note) error {
	n.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NoteRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.Note, error) {
	var n domain.Note
	err := r.db.WithContext(ctx).First(&n, id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepositoryImpl) ListBySet(ctx context.Context, setID uint64) ([]domain.Note, error) {
	var notes []domain.Note
	err := r.db.WithContext(ctx).
		Where("set_id = ?", setID).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepositoryImpl) ListUnreadByAuthor(ctx context.Context, setID uint64, author string) ([]domain.Note, error) {
	var notes []domain.Note
	err := r.db.WithContext(ctx).
		Where("set_id = ? AND author = ? AND is_read = ?", setID, author, false).
		Order("created_at ASC").
		Find(&notes).Error
	return notes, err
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, n *domain.Note) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&domain.Note{}, id).Error
}

func (r *NoteRepositoryImpl) UnreadCount(ctx context.Context, setID uint64, author string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Note{}).
		Where("set_id = ? AND author = ? AND is_read = ?", setID, author, false).
		Count(&count).Error
	return count, err
}

func (r *NoteRepositoryImpl) CreateFlag(ctx context.Context, f *domain.ActivityFlag) error {
	f.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *NoteRepositoryImpl) ListUnreadFlags(ctx context.Context, limit, offset int) ([]domain.ActivityFlag, error) {
	var flags []domain.ActivityFlag
	err := r.db.WithContext(ctx).
		Where("is_read = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&flags).Error
	return flags, err
}

func (r *NoteRepositoryImpl) MarkFlagRead(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&domain.ActivityFlag{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *NoteRepositoryImpl) MarkSetFlagsRead(ctx context.Context, setID uint64) error {
	return r.db.WithContext(ctx).Model(&domain.ActivityFlag{}).
		Where("set_id = ? AND is_read = ?", setID, false).
		Update("is_read", true).Error
}
