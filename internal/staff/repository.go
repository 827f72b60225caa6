package staff

import (
	"aligner-lab/internal/domain"

	"gorm.io/gorm"
)

// StaffRepository defines the interface for staff account data access
type StaffRepository interface {
	Create(s *domain.Staff) error
	FindByEmail(email string) (*domain.Staff, error)
	FindByID(id uint64) (*domain.Staff, error)
	Deactivate(id uint64) error
}

type StaffRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new staff repository
func NewRepository(db *gorm.DB) StaffRepository {
	return &StaffRepositoryImpl{db: db}
}

func (r *StaffRepositoryImpl) Create(s *domain.Staff) error {
	return r.db.Create(s).Error
}

func (r *StaffRepositoryImpl) FindByEmail(email string) (*domain.Staff, error) {
	var s domain.Staff
	err := r.db.Where("email = ?", email).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, err
}

func (r *StaffRepositoryImpl) FindByID(id uint64) (*domain.Staff, error) {
	var s domain.Staff
	err := r.db.First(&s, id).Error
	return &s, err
}

func (r *StaffRepositoryImpl) Deactivate(id uint64) error {
	s, err := r.FindByID(id)
	if err != nil {
		return err
	}

	s.IsActive = false
	return r.db.Save(s).Error
}
