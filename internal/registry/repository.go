package registry

import (
	"aligner-lab/internal/domain"
	"context"

	"gorm.io/gorm"
)

// RegistryRepository reads doctor/patient/work reference data. The lifecycle
// engine never writes these rows; they are maintained by the practice
// management side.
type RegistryRepository interface {
	ListDoctors(ctx context.Context, limit, offset int) ([]domain.Doctor, error)
	FindDoctorByID(ctx context.Context, id uint64) (*domain.Doctor, error)
	ListPatientsByDoctor(ctx context.Context, doctorID uint64) ([]domain.Patient, error)
	FindPatientByID(ctx context.Context, id uint64) (*domain.Patient, error)
	FindWorkByID(ctx context.Context, id uint64) (*domain.Work, error)
	ListWorksByPatient(ctx context.Context, patientID uint64) ([]domain.Work, error)
}

type RegistryRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new registry repository
func NewRepository(db *gorm.DB) RegistryRepository {
	return &RegistryRepositoryImpl{db: db}
}

func (r *RegistryRepositoryImpl) ListDoctors(ctx context.Context, limit, offset int) ([]domain.Doctor, error) {
	var doctors []domain.Doctor
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&doctors).Error
	return doctors, err
}

func (r *RegistryRepositoryImpl) FindDoctorByID(ctx context.Context, id uint64) (*domain.Doctor, error) {
	var d domain.Doctor
	err := r.db.WithContext(ctx).First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RegistryRepositoryImpl) ListPatientsByDoctor(ctx context.Context, doctorID uint64) ([]domain.Patient, error) {
	var patients []domain.Patient
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("name ASC").
		Find(&patients).Error
	return patients, err
}

func (r *RegistryRepositoryImpl) FindPatientByID(ctx context.Context, id uint64) (*domain.Patient, error) {
	var p domain.Patient
	err := r.db.WithContext(ctx).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RegistryRepositoryImpl) FindWorkByID(ctx context.Context, id uint64) (*domain.Work, error) {
	var w domain.Work
	err := r.db.WithContext(ctx).First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *RegistryRepositoryImpl) ListWorksByPatient(ctx context.Context, patientID uint64) ([]domain.Work, error) {
	var works []domain.Work
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Find(&works).Error
	return works, err
}
