package registry

import (
	"aligner-lab/internal/domain"
	"aligner-lab/internal/errors"
	"context"
	defError "errors"

	"gorm.io/gorm"
)

type Service interface {
	ListDoctors(ctx context.Context, page, perPage int) ([]domain.Doctor, error)
	GetDoctorByID(ctx context.Context, id uint64) (*domain.Doctor, error)
	ListPatients(ctx context.Context, doctorID uint64) ([]domain.Patient, error)
	GetPatientByID(ctx context.Context, id uint64) (*domain.Patient, error)
	GetWorkByID(ctx context.Context, id uint64) (*domain.Work, error)
	ListWorksForPatient(ctx context.Context, patientID uint64) ([]domain.Work, error)
}

type DefaultService struct {
	repository RegistryRepository
}

func NewService(repository RegistryRepository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) ListDoctors(ctx context.Context, page, perPage int) ([]domain.Doctor, error) {
	return s.repository.ListDoctors(ctx, perPage, (page-1)*perPage)
}

func (s *DefaultService) GetDoctorByID(ctx context.Context, id uint64) (*domain.Doctor, error) {
	d, err := s.repository.FindDoctorByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Doctor not found", err)
		}
		return nil, err
	}
	return d, nil
}

func (s *DefaultService) ListPatients(ctx context.Context, doctorID uint64) ([]domain.Patient, error) {
	return s.repository.ListPatientsByDoctor(ctx, doctorID)
}

func (s *DefaultService) GetPatientByID(ctx context.Context, id uint64) (*domain.Patient, error) {
	p, err := s.repository.FindPatientByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Patient not found", err)
		}
		return nil, err
	}
	return p, nil
}

func (s *DefaultService) GetWorkByID(ctx context.Context, id uint64) (*domain.Work, error) {
	w, err := s.repository.FindWorkByID(ctx, id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Work not found", err)
		}
		return nil, err
	}
	return w, nil
}

func (s *DefaultService) ListWorksForPatient(ctx context.Context, patientID uint64) ([]domain.Work, error) {
	return s.repository.ListWorksByPatient(ctx, patientID)
}
