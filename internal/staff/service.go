package staff

import (
	"aligner-lab/internal/domain"
	"aligner-lab/internal/errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service defines the interface for staff account business logic
type Service interface {
	Register(s *domain.Staff) error
	Login(email, password string) (*domain.Staff, error)
	GetByID(id uint64) (*domain.Staff, error)
	Deactivate(id uint64) error
}

type DefaultService struct {
	repository StaffRepository
}

// NewService creates a new staff service
func NewService(repository StaffRepository) Service {
	return &DefaultService{repository: repository}
}

// Register registers a new staff account
func (s *DefaultService) Register(account *domain.Staff) error {
	// Check if an account with this email already exists
	_, err := s.repository.FindByEmail(account.Email)
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if err == nil {
		return errors.UnprocessableEntity("Account already registered", nil)
	}

	// Hash the password before saving
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		return errors.UnprocessableEntity("Can't hash password", err)
	}
	account.PasswordHash = string(hashedPassword)
	account.IsActive = true

	return s.repository.Create(account)
}

// Login authenticates a staff account
func (s *DefaultService) Login(email, password string) (*domain.Staff, error) {
	account, err := s.repository.FindByEmail(email)
	if err != nil {
		return nil, errors.Unauthorized("Account not found", err)
	}

	if !account.IsActive {
		return nil, errors.Unauthorized("Account is not active", nil)
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	if err != nil {
		return nil, errors.UnprocessableEntity("Wrong password", err)
	}

	return account, nil
}

func (s *DefaultService) GetByID(id uint64) (*domain.Staff, error) {
	return s.repository.FindByID(id)
}

func (s *DefaultService) Deactivate(id uint64) error {
	return s.repository.Deactivate(id)
}
