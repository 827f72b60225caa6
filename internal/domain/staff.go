package domain

import (
	"time"
)

// Staff represents a lab operator account
type Staff struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	Password     string    `json:"-" gorm:"-"` // input only, not stored in db
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SafeStaff represents a staff account without sensitive information
type SafeStaff struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// ToSafeStaff converts a Staff to a SafeStaff
func (s *Staff) ToSafeStaff() SafeStaff {
	return SafeStaff{
		ID:        s.ID,
		Name:      s.Name,
		Email:     s.Email,
		CreatedAt: s.CreatedAt,
		IsActive:  s.IsActive,
	}
}
