package domain

import (
	"time"
)

// Doctor is the treating clinician a set belongs to. Reference data, read-only
// to the lifecycle engine.
type Doctor struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email" gorm:"uniqueIndex"`
	Phone      string    `json:"phone"`
	ClinicName string    `json:"clinic_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Patient is the person under treatment. Reference data, read-only to the
// lifecycle engine.
type Patient struct {
	ID        uint64    `json:"id"`
	DoctorID  uint64    `json:"doctor_id" gorm:"index"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender"`
	BirthDate string    `json:"birth_date"`
	CreatedAt time.Time `json:"created_at"`
}

// Work is one treatment case for a patient. Sets are sequenced within a work.
type Work struct {
	ID        uint64    `json:"id"`
	PatientID uint64    `json:"patient_id" gorm:"index"`
	DoctorID  uint64    `json:"doctor_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
