package domain

import (
	"time"
)

// Set types. The sequence of sets for a work usually starts with an initial
// set, followed by refinements or revisions.
const (
	SetTypeInitial    = "initial"
	SetTypeRefinement = "refinement"
	SetTypeRevision   = "revision"
)

// AlignerSet is one treatment phase for a patient. It owns a sequence of
// manufactured batches, its payments and its doctor/lab note thread.
type AlignerSet struct {
	ID                 uint64     `json:"id"`
	WorkID             uint64     `json:"work_id" gorm:"index;uniqueIndex:idx_work_set_sequence"`
	DoctorID           uint64     `json:"doctor_id" gorm:"index"`
	Sequence           uint       `json:"sequence" gorm:"uniqueIndex:idx_work_set_sequence"`
	Type               string     `json:"type"`
	UpperAlignersCount uint       `json:"upper_aligners_count"`
	LowerAlignersCount uint       `json:"lower_aligners_count"`
	TreatmentDays      uint       `json:"treatment_days"`
	IsActive           bool       `json:"is_active" gorm:"default:true"`
	Cost               float64    `json:"cost"`
	Currency           string     `json:"currency"`
	Remarks            string     `json:"remarks"`
	SetURL             string     `json:"set_url"`
	DocumentURL        string     `json:"document_url"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TotalAligners returns the combined upper and lower aligner count
func (s *AlignerSet) TotalAligners() uint {
	return s.UpperAlignersCount + s.LowerAlignersCount
}
