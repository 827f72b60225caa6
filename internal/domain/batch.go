package domain

import (
	"time"
)

// Batch is one manufactured/delivered shipment of aligners inside a set,
// covering a numbered range of upper and lower aligners. ManufactureDate and
// DeliveredAt are nil until the corresponding step happened.
type Batch struct {
	ID              uint64     `json:"id"`
	SetID           uint64     `json:"set_id" gorm:"index;uniqueIndex:idx_set_batch_sequence"`
	Sequence        uint       `json:"sequence" gorm:"uniqueIndex:idx_set_batch_sequence"`
	UpperCount      uint       `json:"upper_count"`
	LowerCount      uint       `json:"lower_count"`
	UpperStart      uint       `json:"upper_start"`
	LowerStart      uint       `json:"lower_start"`
	ManufactureDate *time.Time `json:"manufacture_date"`
	DeliveredAt     *time.Time `json:"delivered_at"`
	DaysPerAligner  uint       `json:"days_per_aligner"`
	Remarks         string     `json:"remarks"`
	IsActive        bool       `json:"is_active" gorm:"default:true"`
	IsLast          bool       `json:"is_last"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UpperEnd is the last upper aligner number covered by this batch.
// Derived, never stored.
func (b *Batch) UpperEnd() uint {
	if b.UpperCount == 0 {
		return 0
	}
	return b.UpperStart + b.UpperCount - 1
}

// LowerEnd is the last lower aligner number covered by this batch
func (b *Batch) LowerEnd() uint {
	if b.LowerCount == 0 {
		return 0
	}
	return b.LowerStart + b.LowerCount - 1
}

// ValidityDays is how long the batch lasts once delivered. The cadence is
// defined by the larger of the two counts (arches can be uneven).
func (b *Batch) ValidityDays() uint {
	cadence := b.UpperCount
	if b.LowerCount > cadence {
		cadence = b.LowerCount
	}
	return b.DaysPerAligner * cadence
}

// NextReadyDate is when the patient is expected to need the next batch,
// nil while the batch is undelivered
func (b *Batch) NextReadyDate() *time.Time {
	if b.DeliveredAt == nil {
		return nil
	}
	t := b.DeliveredAt.AddDate(0, 0, int(b.ValidityDays()))
	return &t
}

// Manufactured reports whether the batch left manufacturing
func (b *Batch) Manufactured() bool {
	return b.ManufactureDate != nil
}

// Delivered reports whether the batch reached the patient
func (b *Batch) Delivered() bool {
	return b.DeliveredAt != nil
}
