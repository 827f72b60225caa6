package domain

import (
	"time"
)

// Note authors. The lab UI only ever creates lab notes; doctor notes arrive
// through the doctor portal.
const (
	AuthorLab    = "lab"
	AuthorDoctor = "doctor"
)

// Note is one message in the doctor/lab thread of a set
type Note struct {
	ID        uint64     `json:"id"`
	SetID     uint64     `json:"set_id" gorm:"index"`
	Author    string     `json:"author"`
	Text      string     `json:"text"`
	IsRead    bool       `json:"is_read"`
	IsEdited  bool       `json:"is_edited"`
	EditedAt  *time.Time `json:"edited_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActivityFlag is an append-only record behind the "N unread updates" badge,
// one row per noteworthy event (a new doctor note). Flags are marked read
// individually or in bulk per set.
type ActivityFlag struct {
	ID        uint64    `json:"id"`
	SetID     uint64    `json:"set_id" gorm:"index"`
	NoteID    uint64    `json:"note_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
