package models

import "time"

// Participant is a scorer seen in at least one quiz announcement. ExternalID is
// the stable directory id and the sole merge key when present; participants
// without one are matched by exact name. NULL means "no id", never 0.
type Participant struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Handle     *string   `gorm:"size:100" json:"handle,omitempty"`
	ExternalID *string   `gorm:"size:64;uniqueIndex" json:"external_id,omitempty"`
	Scores     []Score   `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
