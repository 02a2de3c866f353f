package models

import "time"

type Score struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	ParticipantID uint        `gorm:"not null;index" json:"participant_id"`
	Participant   Participant `gorm:"foreignKey:ParticipantID;constraint:OnDelete:CASCADE" json:"-"`
	QuizID        uint        `gorm:"not null;index" json:"quiz_id"`
	Quiz          Quiz        `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
	Score         int         `gorm:"not null" json:"score"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
