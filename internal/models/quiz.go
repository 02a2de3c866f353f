package models

import "time"

type Quiz struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChatID      string    `gorm:"size:64;not null;uniqueIndex:idx_chat_fingerprint" json:"chat_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Fingerprint string    `gorm:"size:32;not null;uniqueIndex:idx_chat_fingerprint" json:"fingerprint"`
	Tag         *string   `gorm:"size:100;index" json:"tag,omitempty"`
	Scores      []Score   `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
