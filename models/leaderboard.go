package models

import (
	"time"

	"gorm.io/gorm"
)

type Leaderboard struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	TotalScore  int            `json:"total_score" gorm:"not null;default:0"`
	GamesPlayed int            `json:"games_played" gorm:"not null;default:0"`
	Wins        int            `json:"wins" gorm:"not null;default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User User `json:"user,omitempty"`
}
