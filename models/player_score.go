package models

import (
	"time"

	"gorm.io/gorm"
)

type PlayerScore struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"not null;uniqueIndex:idx_player_session"`
	GameSessionID uint           `json:"game_session_id" gorm:"not null;uniqueIndex:idx_player_session"`
	Score         int            `json:"score" gorm:"not null;default:0"`
	JoinedAt      time.Time      `json:"joined_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	User        User        `json:"user,omitempty"`
	GameSession GameSession `json:"game_session,omitempty"`
}
