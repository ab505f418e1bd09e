package models

import (
	"time"

	"gorm.io/gorm"
)

type GameSession struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	SessionCode    string         `json:"session_code" gorm:"uniqueIndex;not null"`
	HostUserID     uint           `json:"host_user_id" gorm:"not null"`
	State          []byte         `json:"-" gorm:"type:jsonb"` // serialized GameState snapshot
	MaxPlayers     int            `json:"max_players" gorm:"not null;default:4"`
	CurrentPlayers int            `json:"current_players" gorm:"not null;default:1"`
	IsActive       bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Host   User          `json:"host,omitempty" gorm:"foreignKey:HostUserID"`
	Scores []PlayerScore `json:"scores,omitempty" gorm:"foreignKey:GameSessionID"`
}
