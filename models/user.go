package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	TwitchID        string         `json:"twitch_id" gorm:"uniqueIndex;not null"`
	Username        string         `json:"username" gorm:"uniqueIndex;not null"`
	DisplayName     string         `json:"display_name"`
	ProfileImageURL string         `json:"profile_image_url"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	HostedSessions []GameSession `json:"hosted_sessions,omitempty" gorm:"foreignKey:HostUserID"`
	Scores         []PlayerScore `json:"scores,omitempty" gorm:"foreignKey:UserID"`
}
