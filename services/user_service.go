package services

import (
	"errors"
	"fmt"

	"twitchgame/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UpdateProfileRequest struct {
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

type LeaderboardEntry struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	TotalScore  int    `json:"total_score"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Rank        int    `json:"rank"`
}

func (s *UserService) Profile(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.Profile(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.DisplayName != "" {
		updates["display_name"] = req.DisplayName
	}
	if req.ProfileImageURL != "" {
		updates["profile_image_url"] = req.ProfileImageURL
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// Stats returns a user's leaderboard row, zero-valued when the user has not
// finished a game yet.
func (s *UserService) Stats(userID uint) (*models.Leaderboard, error) {
	var entry models.Leaderboard
	err := s.db.Where("user_id = ?", userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Leaderboard{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Leaderboard lists the top entries by total score with computed ranks.
func (s *UserService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var rows []models.Leaderboard
	err := s.db.Preload("User").
		Order("total_score DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, LeaderboardEntry{
			UserID:      row.UserID,
			Username:    row.User.Username,
			TotalScore:  row.TotalScore,
			GamesPlayed: row.GamesPlayed,
			Wins:        row.Wins,
			Rank:        i + 1,
		})
	}
	return entries, nil
}
