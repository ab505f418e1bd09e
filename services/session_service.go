package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"twitchgame/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SessionStore is the persistence collaborator the coordinator mirrors into.
// Calls are best effort: a failure is logged by the caller and never rolls
// back in-memory state, which stays authoritative while a room is live.
type SessionStore interface {
	CreateSession(sessionCode string, hostUserID uint, maxPlayers int, state *GameState) error
	UpdateSession(sessionCode string, currentPlayers int, state *GameState, active bool) error
	CreatePlayerScore(userID uint, sessionCode string) error
	DeletePlayerScore(userID uint, sessionCode string) error
	RecordResult(sessionCode string, state *GameState) error
}

// SessionService implements SessionStore on Postgres via gorm and keeps a
// live game-state mirror in Redis for the read-only REST surface.
type SessionService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewSessionService(db *gorm.DB, redis *redis.Client) *SessionService {
	return &SessionService{
		db:    db,
		redis: redis,
	}
}

const sessionStateTTL = 2 * time.Hour

func (s *SessionService) CreateSession(sessionCode string, hostUserID uint, maxPlayers int, state *GameState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	session := models.GameSession{
		SessionCode:    sessionCode,
		HostUserID:     hostUserID,
		State:          stateJSON,
		MaxPlayers:     maxPlayers,
		CurrentPlayers: len(state.Players),
		IsActive:       true,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return fmt.Errorf("failed to create session row: %w", err)
	}

	s.mirrorState(sessionCode, stateJSON)
	return nil
}

func (s *SessionService) UpdateSession(sessionCode string, currentPlayers int, state *GameState, active bool) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	result := s.db.Model(&models.GameSession{}).
		Where("session_code = ?", sessionCode).
		Updates(map[string]any{
			"current_players": currentPlayers,
			"state":           stateJSON,
			"is_active":       active,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update session row: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	if active {
		s.mirrorState(sessionCode, stateJSON)
	} else {
		if err := s.redis.Del(context.Background(), stateKey(sessionCode)).Err(); err != nil {
			log.Printf("Failed to drop state mirror for session %s: %v", sessionCode, err)
		}
	}
	return nil
}

func (s *SessionService) CreatePlayerScore(userID uint, sessionCode string) error {
	session, err := s.findByCode(sessionCode)
	if err != nil {
		return err
	}

	score := models.PlayerScore{
		UserID:        userID,
		GameSessionID: session.ID,
		Score:         0,
		JoinedAt:      time.Now(),
	}
	if err := s.db.Create(&score).Error; err != nil {
		return fmt.Errorf("failed to create player score row: %w", err)
	}
	return nil
}

func (s *SessionService) DeletePlayerScore(userID uint, sessionCode string) error {
	session, err := s.findByCode(sessionCode)
	if err != nil {
		return err
	}

	// Hard delete: a soft-deleted row would still hold the unique
	// (user, session) index and block a rejoin.
	if err := s.db.Unscoped().
		Where("user_id = ? AND game_session_id = ?", userID, session.ID).
		Delete(&models.PlayerScore{}).Error; err != nil {
		return fmt.Errorf("failed to delete player score row: %w", err)
	}
	return nil
}

// RecordResult writes the final scores of a finished game and folds them
// into the leaderboard. The winner is the top scorer, ties broken by join
// order.
func (s *SessionService) RecordResult(sessionCode string, state *GameState) error {
	session, err := s.findByCode(sessionCode)
	if err != nil {
		return err
	}

	winnerID := uint(0)
	bestScore := -1
	for _, p := range state.Players {
		if p.Score > bestScore {
			bestScore = p.Score
			winnerID = p.UserID
		}
	}

	for _, p := range state.Players {
		if err := s.db.Model(&models.PlayerScore{}).
			Where("user_id = ? AND game_session_id = ?", p.UserID, session.ID).
			Update("score", p.Score).Error; err != nil {
			log.Printf("Failed to store final score for user %d in session %s: %v", p.UserID, sessionCode, err)
		}

		if err := s.bumpLeaderboard(p.UserID, p.Score, p.UserID == winnerID); err != nil {
			log.Printf("Failed to update leaderboard for user %d: %v", p.UserID, err)
		}
	}
	return nil
}

func (s *SessionService) bumpLeaderboard(userID uint, score int, won bool) error {
	winInc := 0
	if won {
		winInc = 1
	}

	var entry models.Leaderboard
	err := s.db.Where("user_id = ?", userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = models.Leaderboard{
			UserID:      userID,
			TotalScore:  score,
			GamesPlayed: 1,
			Wins:        winInc,
		}
		return s.db.Create(&entry).Error
	}
	if err != nil {
		return err
	}

	return s.db.Model(&entry).Updates(map[string]any{
		"total_score":  gorm.Expr("total_score + ?", score),
		"games_played": gorm.Expr("games_played + 1"),
		"wins":         gorm.Expr("wins + ?", winInc),
	}).Error
}

// ActiveSessions lists the 20 most recent live sessions for the lobby view.
func (s *SessionService) ActiveSessions() ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := s.db.Where("is_active = ?", true).
		Preload("Host").
		Order("created_at DESC").
		Limit(20).
		Find(&sessions).Error
	return sessions, err
}

// SessionByCode loads a session with its host and player scores.
func (s *SessionService) SessionByCode(sessionCode string) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.Where("session_code = ?", strings.ToUpper(sessionCode)).
		Preload("Host").
		Preload("Scores").
		Preload("Scores.User").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// LiveState returns the Redis mirror of a session's game state, falling
// back to the last database snapshot when the mirror is gone.
func (s *SessionService) LiveState(sessionCode string) (*GameState, error) {
	code := strings.ToUpper(sessionCode)

	data, err := s.redis.Get(context.Background(), stateKey(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("Redis error reading state mirror for session %s: %v", code, err)
		}
		session, err := s.findByCode(code)
		if err != nil {
			return nil, err
		}
		data = session.State
	}

	var state GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state for session %s: %w", code, err)
	}
	return &state, nil
}

func (s *SessionService) findByCode(sessionCode string) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.Where("session_code = ?", strings.ToUpper(sessionCode)).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionService) mirrorState(sessionCode string, stateJSON []byte) {
	err := s.redis.Set(context.Background(), stateKey(sessionCode), stateJSON, sessionStateTTL).Err()
	if err != nil {
		log.Printf("Failed to mirror state for session %s: %v", sessionCode, err)
	}
}

func stateKey(sessionCode string) string {
	return "session:" + strings.ToUpper(sessionCode)
}
