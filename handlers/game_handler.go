package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"twitchgame/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	sessionService *services.SessionService
}

func NewGameHandler(sessionService *services.SessionService) *GameHandler {
	return &GameHandler{sessionService: sessionService}
}

// ActiveSessions lists the most recent live sessions for the lobby.
func (h *GameHandler) ActiveSessions(c *gin.Context) {
	sessions, err := h.sessionService.ActiveSessions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch active games"})
		return
	}

	games := make([]gin.H, 0, len(sessions))
	for _, session := range sessions {
		games = append(games, gin.H{
			"sessionCode":    session.SessionCode,
			"hostUserId":     session.HostUserID,
			"hostUsername":   session.Host.Username,
			"maxPlayers":     session.MaxPlayers,
			"currentPlayers": session.CurrentPlayers,
			"isActive":       session.IsActive,
			"createdAt":      session.CreatedAt,
			"status":         sessionPhase(session.State),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   games,
		"count":   len(games),
	})
}

// GetSession returns one session with its players and, when the session is
// live, the current game state from the mirror.
func (h *GameHandler) GetSession(c *gin.Context) {
	sessionCode := c.Param("sessionCode")

	session, err := h.sessionService.SessionByCode(sessionCode)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Game session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch game details"})
		return
	}

	var gameState any
	if state, err := h.sessionService.LiveState(session.SessionCode); err == nil {
		gameState = state
	}

	players := make([]gin.H, 0, len(session.Scores))
	for _, score := range session.Scores {
		players = append(players, gin.H{
			"user":     score.User,
			"score":    score.Score,
			"joinedAt": score.JoinedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"game": gin.H{
			"sessionCode":    session.SessionCode,
			"host":           session.Host,
			"gameState":      gameState,
			"maxPlayers":     session.MaxPlayers,
			"currentPlayers": session.CurrentPlayers,
			"isActive":       session.IsActive,
			"createdAt":      session.CreatedAt,
			"players":        players,
		},
	})
}

func sessionPhase(stateJSON []byte) services.GamePhase {
	var state services.GameState
	if err := json.Unmarshal(stateJSON, &state); err != nil || state.GamePhase == "" {
		return services.PhaseWaiting
	}
	return state.GamePhase
}
