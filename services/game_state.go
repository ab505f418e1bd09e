package services

import "time"

type GamePhase string

// Phases only ever advance waiting -> playing -> finished.
const (
	PhaseWaiting  GamePhase = "waiting"
	PhasePlaying  GamePhase = "playing"
	PhaseFinished GamePhase = "finished"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlayerState carries the per-member mutable game attributes. Position and
// health are transported but not interpreted by the coordinator; they are
// extension points for game-specific rules.
type PlayerState struct {
	UserID   uint     `json:"userId"`
	Position Position `json:"position"`
	Health   int      `json:"health"`
	Score    int      `json:"score"`
	IsReady  bool     `json:"isReady"`
}

// GameState is owned by its Room and mutated only under the room lock.
// Players are kept in join order and in lock-step with room membership.
type GameState struct {
	Players   []PlayerState  `json:"players"`
	GamePhase GamePhase      `json:"gamePhase"`
	Round     int            `json:"round"`
	Scores    map[string]int `json:"scores"`
	StartedAt *time.Time     `json:"startedAt,omitempty"`
	EndedAt   *time.Time     `json:"endedAt,omitempty"`
}

func newGameState(hostUserID uint) GameState {
	return GameState{
		Players:   []PlayerState{newPlayerState(hostUserID)},
		GamePhase: PhaseWaiting,
		Round:     1,
		Scores:    make(map[string]int),
	}
}

func newPlayerState(userID uint) PlayerState {
	return PlayerState{
		UserID:   userID,
		Position: Position{X: 0, Y: 0},
		Health:   100,
		Score:    0,
		IsReady:  false,
	}
}

// clone returns a deep copy safe to hand out after the room lock is
// released.
func (s *GameState) clone() GameState {
	out := *s
	out.Players = make([]PlayerState, len(s.Players))
	copy(out.Players, s.Players)
	out.Scores = make(map[string]int, len(s.Scores))
	for k, v := range s.Scores {
		out.Scores[k] = v
	}
	return out
}
