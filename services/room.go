package services

import (
	"log"
	"sync"
	"time"
)

// Room is the aggregate for one live game session. All membership and
// GameState mutations, and the broadcasts they generate, happen under the
// room mutex, so operations on one room are linearized while unrelated
// rooms proceed concurrently. Persistence mirroring stays outside the lock.
//
// The room tracks member connections but does not own their lifetime; the
// hub does.
type Room struct {
	SessionCode string
	HostUserID  uint
	MaxPlayers  int

	mu      sync.Mutex
	members map[uint]*Client
	state   GameState
	closed  bool
}

func newRoom(sessionCode string, host *Client, maxPlayers int) *Room {
	return &Room{
		SessionCode: sessionCode,
		HostUserID:  host.UserID,
		MaxPlayers:  maxPlayers,
		members:     map[uint]*Client{host.UserID: host},
		state:       newGameState(host.UserID),
	}
}

// Join adds a connection as a new member. The capacity and duplicate checks
// and the membership/GameState mutation are atomic with respect to every
// other operation on this room, so two concurrent joins can never both land
// the last slot.
func (r *Room) Join(c *Client) (GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return GameState{}, ErrSessionNotFound
	}
	if _, exists := r.members[c.UserID]; exists {
		return GameState{}, ErrAlreadyJoined
	}
	if len(r.members) >= r.MaxPlayers {
		return GameState{}, ErrSessionFull
	}

	r.members[c.UserID] = c
	r.state.Players = append(r.state.Players, newPlayerState(c.UserID))

	r.broadcastLocked(TypePlayerJoined, map[string]any{
		"userId":    c.UserID,
		"username":  c.Username,
		"gameState": r.state,
	})

	return r.state.clone(), nil
}

// Leave removes a member after an explicit leave_game. The second return
// reports whether the room emptied; the caller retires it from the registry.
func (r *Room) Leave(userID uint, username string) (GameState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.removeLocked(userID) {
		return GameState{}, false, ErrNotInSession
	}

	r.broadcastLocked(TypePlayerLeft, map[string]any{
		"userId":    userID,
		"username":  username,
		"gameState": r.state,
	})

	return r.state.clone(), len(r.members) == 0, nil
}

// Disconnect runs the same removal as Leave but announces it as a
// player_disconnected event, since the peer did not ask to go.
func (r *Room) Disconnect(userID uint, username string) (GameState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.removeLocked(userID) {
		return GameState{}, false, ErrNotInSession
	}

	r.broadcastLocked(TypePlayerDisconnected, map[string]any{
		"userId":   userID,
		"username": username,
	})

	return r.state.clone(), len(r.members) == 0, nil
}

// removeLocked drops the member and its PlayerState in lock-step.
func (r *Room) removeLocked(userID uint) bool {
	if _, exists := r.members[userID]; !exists {
		return false
	}
	delete(r.members, userID)

	players := r.state.Players[:0]
	for _, p := range r.state.Players {
		if p.UserID != userID {
			players = append(players, p)
		}
	}
	r.state.Players = players
	return true
}

// SetReady flips a member's ready flag. The update is idempotent and always
// broadcast; when it makes every member ready with at least two players in
// a waiting room, the game starts in the same critical section.
func (r *Room) SetReady(userID uint, isReady bool) (bool, GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.state.Players {
		if r.state.Players[i].UserID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, GameState{}, ErrNotInSession
	}

	r.state.Players[idx].IsReady = isReady

	started := false
	if r.state.GamePhase == PhaseWaiting && len(r.state.Players) >= 2 && r.allReadyLocked() {
		now := time.Now()
		r.state.GamePhase = PhasePlaying
		r.state.StartedAt = &now
		started = true

		r.broadcastLocked(TypeGameStarted, map[string]any{
			"gameState": r.state,
		})
	}

	r.broadcastLocked(TypeReadyStateUpdated, map[string]any{
		"userId":    userID,
		"isReady":   isReady,
		"gameState": r.state,
	})

	return started, r.state.clone(), nil
}

func (r *Room) allReadyLocked() bool {
	for _, p := range r.state.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

// Finish completes the phase machine: only the host can end a game, and
// only while it is in progress.
func (r *Room) Finish(userID uint) (GameState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID != r.HostUserID {
		return GameState{}, ErrNotHost
	}
	if r.state.GamePhase != PhasePlaying {
		return GameState{}, ErrNotInProgress
	}

	now := time.Now()
	r.state.GamePhase = PhaseFinished
	r.state.EndedAt = &now

	r.broadcastLocked(TypeGameFinished, map[string]any{
		"gameState": r.state,
	})

	return r.state.clone(), nil
}

// BroadcastEvent fans a server-stamped event out to the current members
// without touching game state (game_action, chat_message).
func (r *Room) BroadcastEvent(msgType string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(msgType, payload)
}

func (r *Room) Snapshot() GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// broadcastLocked delivers one envelope to every current member. A member
// whose send buffer is full is dropped and disconnected; the failure never
// aborts delivery to the rest.
func (r *Room) broadcastLocked(msgType string, payload any) {
	data, err := encodeMessage(msgType, payload)
	if err != nil {
		log.Printf("Error marshaling %s broadcast for session %s: %v", msgType, r.SessionCode, err)
		return
	}

	for _, member := range r.members {
		if !member.enqueue(data) {
			log.Printf("Client %s (user %d) send buffer full in session %s, closing connection",
				member.id, member.UserID, r.SessionCode)
		}
	}
}
