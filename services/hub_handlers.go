package services

import (
	"errors"
	"log"
	"time"
)

// Message handlers. Each one resolves the room, runs the room-level critical
// section, then mirrors the outcome to the session store. Store failures are
// logged and never undo the in-memory mutation: the room keeps working for
// connected clients.

func (h *Hub) handleCreateGame(c *Client, p CreateGamePayload) {
	if c.room != nil {
		c.sendError(clientErrorMessage(ErrAlreadyInGame))
		return
	}

	maxPlayers := p.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}

	room := h.registry.CreateRoom(c, maxPlayers)
	c.room = room
	state := room.Snapshot()

	if err := h.store.CreateSession(room.SessionCode, c.UserID, maxPlayers, &state); err != nil {
		log.Printf("Failed to persist session %s: %v", room.SessionCode, err)
	}
	if err := h.store.CreatePlayerScore(c.UserID, room.SessionCode); err != nil {
		log.Printf("Failed to persist host score for session %s: %v", room.SessionCode, err)
	}

	c.sendMessage(TypeGameCreated, map[string]any{
		"sessionCode": room.SessionCode,
		"gameState":   state,
		"players": []map[string]any{
			{"userId": c.UserID, "username": c.Username},
		},
	})

	log.Printf("Game created: %s by %s", room.SessionCode, c.Username)
}

func (h *Hub) handleJoinGame(c *Client, p JoinGamePayload) {
	if c.room != nil {
		c.sendError(clientErrorMessage(ErrAlreadyInGame))
		return
	}

	room, ok := h.registry.Lookup(p.SessionCode)
	if !ok {
		c.sendError("Game session not found")
		return
	}

	state, err := room.Join(c)
	if err != nil {
		c.sendError(clientErrorMessage(err))
		return
	}
	c.room = room

	if err := h.store.CreatePlayerScore(c.UserID, room.SessionCode); err != nil {
		log.Printf("Failed to persist score row for user %d in session %s: %v", c.UserID, room.SessionCode, err)
	}
	if err := h.store.UpdateSession(room.SessionCode, len(state.Players), &state, true); err != nil {
		log.Printf("Failed to mirror session %s after join: %v", room.SessionCode, err)
	}

	log.Printf("User %s joined game %s", c.Username, room.SessionCode)
}

func (h *Hub) handleLeaveGame(c *Client, p LeaveGamePayload) {
	room, ok := h.registry.Lookup(p.SessionCode)
	if !ok {
		return
	}

	state, empty, err := room.Leave(c.UserID, c.Username)
	if err != nil {
		return
	}
	if c.room == room {
		c.room = nil
	}

	h.mirrorRemoval(room, c.UserID, state, empty)
	log.Printf("User %s left game %s", c.Username, room.SessionCode)
}

func (h *Hub) handleGameAction(c *Client, p GameActionPayload) {
	room, ok := h.registry.Lookup(p.SessionCode)
	if !ok {
		c.sendError("Game session not found")
		return
	}

	// Extension point: game-specific rules would interpret the action here.
	room.BroadcastEvent(TypeGameAction, map[string]any{
		"userId":    c.UserID,
		"action":    p.Action,
		"timestamp": time.Now().UnixMilli(),
	})
}

func (h *Hub) handleChatMessage(c *Client, p ChatMessagePayload) {
	room, ok := h.registry.Lookup(p.SessionCode)
	if !ok {
		return
	}

	room.BroadcastEvent(TypeChatMessage, map[string]any{
		"userId":    c.UserID,
		"username":  c.Username,
		"message":   p.Message,
		"timestamp": time.Now().UnixMilli(),
	})
}

func (h *Hub) handleReadyState(c *Client, p ReadyStatePayload) {
	room, ok := h.registry.Lookup(p.SessionCode)
	if !ok {
		return
	}

	started, state, err := room.SetReady(c.UserID, p.IsReady)
	if err != nil {
		return
	}

	if started {
		if err := h.store.UpdateSession(room.SessionCode, len(state.Players), &state, true); err != nil {
			log.Printf("Failed to mirror session %s after start: %v", room.SessionCode, err)
		}
		log.Printf("Game %s started with %d players", room.SessionCode, len(state.Players))
	}
}

func (h *Hub) handleEndGame(c *Client, p EndGamePayload) {
	room, ok := h.registry.Lookup(p.SessionCode)
	if !ok {
		c.sendError("Game session not found")
		return
	}

	state, err := room.Finish(c.UserID)
	if err != nil {
		c.sendError(clientErrorMessage(err))
		return
	}

	if err := h.store.UpdateSession(room.SessionCode, len(state.Players), &state, false); err != nil {
		log.Printf("Failed to mirror session %s after finish: %v", room.SessionCode, err)
	}
	if err := h.store.RecordResult(room.SessionCode, &state); err != nil {
		log.Printf("Failed to record result for session %s: %v", room.SessionCode, err)
	}

	log.Printf("Game %s finished by host %s", room.SessionCode, c.Username)
}

// handleDisconnect runs the same membership-removal path as an explicit
// leave; disconnection is the only cancellation trigger.
func (h *Hub) handleDisconnect(c *Client) {
	log.Printf("User %s (%d) disconnected", c.Username, c.UserID)

	room := c.room
	if room == nil {
		return
	}
	c.room = nil

	state, empty, err := room.Disconnect(c.UserID, c.Username)
	if err != nil {
		return
	}

	h.mirrorRemoval(room, c.UserID, state, empty)
}

// mirrorRemoval persists a member removal and retires the room if it
// emptied. Retire re-checks membership, so a join racing the last leave
// keeps the room alive.
func (h *Hub) mirrorRemoval(room *Room, userID uint, state GameState, empty bool) {
	if err := h.store.DeletePlayerScore(userID, room.SessionCode); err != nil {
		log.Printf("Failed to delete score row for user %d in session %s: %v", userID, room.SessionCode, err)
	}

	retired := false
	if empty {
		retired = h.registry.Retire(room)
	}

	// A finished session never flips back to active when stragglers leave.
	active := !retired && state.GamePhase != PhaseFinished
	if err := h.store.UpdateSession(room.SessionCode, room.PlayerCount(), &state, active); err != nil {
		log.Printf("Failed to mirror session %s after removal: %v", room.SessionCode, err)
	}

	if retired {
		log.Printf("Game session %s ended (no players)", room.SessionCode)
	}
}

func clientErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "Game session not found"
	case errors.Is(err, ErrSessionFull):
		return "Game is full"
	case errors.Is(err, ErrAlreadyJoined):
		return "Already in this game"
	case errors.Is(err, ErrAlreadyInGame):
		return "Already in a game"
	case errors.Is(err, ErrNotHost):
		return "Only the host can end the game"
	case errors.Is(err, ErrNotInProgress):
		return "Game is not in progress"
	default:
		return err.Error()
	}
}
