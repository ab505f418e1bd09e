package services

import (
	"encoding/json"
	"fmt"
)

// Inbound message types.
const (
	TypeCreateGame  = "create_game"
	TypeJoinGame    = "join_game"
	TypeLeaveGame   = "leave_game"
	TypeGameAction  = "game_action"
	TypeChatMessage = "chat_message"
	TypeReadyState  = "ready_state"
	TypeEndGame     = "end_game"
)

// Outbound message types.
const (
	TypeConnected          = "connected"
	TypeGameCreated        = "game_created"
	TypePlayerJoined       = "player_joined"
	TypePlayerLeft         = "player_left"
	TypePlayerDisconnected = "player_disconnected"
	TypeReadyStateUpdated  = "ready_state_updated"
	TypeGameStarted        = "game_started"
	TypeGameFinished       = "game_finished"
	TypeError              = "error"
)

// DefaultMaxPlayers applies when create_game omits maxPlayers.
const DefaultMaxPlayers = 4

// Envelope is the wire format in both directions: one JSON object per
// websocket frame, tagged by type.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Message is the outbound counterpart; payloads are built server-side so
// they marshal directly.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type CreateGamePayload struct {
	MaxPlayers int `json:"maxPlayers"`
}

type JoinGamePayload struct {
	SessionCode string `json:"sessionCode"`
}

type LeaveGamePayload struct {
	SessionCode string `json:"sessionCode"`
}

type GameActionPayload struct {
	SessionCode string          `json:"sessionCode"`
	Action      json.RawMessage `json:"action"`
}

type ChatMessagePayload struct {
	SessionCode string `json:"sessionCode"`
	Message     string `json:"message"`
}

type ReadyStatePayload struct {
	SessionCode string `json:"sessionCode"`
	IsReady     bool   `json:"isReady"`
}

type EndGamePayload struct {
	SessionCode string `json:"sessionCode"`
}

// decodeInbound parses one frame into its typed payload. Malformed JSON and
// unknown type tags come back as errors; neither closes the connection.
func decodeInbound(data []byte) (string, any, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("malformed message: %w", err)
	}

	switch env.Type {
	case TypeCreateGame:
		var p CreateGamePayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return env.Type, nil, err
		}
		return env.Type, p, nil

	case TypeJoinGame:
		var p JoinGamePayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return env.Type, nil, err
		}
		return env.Type, p, nil

	case TypeLeaveGame:
		var p LeaveGamePayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return env.Type, nil, err
		}
		return env.Type, p, nil

	case TypeGameAction:
		var p GameActionPayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return env.Type, nil, err
		}
		return env.Type, p, nil

	case TypeChatMessage:
		var p ChatMessagePayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return env.Type, nil, err
		}
		return env.Type, p, nil

	case TypeReadyState:
		var p ReadyStatePayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return env.Type, nil, err
		}
		return env.Type, p, nil

	case TypeEndGame:
		var p EndGamePayload
		if err := unmarshalPayload(env.Payload, &p); err != nil {
			return env.Type, nil, err
		}
		return env.Type, p, nil

	default:
		return env.Type, nil, &UnknownMessageError{Type: env.Type}
	}
}

func unmarshalPayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}
	return nil
}

func encodeMessage(msgType string, payload any) ([]byte, error) {
	return json.Marshal(Message{Type: msgType, Payload: payload})
}
