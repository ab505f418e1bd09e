package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name     string
		frame    string
		validate func(t *testing.T, payload any)
	}{
		{
			name:  "create_game with maxPlayers",
			frame: `{"type":"create_game","payload":{"maxPlayers":2}}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(CreateGamePayload)
				require.True(t, ok)
				assert.Equal(t, 2, p.MaxPlayers)
			},
		},
		{
			name:  "create_game without payload leaves the default to the handler",
			frame: `{"type":"create_game"}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(CreateGamePayload)
				require.True(t, ok)
				assert.Equal(t, 0, p.MaxPlayers)
			},
		},
		{
			name:  "join_game",
			frame: `{"type":"join_game","payload":{"sessionCode":"ABC123"}}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(JoinGamePayload)
				require.True(t, ok)
				assert.Equal(t, "ABC123", p.SessionCode)
			},
		},
		{
			name:  "leave_game",
			frame: `{"type":"leave_game","payload":{"sessionCode":"ABC123"}}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(LeaveGamePayload)
				require.True(t, ok)
				assert.Equal(t, "ABC123", p.SessionCode)
			},
		},
		{
			name:  "game_action keeps the action opaque",
			frame: `{"type":"game_action","payload":{"sessionCode":"ABC123","action":{"type":"move","direction":"up"}}}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(GameActionPayload)
				require.True(t, ok)
				assert.Equal(t, "ABC123", p.SessionCode)
				assert.JSONEq(t, `{"type":"move","direction":"up"}`, string(p.Action))
			},
		},
		{
			name:  "chat_message",
			frame: `{"type":"chat_message","payload":{"sessionCode":"ABC123","message":"gg"}}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(ChatMessagePayload)
				require.True(t, ok)
				assert.Equal(t, "gg", p.Message)
			},
		},
		{
			name:  "ready_state",
			frame: `{"type":"ready_state","payload":{"sessionCode":"ABC123","isReady":true}}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(ReadyStatePayload)
				require.True(t, ok)
				assert.True(t, p.IsReady)
			},
		},
		{
			name:  "end_game",
			frame: `{"type":"end_game","payload":{"sessionCode":"ABC123"}}`,
			validate: func(t *testing.T, payload any) {
				p, ok := payload.(EndGamePayload)
				require.True(t, ok)
				assert.Equal(t, "ABC123", p.SessionCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, payload, err := decodeInbound([]byte(tt.frame))
			require.NoError(t, err)
			tt.validate(t, payload)
		})
	}
}

func TestDecodeInboundMalformed(t *testing.T) {
	_, _, err := decodeInbound([]byte(`{not json`))
	require.Error(t, err)

	var unknown *UnknownMessageError
	assert.False(t, errors.As(err, &unknown), "malformed JSON is not an unknown kind")
}

func TestDecodeInboundMalformedPayload(t *testing.T) {
	_, _, err := decodeInbound([]byte(`{"type":"join_game","payload":"not-an-object"}`))
	require.Error(t, err)
}

func TestDecodeInboundUnknownType(t *testing.T) {
	_, _, err := decodeInbound([]byte(`{"type":"teleport","payload":{}}`))
	require.Error(t, err)

	var unknown *UnknownMessageError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "teleport", unknown.Type)
}

func TestEncodeMessage(t *testing.T) {
	data, err := encodeMessage(TypeError, map[string]any{"message": "Game is full"})
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, TypeError, msg.Type)
	assert.Equal(t, "Game is full", payloadMap(t, msg)["message"])
}
