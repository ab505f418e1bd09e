package services

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client without a live socket; outbound frames land
// in its send buffer where tests can read them.
func newTestClient(h *Hub, userID uint, username string) *Client {
	return &Client{
		hub:      h,
		id:       uuid.NewString(),
		send:     make(chan []byte, 16),
		UserID:   userID,
		Username: username,
	}
}

// drainMessages decodes everything buffered for a client, in send order.
func drainMessages(t *testing.T, c *Client) []Message {
	t.Helper()

	var out []Message
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return out
			}
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			out = append(out, msg)
		default:
			return out
		}
	}
}

func payloadMap(t *testing.T, msg Message) map[string]any {
	t.Helper()
	m, ok := msg.Payload.(map[string]any)
	require.True(t, ok, "payload of %s is not an object", msg.Type)
	return m
}

func messageTypes(msgs []Message) []string {
	types := make([]string, len(msgs))
	for i, m := range msgs {
		types[i] = m.Type
	}
	return types
}

// fakeSessionStore records mirror calls and optionally fails them all, to
// prove persistence failures never affect in-memory state.
type fakeSessionStore struct {
	mu sync.Mutex

	failAll bool

	created      []string
	updates      []storeUpdate
	scoreCreates []storeScore
	scoreDeletes []storeScore
	resultsFor   []string
}

type storeUpdate struct {
	Code    string
	Players int
	Active  bool
	Phase   GamePhase
}

type storeScore struct {
	UserID uint
	Code   string
}

func (f *fakeSessionStore) CreateSession(code string, hostUserID uint, maxPlayers int, state *GameState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	f.created = append(f.created, code)
	return nil
}

func (f *fakeSessionStore) UpdateSession(code string, currentPlayers int, state *GameState, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	f.updates = append(f.updates, storeUpdate{
		Code:    code,
		Players: currentPlayers,
		Active:  active,
		Phase:   state.GamePhase,
	})
	return nil
}

func (f *fakeSessionStore) CreatePlayerScore(userID uint, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	f.scoreCreates = append(f.scoreCreates, storeScore{UserID: userID, Code: code})
	return nil
}

func (f *fakeSessionStore) DeletePlayerScore(userID uint, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	f.scoreDeletes = append(f.scoreDeletes, storeScore{UserID: userID, Code: code})
	return nil
}

func (f *fakeSessionStore) RecordResult(code string, state *GameState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("store down")
	}
	f.resultsFor = append(f.resultsFor, code)
	return nil
}

func (f *fakeSessionStore) lastUpdate(t *testing.T) storeUpdate {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.updates)
	return f.updates[len(f.updates)-1]
}
