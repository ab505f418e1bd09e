package services

import (
	"crypto/rand"
	"log"
	"strings"
	"sync"
)

const (
	sessionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	sessionCodeLength   = 6
)

// RoomRegistry owns the mapping from session code to live Room. Lock
// ordering is registry before room; nothing takes the registry lock while
// holding a room lock.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]*Room),
	}
}

// CreateRoom registers a new room under a freshly generated session code,
// with the creating connection as host and sole, not-ready player.
// Generation retries on collision with a live code.
func (r *RoomRegistry) CreateRoom(host *Client, maxPlayers int) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for {
		code = generateSessionCode()
		if _, taken := r.rooms[code]; !taken {
			break
		}
		log.Printf("Session code collision on %s, regenerating", code)
	}

	room := newRoom(code, host, maxPlayers)
	r.rooms[code] = room
	return room
}

// Lookup resolves a session code case-insensitively.
func (r *RoomRegistry) Lookup(sessionCode string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[strings.ToUpper(sessionCode)]
	return room, ok
}

// Retire removes an emptied room from the registry. It re-checks membership
// under both locks, so a join that slipped in after the last leave keeps the
// room alive; once retired, the room rejects further joins.
func (r *RoomRegistry) Retire(room *Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed || len(room.members) > 0 {
		return false
	}
	room.closed = true
	delete(r.rooms, room.SessionCode)
	return true
}

// RoomCount reports the number of live rooms.
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func generateSessionCode() string {
	// Bytes past the largest multiple of the alphabet size are rejected,
	// keeping every character equally likely.
	const limit = 256 - 256%len(sessionCodeAlphabet)

	b := make([]byte, 0, sessionCodeLength)
	buf := make([]byte, sessionCodeLength)
	for len(b) < sessionCodeLength {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand failing is unrecoverable for code generation
			panic(err)
		}
		for _, v := range buf {
			if int(v) >= limit {
				continue
			}
			b = append(b, sessionCodeAlphabet[int(v)%len(sessionCodeAlphabet)])
			if len(b) == sessionCodeLength {
				break
			}
		}
	}
	return string(b)
}
