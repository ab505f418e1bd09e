package services

import (
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomCodes(t *testing.T) {
	registry := NewRoomRegistry()
	codePattern := regexp.MustCompile(`^[A-Z0-9]{6}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		host := newTestClient(nil, uint(i+1), "host")
		room := registry.CreateRoom(host, 4)

		assert.Regexp(t, codePattern, room.SessionCode)
		assert.False(t, seen[room.SessionCode], "duplicate live code %s", room.SessionCode)
		seen[room.SessionCode] = true
	}
	assert.Equal(t, 50, registry.RoomCount())
}

// Every alphabet character must be equally likely in generated codes.
func TestSessionCodeUniformity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping distribution test in short mode")
	}

	const samples = 40000
	counts := make(map[byte]int, len(sessionCodeAlphabet))
	for i := 0; i < samples; i++ {
		code := generateSessionCode()
		require.Len(t, code, sessionCodeLength)
		for j := 0; j < len(code); j++ {
			counts[code[j]]++
		}
	}

	// ~6667 expected per character over 240000 draws. An 8% band is many
	// sigma of random noise away, while a byte-modulo draw would push A-D
	// to roughly 114% of expected.
	expected := samples * sessionCodeLength / len(sessionCodeAlphabet)
	for i := 0; i < len(sessionCodeAlphabet); i++ {
		ch := sessionCodeAlphabet[i]
		assert.Greater(t, counts[ch], expected*92/100, "character %c underrepresented", ch)
		assert.Less(t, counts[ch], expected*108/100, "character %c overrepresented", ch)
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	registry := NewRoomRegistry()
	room := registry.CreateRoom(newTestClient(nil, 1, "alice"), 4)

	found, ok := registry.Lookup(strings.ToLower(room.SessionCode))
	require.True(t, ok)
	assert.Same(t, room, found)

	_, ok = registry.Lookup("NOPE99")
	assert.False(t, ok)
}

func TestRetire(t *testing.T) {
	registry := NewRoomRegistry()
	room := registry.CreateRoom(newTestClient(nil, 1, "alice"), 4)

	// occupied rooms survive
	assert.False(t, registry.Retire(room))

	_, empty, err := room.Leave(1, "alice")
	require.NoError(t, err)
	require.True(t, empty)

	assert.True(t, registry.Retire(room))
	_, ok := registry.Lookup(room.SessionCode)
	assert.False(t, ok, "retired room must not resolve")
	assert.False(t, registry.Retire(room), "retire is idempotent")

	// a retired room rejects late joins even via a stale pointer
	_, err = room.Join(newTestClient(nil, 2, "bob"))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRetireYieldsToLateJoin(t *testing.T) {
	registry := NewRoomRegistry()
	room := registry.CreateRoom(newTestClient(nil, 1, "alice"), 4)

	_, empty, err := room.Leave(1, "alice")
	require.NoError(t, err)
	require.True(t, empty)

	// a join lands between the leave and the retire
	_, err = room.Join(newTestClient(nil, 2, "bob"))
	require.NoError(t, err)

	assert.False(t, registry.Retire(room))
	_, ok := registry.Lookup(room.SessionCode)
	assert.True(t, ok, "room with a member must stay registered")
}

// Two joins racing for the last slot: exactly one may win.
func TestConcurrentJoinLastSlot(t *testing.T) {
	registry := NewRoomRegistry()
	room := registry.CreateRoom(newTestClient(nil, 1, "alice"), 2)

	const contenders = 16
	var (
		wg   sync.WaitGroup
		won  int32
		full int32
	)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c := newTestClient(nil, uint(100+id), "contender")
			_, err := room.Join(c)
			switch {
			case err == nil:
				atomic.AddInt32(&won, 1)
			case assert.ErrorIs(t, err, ErrSessionFull):
				atomic.AddInt32(&full, 1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), won)
	assert.Equal(t, int32(contenders-1), full)
	assert.Equal(t, 2, room.PlayerCount())
	assert.Len(t, room.Snapshot().Players, 2)
}

func TestConcurrentCreateAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	registry := NewRoomRegistry()

	const goroutines = 32
	var wg sync.WaitGroup
	codes := make(chan string, goroutines*8)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				host := newTestClient(nil, uint(id*100+j+1), "host")
				room := registry.CreateRoom(host, 4)
				codes <- room.SessionCode
			}
		}(i)
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code])
		seen[code] = true

		_, ok := registry.Lookup(code)
		assert.True(t, ok)
	}
	assert.Equal(t, goroutines*8, registry.RoomCount())
}
