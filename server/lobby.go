package server

import (
	"log"
	"sync"

	"github.com/TheYellowSparrow/astrocade-volleyball/game"
)

// Lobby is the directory of live rooms. Rooms are created on first join
// and removed when their roster empties.
type Lobby struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	// OnChange runs after any room membership mutation; the server hooks
	// it to fan a fresh directory snapshot out to every connection.
	OnChange func()
}

// NewLobby creates an empty room directory.
func NewLobby() *Lobby {
	return &Lobby{rooms: make(map[string]*Room)}
}

// GetOrCreate returns the room for the given id, creating it if needed.
func (l *Lobby) GetOrCreate(id string) *Room {
	l.mu.RLock()
	r, exists := l.rooms[id]
	l.mu.RUnlock()
	if exists {
		return r
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Double check after acquiring write lock
	if r, exists = l.rooms[id]; exists {
		return r
	}
	log.Printf("Lobby: creating room %s.", id)
	r = newRoom(id, l)
	l.rooms[id] = r
	return r
}

// Get returns the room for the given id, if present.
func (l *Lobby) Get(id string) (*Room, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, exists := l.rooms[id]
	return r, exists
}

// List snapshots the directory: one entry per live room with its current
// player count and capacity.
func (l *Lobby) List() []RoomInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]RoomInfo, 0, len(l.rooms))
	for id, r := range l.rooms {
		out = append(out, RoomInfo{ID: id, Count: r.PlayerCount(), Max: game.RoomCapacity})
	}
	return out
}

// destroyIfEmpty drops the room from the directory and tears it down if
// its roster is empty. The room itself arbitrates: if a player seats
// concurrently, the teardown is abandoned and the room stays listed.
func (l *Lobby) destroyIfEmpty(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, exists := l.rooms[id]
	if !exists {
		return
	}
	if r.markDestroyedIfEmpty() {
		delete(l.rooms, id)
	}
}

// membershipChanged notifies the directory's observer, if any.
func (l *Lobby) membershipChanged() {
	if l.OnChange != nil {
		l.OnChange()
	}
}
