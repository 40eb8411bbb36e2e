package server

import (
	"sync"
	"testing"

	"github.com/TheYellowSparrow/astrocade-volleyball/game"
)

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	lobby := NewLobby()
	r1 := lobby.GetOrCreate("R1")
	r2 := lobby.GetOrCreate("R1")
	if r1 != r2 {
		t.Fatalf("GetOrCreate returned distinct rooms for one id")
	}
}

func TestGetOrCreateConcurrentCreatesOne(t *testing.T) {
	lobby := NewLobby()
	rooms := make([]*Room, 16)
	var wg sync.WaitGroup
	for i := range rooms {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rooms[i] = lobby.GetOrCreate("R1")
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(rooms); i++ {
		if rooms[i] != rooms[0] {
			t.Fatalf("concurrent GetOrCreate produced distinct rooms")
		}
	}
}

func TestListReflectsCountsAfterMutation(t *testing.T) {
	lobby := NewLobby()
	room := lobby.GetOrCreate("R1")

	c := newTestClient("c1")
	if err := room.Join(c, "a"); err != nil {
		t.Fatalf("join: %v", err)
	}

	list := lobby.List()
	if len(list) != 1 {
		t.Fatalf("list size = %d, want 1", len(list))
	}
	if list[0].ID != "R1" || list[0].Count != 1 || list[0].Max != game.RoomCapacity {
		t.Fatalf("list entry = %+v", list[0])
	}

	room.Leave(c, "left")
	if len(lobby.List()) != 0 {
		t.Fatalf("empty room still listed: %v", lobby.List())
	}
}

func TestDestroyIfEmptyKeepsPopulatedRooms(t *testing.T) {
	lobby := NewLobby()
	room := lobby.GetOrCreate("R1")
	c := newTestClient("c1")
	if err := room.Join(c, "a"); err != nil {
		t.Fatalf("join: %v", err)
	}

	lobby.destroyIfEmpty("R1")
	if _, exists := lobby.Get("R1"); !exists {
		t.Fatalf("destroyIfEmpty removed a populated room")
	}

	lobby.destroyIfEmpty("does-not-exist") // must not panic
}

func TestOnChangeFiresPerMembershipMutation(t *testing.T) {
	lobby := NewLobby()
	changes := 0
	lobby.OnChange = func() { changes++ }

	room := lobby.GetOrCreate("R1")
	c1 := newTestClient("c1")
	c2 := newTestClient("c2")
	room.Join(c1, "a")
	room.Join(c2, "b")
	room.Leave(c1, "left")
	room.Leave(c2, "left")

	if changes != 4 {
		t.Fatalf("OnChange fired %d times for 4 mutations", changes)
	}
}

func TestJoinRejectedOnceRoomDestroyed(t *testing.T) {
	lobby := NewLobby()
	stale := lobby.GetOrCreate("R1")
	lobby.destroyIfEmpty("R1")

	c := newTestClient("c1")
	if err := stale.Join(c, "a"); err != ErrRoomNotFound {
		t.Fatalf("join on destroyed room: err = %v, want ErrRoomNotFound", err)
	}
	if c.Room() != nil {
		t.Fatalf("rejected client still holds a room reference")
	}
	if _, exists := lobby.Get("R1"); exists {
		t.Fatalf("destroyed room still listed in the directory")
	}

	// A fresh lookup hands out a live replacement, never the dead room.
	fresh := lobby.GetOrCreate("R1")
	if fresh == stale {
		t.Fatalf("directory returned the destroyed room")
	}
	if err := fresh.Join(c, "a"); err != nil {
		t.Fatalf("join on recreated room: %v", err)
	}
	if got := fresh.PlayerCount(); got != 1 {
		t.Fatalf("recreated room roster size = %d, want 1", got)
	}
}
