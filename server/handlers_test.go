package server

import (
	"fmt"
	"testing"

	"github.com/TheYellowSparrow/astrocade-volleyball/game"
)

// register wires a test client into the server's connection registry the
// way HandleConnections would, minus the transport.
func register(gs *GameServer, id string) *Client {
	c := newTestClient(id)
	gs.clientsMutex.Lock()
	gs.clients[c] = true
	gs.clientsMutex.Unlock()
	return c
}

func TestMalformedMessagesAreDropped(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")

	gs.handleClientMessage(c, []byte("not json"))
	gs.handleClientMessage(c, []byte(`{"no":"type"}`))
	gs.handleClientMessage(c, []byte(`{"type":""}`))

	assertNoMessage(t, c)
}

func TestUnknownMessageTypeGetsError(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")

	gs.handleClientMessage(c, []byte(`{"type":"teleport"}`))
	errMsg := nextOfType(t, c, "error")
	if errMsg["message"] != "Unknown message type: teleport" {
		t.Fatalf("error message = %v", errMsg["message"])
	}
}

func TestPingEchoesTimestamp(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")

	gs.handleClientMessage(c, []byte(`{"type":"ping","ts":1234567890}`))
	pong := nextOfType(t, c, "pong")
	if pong["ts"].(float64) != 1234567890 {
		t.Fatalf("pong ts = %v, want 1234567890", pong["ts"])
	}
}

func TestJoinWithBlankRoomIsRoomNotFound(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")

	gs.handleClientMessage(c, []byte(`{"type":"join","room":"  ","name":"x"}`))
	errMsg := nextOfType(t, c, "error")
	if errMsg["message"] != ErrRoomNotFound.Error() {
		t.Fatalf("error message = %v, want %v", errMsg["message"], ErrRoomNotFound.Error())
	}
	if len(gs.lobby.List()) != 0 {
		t.Fatalf("blank join leaked a room: %v", gs.lobby.List())
	}
}

func TestHostOnlyOpsOutsideRoomAreRejected(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")

	for _, raw := range []string{
		`{"type":"startGame"}`,
		`{"type":"kick","playerId":"x"}`,
		`{"type":"assignTeam","playerId":"x","team":"left"}`,
	} {
		gs.handleClientMessage(c, []byte(raw))
		errMsg := nextOfType(t, c, "error")
		if errMsg["message"] != ErrRoomNotFound.Error() {
			t.Fatalf("%s: error message = %v, want %v", raw, errMsg["message"], ErrRoomNotFound.Error())
		}
	}
}

func TestInputWithoutRoomIsIgnored(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")

	gs.handleClientMessage(c, []byte(`{"type":"input","left":true,"right":false,"jump":true}`))
	assertNoMessage(t, c)
}

func TestAssignTeamWithBogusSideIsDropped(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")
	gs.handleClientMessage(c, []byte(`{"type":"join","room":"R1","name":"a"}`))
	nextOfType(t, c, "joined")
	nextOfType(t, c, "lobbyList")

	gs.handleClientMessage(c, []byte(fmt.Sprintf(`{"type":"assignTeam","playerId":%q,"team":"up"}`, c.id)))
	assertNoMessage(t, c)
}

// Full session walkthrough: two players, a rejected start from the
// non-host, a real start, a kick, then the room dying with its last
// player.
func TestTwoPlayerSessionScenario(t *testing.T) {
	gs := NewGameServer()
	alice := register(gs, "alice")
	bob := register(gs, "bob")

	// First join creates the room; the first joiner hosts on the left.
	gs.handleClientMessage(alice, []byte(`{"type":"join","room":"R1","name":"Alice"}`))
	joined := nextOfType(t, alice, "joined")
	if joined["hostId"] != alice.id {
		t.Fatalf("hostId = %v, want %v", joined["hostId"], alice.id)
	}
	players := joined["players"].([]any)
	if players[0].(map[string]any)["side"] != string(game.SideLeft) {
		t.Fatalf("first joiner on side %v, want left", players[0].(map[string]any)["side"])
	}
	// Every connection saw the snapshot for alice's join, with the count
	// taken after the mutation.
	list := nextOfType(t, alice, "lobbyList")
	if list["lobbies"].([]any)[0].(map[string]any)["count"].(float64) != 1 {
		t.Fatalf("first snapshot count = %v, want 1", list["lobbies"].([]any)[0].(map[string]any)["count"])
	}

	gs.handleClientMessage(bob, []byte(`{"type":"join","room":"R1","name":"Bob"}`))
	joined = nextOfType(t, bob, "joined")
	if joined["players"].([]any)[1].(map[string]any)["side"] != string(game.SideRight) {
		t.Fatalf("second joiner not on side right")
	}
	nextOfType(t, alice, "playerJoined")

	// Directory snapshots go to everyone, with counts after the change.
	list = nextOfType(t, bob, "lobbyList")
	lobbies := list["lobbies"].([]any)
	if len(lobbies) != 1 {
		t.Fatalf("lobbyList entries = %d, want 1", len(lobbies))
	}
	entry := lobbies[0].(map[string]any)
	if entry["id"] != "R1" || entry["count"].(float64) != 2 || entry["max"].(float64) != game.RoomCapacity {
		t.Fatalf("lobbyList entry = %v", entry)
	}
	list = nextOfType(t, alice, "lobbyList")
	if list["lobbies"].([]any)[0].(map[string]any)["count"].(float64) != 2 {
		t.Fatalf("second snapshot count = %v, want 2", list["lobbies"].([]any)[0].(map[string]any)["count"])
	}

	// The non-host cannot start the game.
	gs.handleClientMessage(bob, []byte(`{"type":"startGame"}`))
	errMsg := nextOfType(t, bob, "error")
	if errMsg["message"] != "Only host can start the game" {
		t.Fatalf("error message = %v", errMsg["message"])
	}
	room, _ := gs.lobby.Get("R1")
	if room.Phase() != PhaseLobby {
		t.Fatalf("phase = %v after rejected start, want lobby", room.Phase())
	}

	// The host can.
	gs.handleClientMessage(alice, []byte(`{"type":"startGame"}`))
	started := nextOfType(t, bob, "gameStarted")
	if len(started["players"].([]any)) != 2 {
		t.Fatalf("gameStarted players = %d, want 2", len(started["players"].([]any)))
	}
	scores := started["scores"].(map[string]any)
	if scores["left"].(float64) != 0 || scores["right"].(float64) != 0 {
		t.Fatalf("gameStarted scores = %v, want 0/0", scores)
	}

	// Input flows while playing.
	gs.handleClientMessage(bob, []byte(`{"type":"input","left":true,"right":false,"jump":false}`))

	// Host kicks Bob: Bob is told, the room survives with one player.
	gs.handleClientMessage(alice, []byte(fmt.Sprintf(`{"type":"kick","playerId":%q}`, bob.id)))
	nextOfType(t, bob, "kicked")
	list = nextOfType(t, alice, "lobbyList")
	entry = list["lobbies"].([]any)[0].(map[string]any)
	if entry["count"].(float64) != 1 {
		t.Fatalf("lobbyList count after kick = %v, want 1", entry["count"])
	}

	// The last player leaving removes the room from the directory.
	gs.handleClientMessage(alice, []byte(`{"type":"leave"}`))
	list = nextOfType(t, alice, "lobbyList")
	if len(list["lobbies"].([]any)) != 0 {
		t.Fatalf("directory still lists rooms after last leave: %v", list["lobbies"])
	}
	if _, exists := gs.lobby.Get("R1"); exists {
		t.Fatalf("room still present after last leave")
	}
}

func TestJoinWhileSeatedMovesRooms(t *testing.T) {
	gs := NewGameServer()
	c := register(gs, "c1")

	gs.handleClientMessage(c, []byte(`{"type":"join","room":"R1","name":"a"}`))
	nextOfType(t, c, "joined")
	gs.handleClientMessage(c, []byte(`{"type":"join","room":"R2","name":"a"}`))
	joined := nextOfType(t, c, "joined")
	if joined["room"] != "R2" {
		t.Fatalf("joined room = %v, want R2", joined["room"])
	}
	if _, exists := gs.lobby.Get("R1"); exists {
		t.Fatalf("old room survived with no players")
	}
	if c.Room() == nil || c.Room().ID != "R2" {
		t.Fatalf("client room = %v, want R2", c.Room())
	}
}

func TestDisconnectRoutesThroughLeavePath(t *testing.T) {
	gs := NewGameServer()
	a := register(gs, "a")
	b := register(gs, "b")

	gs.handleClientMessage(a, []byte(`{"type":"join","room":"R1","name":"a"}`))
	gs.handleClientMessage(b, []byte(`{"type":"join","room":"R1","name":"b"}`))
	nextOfType(t, b, "joined")

	gs.unregisterClient(a)
	left := nextOfType(t, b, "playerLeft")
	if left["reason"] != "disconnected" {
		t.Fatalf("playerLeft reason = %v, want disconnected", left["reason"])
	}
	room, _ := gs.lobby.Get("R1")
	if room.HostID() != b.id {
		t.Fatalf("host after disconnect = %v, want %v", room.HostID(), b.id)
	}

	gs.unregisterClient(b)
	if _, exists := gs.lobby.Get("R1"); exists {
		t.Fatalf("room still present after last disconnect")
	}
}

func TestRoomSwitchKeepsSeatWhenTargetFull(t *testing.T) {
	gs := NewGameServer()
	joinN(t, gs.lobby, "packed", game.RoomCapacity)

	c := register(gs, "c9")
	gs.handleClientMessage(c, []byte(`{"type":"join","room":"home","name":"a"}`))
	nextOfType(t, c, "joined")

	gs.handleClientMessage(c, []byte(`{"type":"join","room":"packed","name":"a"}`))
	errMsg := nextOfType(t, c, "error")
	if errMsg["message"] != ErrRoomFull.Error() {
		t.Fatalf("error message = %v, want %q", errMsg["message"], ErrRoomFull.Error())
	}

	// The rejected switch must not cost the client its seat or the
	// directory its room.
	if c.Room() == nil || c.Room().ID != "home" {
		t.Fatalf("client room = %v, want home", c.Room())
	}
	home, exists := gs.lobby.Get("home")
	if !exists {
		t.Fatalf("original room dropped from the directory")
	}
	if got := home.PlayerCount(); got != 1 {
		t.Fatalf("original room roster size = %d, want 1", got)
	}
}
