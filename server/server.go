package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket" // Gorilla WebSocket library for plain WebSockets
)

// GameServer owns the connection registry and the room directory. Rooms
// tick independently; the registry and directory are the only state shared
// across them.
type GameServer struct {
	upgrader websocket.Upgrader
	lobby    *Lobby

	clientsMutex sync.RWMutex
	clients      map[*Client]bool
}

// NewGameServer initializes a new GameServer instance.
func NewGameServer() *GameServer {
	gs := &GameServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development. RESTRICT THIS IN PRODUCTION!
				return true
			},
		},
		lobby:   NewLobby(),
		clients: make(map[*Client]bool),
	}
	gs.lobby.OnChange = gs.broadcastLobbyList
	return gs
}

// Lobby exposes the room directory.
func (gs *GameServer) Lobby() *Lobby { return gs.lobby }

// HandleConnections upgrades HTTP requests on /ws to WebSocket
// connections, assigns an ephemeral identity and starts the client pumps.
func (gs *GameServer) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := gs.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, uuid.New().String())
	gs.clientsMutex.Lock()
	gs.clients[client] = true
	gs.clientsMutex.Unlock()
	log.Printf("Client %s connected from %s.", client.id, conn.RemoteAddr())

	// The identity message and an initial directory snapshot go out first
	// so a fresh client can render the lobby browser without asking.
	client.TrySend(marshal(idMsg{Type: "id", ID: client.id}))
	client.TrySend(marshal(lobbyListMsg{Type: "lobbyList", Lobbies: gs.lobby.List()}))

	go client.WritePump()
	go client.ReadPump(gs)
}

// unregisterClient removes a client from the registry. If the connection
// was seated in a room, its leave path runs first so roster, host and
// directory state stay consistent.
func (gs *GameServer) unregisterClient(client *Client) {
	if room := client.Room(); room != nil {
		room.Leave(client, "disconnected")
	}

	gs.clientsMutex.Lock()
	delete(gs.clients, client)
	gs.clientsMutex.Unlock()
	log.Printf("Client %s unregistered.", client.id)
}

// broadcastLobbyList fans a directory snapshot out to every connection,
// not just room members, so idle clients browsing lobbies see live counts.
func (gs *GameServer) broadcastLobbyList() {
	message := marshal(lobbyListMsg{Type: "lobbyList", Lobbies: gs.lobby.List()})

	gs.clientsMutex.RLock()
	targets := make([]*Client, 0, len(gs.clients))
	for client := range gs.clients {
		targets = append(targets, client)
	}
	gs.clientsMutex.RUnlock()

	for _, client := range targets {
		client.TrySend(message)
	}
}
