package server

import (
	"encoding/json"
	"log"
	"strings"

	"github.com/TheYellowSparrow/astrocade-volleyball/game"
)

// joinRequest is the payload of a "join" message.
type joinRequest struct {
	Room string `json:"room"`
	Name string `json:"name"`
}

// assignTeamRequest is the payload of an "assignTeam" message. The wire
// field is "team"; everywhere past the boundary the value is a Side.
type assignTeamRequest struct {
	PlayerID string `json:"playerId"`
	Team     string `json:"team"`
}

// kickRequest is the payload of a "kick" message.
type kickRequest struct {
	PlayerID string `json:"playerId"`
}

// pingRequest is the payload of a "ping" message; ts is echoed untouched.
type pingRequest struct {
	TS json.RawMessage `json:"ts"`
}

// handleClientMessage processes one incoming JSON message from a client.
// Unparsable or untyped payloads are dropped silently; unknown types get
// an error reply. No condition here closes the connection.
func (gs *GameServer) handleClientMessage(client *Client, message []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &env); err != nil || env.Type == "" {
		return
	}

	switch env.Type {
	case "listLobbies":
		client.TrySend(marshal(lobbyListMsg{Type: "lobbyList", Lobbies: gs.lobby.List()}))

	case "join":
		var req joinRequest
		if err := json.Unmarshal(message, &req); err != nil {
			return
		}
		gs.processJoin(client, req)

	case "leave":
		if room := client.Room(); room != nil {
			room.Leave(client, "left")
		}

	case "assignTeam":
		var req assignTeamRequest
		if err := json.Unmarshal(message, &req); err != nil {
			return
		}
		side := game.Side(req.Team)
		if side != game.SideLeft && side != game.SideRight {
			return
		}
		room := client.Room()
		if room == nil {
			client.sendError(ErrRoomNotFound.Error())
			return
		}
		if err := room.AssignSide(client, req.PlayerID, side); err != nil {
			client.sendError(err.Error())
		}

	case "kick":
		var req kickRequest
		if err := json.Unmarshal(message, &req); err != nil {
			return
		}
		room := client.Room()
		if room == nil {
			client.sendError(ErrRoomNotFound.Error())
			return
		}
		if err := room.Kick(client, req.PlayerID); err != nil {
			client.sendError(err.Error())
		}

	case "startGame":
		room := client.Room()
		if room == nil {
			client.sendError(ErrRoomNotFound.Error())
			return
		}
		if err := room.StartGame(client); err != nil {
			client.sendError(err.Error())
		}

	case "input":
		var in game.Input
		if err := json.Unmarshal(message, &in); err != nil {
			return
		}
		if room := client.Room(); room != nil {
			room.SetInput(client.id, in)
		}

	case "ping":
		var req pingRequest
		if err := json.Unmarshal(message, &req); err != nil {
			return
		}
		client.TrySend(marshal(pongMsg{Type: "pong", TS: req.TS}))

	default:
		log.Printf("Client %s: WARNING unknown message type %q.", client.id, env.Type)
		client.sendError("Unknown message type: " + env.Type)
	}
}

// processJoin seats a client in the requested room, creating the room on
// first join. A client already seated somewhere is moved, not rejected.
func (gs *GameServer) processJoin(client *Client, req joinRequest) {
	roomID := strings.TrimSpace(req.Room)
	if roomID == "" {
		client.sendError(ErrRoomNotFound.Error())
		return
	}

	current := client.Room()
	if current != nil && current.ID == roomID {
		return
	}

	name := strings.TrimSpace(req.Name)
	room := gs.lobby.GetOrCreate(roomID)
	err := room.Join(client, name)
	if err == ErrRoomNotFound {
		// The room emptied and died between lookup and join; a fresh
		// lookup recreates it.
		room = gs.lobby.GetOrCreate(roomID)
		err = room.Join(client, name)
	}
	if err != nil {
		// A failed first join must not leak an empty room.
		gs.lobby.destroyIfEmpty(roomID)
		client.sendError(err.Error())
		return
	}

	// The old seat is released only after the new one is secured, so a
	// rejected switch leaves the client where it was.
	if current != nil {
		current.Leave(client, "left")
	}
}

func (c *Client) sendError(message string) {
	c.TrySend(marshal(errorMsg{Type: "error", Message: message}))
}
