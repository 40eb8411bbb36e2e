package server

import (
	"encoding/json"
	"log"

	"github.com/TheYellowSparrow/astrocade-volleyball/game"
)

// PlayerInfo is the roster entry shape shared by join replies, roster
// deltas and state frames.
type PlayerInfo struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Side game.Side `json:"side"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
}

// BallInfo is the broadcast shape of the ball.
type BallInfo struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// NetInfo describes the net geometry sent with every state frame so the
// client renders the same court the server simulates.
type NetInfo struct {
	X      float64 `json:"x"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RoomInfo is one directory entry of a lobbyList snapshot.
type RoomInfo struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
	Max   int    `json:"max"`
}

type idMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type lobbyListMsg struct {
	Type    string     `json:"type"`
	Lobbies []RoomInfo `json:"lobbies"`
}

type joinedMsg struct {
	Type    string       `json:"type"`
	Room    string       `json:"room"`
	HostID  string       `json:"hostId"`
	Phase   string       `json:"phase"`
	Players []PlayerInfo `json:"players"`
}

type playerJoinedMsg struct {
	Type   string     `json:"type"`
	Player PlayerInfo `json:"player"`
}

type playerLeftMsg struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
	HostID string `json:"hostId"` // host after the departure, empty if room died
}

type playerUpdatedMsg struct {
	Type   string     `json:"type"`
	Player PlayerInfo `json:"player"`
}

type gameStartedMsg struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
	VB      BallInfo     `json:"vb"`
	Scores  game.Scores  `json:"scores"`
}

type stateMsg struct {
	Type    string       `json:"type"`
	Players []PlayerInfo `json:"players"`
	VB      BallInfo     `json:"vb"`
	Scores  game.Scores  `json:"scores"`
	Phase   string       `json:"phase"`
	Net     NetInfo      `json:"net"`
}

type kickedMsg struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type pongMsg struct {
	Type string          `json:"type"`
	TS   json.RawMessage `json:"ts"`
}

// marshal serializes an outbound message, returning nil on failure so
// callers can hand the result straight to TrySend.
func marshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("ERROR marshaling %T for broadcast: %v", v, err)
		return nil
	}
	return b
}

func playerInfo(p *game.Player) PlayerInfo {
	return PlayerInfo{ID: p.ID, Name: p.Name, Side: p.Side, X: p.X, Y: p.Y}
}

func ballInfo(b game.Ball) BallInfo {
	return BallInfo{X: b.X, Y: b.Y, R: b.Radius}
}

func netInfo() NetInfo {
	return NetInfo{X: game.NetX, Top: game.NetTop, Width: game.NetWidth, Height: game.NetHeight}
}
