package ws

import "carvfi/internal/domain"

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady  = "ready"
	MsgPong   = "pong"
	MsgPoints = "points"
	MsgError  = "error"
)

type Envelope struct {
	Type string `json:"type"`
}

// PointsMessage is pushed to every connection of a user after a credit.
type PointsMessage struct {
	Type string `json:"type"`
	domain.PointsEvent
}
