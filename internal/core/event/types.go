package event

import "github.com/steerstone/server/internal/room"

// Room events. Emitted by handlers and MovementSystem, turned into packets
// for everyone in the room by the broadcast subscriber.

type ActorEntered struct {
	RoomID    int32
	ActorID   room.ActorID
	SessionID uint64
}

type ActorLeft struct {
	RoomID    int32
	ActorID   room.ActorID
	SessionID uint64
}

// ActorWalked is emitted after each tile an actor steps onto.
type ActorWalked struct {
	RoomID  int32
	ActorID room.ActorID
	X, Y    int32
	Z       float64
	Heading int32
	Moving  bool // false on the final tile
}

type ItemPlaced struct {
	RoomID int32
	ItemID int32
}

type ItemRemoved struct {
	RoomID int32
	ItemID int32
}

type ItemUpdated struct {
	RoomID int32
	ItemID int32
	State  int32
}

// PathBlocked is emitted when an actor's walk stops because no route
// remains. Only the walking session is told.
type PathBlocked struct {
	RoomID    int32
	ActorID   room.ActorID
	SessionID uint64
	GoalX     int32
	GoalY     int32
}

type SessionClosed struct {
	SessionID   uint64
	AccountName string
}
