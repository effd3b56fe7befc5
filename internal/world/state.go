package world

import (
	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/room"
)

// Player is a logged-in account. Accessed only from the game loop goroutine;
// no locks needed.
type Player struct {
	SessionID uint64
	Session   *net.Session
	AccountID int32
	Name      string
	Rank      int16

	// Set while the player is inside a room.
	RoomID int32
	Habbo  *room.Habbo

	// ID of the outstanding path request; results with another ID are stale.
	PathRequest string
}

// InRoom reports whether the player currently has an avatar in a room.
func (p *Player) InRoom() bool {
	return p.Habbo != nil && p.RoomID != 0
}

// State indexes logged-in players by session, name and avatar.
type State struct {
	bySession map[uint64]*Player
	byName    map[string]*Player
	byActor   map[room.ActorID]*Player

	nextActor room.ActorID
}

func NewState() *State {
	return &State{
		bySession: make(map[uint64]*Player),
		byName:    make(map[string]*Player),
		byActor:   make(map[room.ActorID]*Player),
	}
}

func (s *State) AddPlayer(p *Player) {
	s.bySession[p.SessionID] = p
	s.byName[p.Name] = p
}

// RemovePlayer drops the player and its avatar index. Returns nil when the
// session had no player.
func (s *State) RemovePlayer(sessionID uint64) *Player {
	p, ok := s.bySession[sessionID]
	if !ok {
		return nil
	}
	delete(s.bySession, sessionID)
	if s.byName[p.Name] == p {
		delete(s.byName, p.Name)
	}
	if p.Habbo != nil {
		delete(s.byActor, p.Habbo.ID())
	}
	return p
}

func (s *State) GetBySession(sessionID uint64) *Player {
	return s.bySession[sessionID]
}

func (s *State) GetByName(name string) *Player {
	return s.byName[name]
}

func (s *State) GetByActor(id room.ActorID) *Player {
	return s.byActor[id]
}

// NewHabbo allocates an avatar for p in roomID and indexes it.
func (s *State) NewHabbo(p *Player, roomID int32) *room.Habbo {
	s.ClearHabbo(p)
	s.nextActor++
	h := room.NewHabbo(s.nextActor, p.Name, p.SessionID)
	p.Habbo = h
	p.RoomID = roomID
	p.PathRequest = ""
	s.byActor[h.ID()] = p
	return h
}

// ClearHabbo forgets p's avatar after it left its room.
func (s *State) ClearHabbo(p *Player) {
	if p.Habbo != nil {
		delete(s.byActor, p.Habbo.ID())
	}
	p.Habbo = nil
	p.RoomID = 0
	p.PathRequest = ""
}

// InRoom returns every player with an avatar in roomID.
func (s *State) InRoom(roomID int32) []*Player {
	var out []*Player
	for _, p := range s.byActor {
		if p.RoomID == roomID {
			out = append(out, p)
		}
	}
	return out
}

func (s *State) PlayerCount() int {
	return len(s.bySession)
}

func (s *State) AllPlayers(fn func(*Player)) {
	for _, p := range s.bySession {
		fn(p)
	}
}
