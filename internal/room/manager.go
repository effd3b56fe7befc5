package room

import "fmt"

// Manager holds every loaded room.
// Accessed only from the game loop goroutine: no locks.
type Manager struct {
	rooms map[int32]*Room
}

func NewManager() *Manager {
	return &Manager{rooms: make(map[int32]*Room)}
}

// Load builds a room from its layout and registers it. Loading an ID twice is
// an error; unload first.
func (m *Manager) Load(id int32, name string, layout Layout) (*Room, error) {
	if _, ok := m.rooms[id]; ok {
		return nil, fmt.Errorf("room %d already loaded", id)
	}
	r, err := New(id, name, layout)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = r
	return r, nil
}

// Get returns a loaded room, or nil.
func (m *Manager) Get(id int32) *Room {
	return m.rooms[id]
}

// Unload drops a room and with it every tile of its grid. Callers must have
// moved all actors out first.
func (m *Manager) Unload(id int32) *Room {
	r := m.rooms[id]
	delete(m.rooms, id)
	return r
}

// Count returns the number of loaded rooms.
func (m *Manager) Count() int {
	return len(m.rooms)
}

// Each calls fn for every loaded room.
func (m *Manager) Each(fn func(*Room)) {
	for _, r := range m.rooms {
		fn(r)
	}
}
