package game

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Benjythebee/stock-sim-server/internal/metrics"
)

// Manager is the process-wide room registry. Rooms are created on first
// websocket arrival and drop out of the registry when they dispose
// themselves; Shutdown tears down whatever is left.
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room
	log   zerolog.Logger
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
		log:   log,
	}
}

// GetOrCreate returns the room, creating and starting it on first
// reference.
func (m *Manager) GetOrCreate(roomID string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[roomID]; ok {
		return r
	}
	r := NewRoom(roomID, m.releaseRoom, m.log)
	m.rooms[roomID] = r
	metrics.OpenRooms.Inc()
	m.log.Info().Str("room", roomID).Msg("room created")
	return r
}

// Get returns an existing room, never creating one. Spectators join
// through this path.
func (m *Manager) Get(roomID string) (*Room, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[roomID]
	return r, ok
}

// releaseRoom drops a room that disposed itself after emptying out.
func (m *Manager) releaseRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; ok {
		delete(m.rooms, roomID)
		metrics.OpenRooms.Dec()
		m.log.Info().Str("room", roomID).Msg("room released")
	}
}

// RoomInfo is one row of the room directory.
type RoomInfo struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Started bool   `json:"started"`
}

// Info snapshots the room for the directory. ok is false when the room
// shut down before answering.
func (r *Room) Info() (RoomInfo, bool) {
	var info RoomInfo
	ok := r.call(func() {
		info = RoomInfo{ID: r.ID, Players: len(r.participantIDs()), Started: r.started}
	})
	return info, ok
}

// OpenRooms snapshots the directory for /api/rooms, sorted by id.
func (m *Manager) OpenRooms() []RoomInfo {
	m.mu.Lock()
	list := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		list = append(list, r)
	}
	m.mu.Unlock()

	infos := make([]RoomInfo, 0, len(list))
	for _, r := range list {
		if info, ok := r.Info(); ok {
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Shutdown disposes every room and waits for their loops to stop.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	list := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		list = append(list, r)
	}
	m.rooms = make(map[string]*Room)
	m.mu.Unlock()

	// Snapshotted rooms are already out of the registry, so releaseRoom
	// will not account for them; the gauge decrement happens here even
	// when a room managed to dispose itself first.
	for _, r := range list {
		r.Shutdown()
		metrics.OpenRooms.Dec()
	}
	m.log.Info().Int("rooms", len(list)).Msg("manager shut down")
}
