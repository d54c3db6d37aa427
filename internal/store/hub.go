package store

import (
	"sync"

	"github.com/arnold/goalforge-api/internal/models"
)

type roomKey struct {
	owner string
	kind  models.Kind
}

// hub fans collection snapshots out to the streams subscribed to them.
type hub struct {
	mu    sync.RWMutex
	rooms map[roomKey]map[*Stream]struct{}

	// serial orders read-then-publish per room, so a snapshot read before a
	// commit is never delivered after the snapshot that includes it.
	serial sync.Map // roomKey -> *sync.Mutex
}

func newHub() *hub {
	return &hub{rooms: make(map[roomKey]map[*Stream]struct{})}
}

func (h *hub) register(key roomKey, s *Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[key] == nil {
		h.rooms[key] = make(map[*Stream]struct{})
	}
	h.rooms[key][s] = struct{}{}
}

func (h *hub) unregister(key roomKey, s *Stream) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if streams, ok := h.rooms[key]; ok {
		delete(streams, s)
		if len(streams) == 0 {
			delete(h.rooms, key)
		}
	}
}

func (h *hub) room(key roomKey) *sync.Mutex {
	mu, _ := h.serial.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (h *hub) watched(key roomKey) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[key]) > 0
}

func (h *hub) broadcast(key roomKey, snap []models.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[key] {
		s.push(snap)
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, streams := range h.rooms {
		for s := range streams {
			s.close(ErrStreamClosed)
		}
		delete(h.rooms, key)
	}
}
