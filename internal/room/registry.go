package room

import (
	"context"
	"log"
	"sync"
	"time"

	"sharepad/internal/storage"
)

// DefaultGracePeriod is how long a room may sit empty before it is evicted
// from the registry. Eviction is memory reclamation, not correctness: a room
// can always be recreated under the same id.
const DefaultGracePeriod = time.Hour

// Registry is the process-wide mapping of room id to room state. Any number
// of gateway goroutines may read and write concurrently; every mutation of a
// given room's record is atomic with respect to that record.
//
// Lock order is registry before record. No path holds a record lock while
// acquiring the registry lock.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room

	store storage.Store // optional; nil means in-memory only
	grace time.Duration
}

// NewRegistry creates an empty registry. store may be nil. A non-positive
// grace falls back to DefaultGracePeriod.
func NewRegistry(store storage.Store, grace time.Duration) *Registry {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Registry{
		rooms: make(map[string]*room),
		store: store,
		grace: grace,
	}
}

// Ensure returns the current state of the room, creating it with empty code
// and the default language if it does not exist.
func (g *Registry) Ensure(ctx context.Context, roomID string) Snapshot {
	r := g.acquire(ctx, roomID)
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// ensure returns the room, creating it if needed. Creation hydrates the room
// from the store no matter which operation triggered it, so a join to a
// persisted but not live room sees the saved code in its snapshot.
func (g *Registry) ensure(ctx context.Context, roomID string) *room {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if ok {
		return r
	}

	g.mu.Lock()
	r, ok = g.rooms[roomID]
	if !ok {
		r = &room{language: DefaultLanguage}
		g.rooms[roomID] = r
	}
	g.mu.Unlock()

	if !ok {
		g.hydrate(ctx, roomID, r)
	}
	return r
}

// hydrate seeds a freshly created room from the store, when one is
// configured.
func (g *Registry) hydrate(ctx context.Context, roomID string, r *room) {
	if g.store == nil {
		return
	}
	code, ok, err := g.store.LoadCode(ctx, roomID)
	if err != nil {
		log.Printf("room %s: loading persisted code: %v", roomID, err)
		return
	}
	if !ok {
		return
	}

	r.mu.Lock()
	// A writer may have beaten the hydration; last write wins, so only seed
	// a still-empty buffer.
	if r.code == "" {
		r.code = code
	}
	r.mu.Unlock()
}

// acquire returns the live record for roomID with its lock held, creating the
// room if needed. A record evicted between lookup and lock is retried so the
// mutation never lands on an orphan.
func (g *Registry) acquire(ctx context.Context, roomID string) *room {
	for {
		r := g.ensure(ctx, roomID)
		r.mu.Lock()
		if !r.evicted {
			return r
		}
		r.mu.Unlock()
	}
}

// Get returns the room's state if it exists.
func (g *Registry) Get(roomID string) (Snapshot, bool) {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), true
}

// SetCode overwrites the room's code buffer, creating the room if needed.
// Last write wins; no conflict is signaled. The write is persisted
// best-effort when a store is configured.
func (g *Registry) SetCode(ctx context.Context, roomID, code string) {
	r := g.acquire(ctx, roomID)
	r.code = code
	r.mu.Unlock()
	g.persist(ctx, roomID, code)
}

// SetLanguage overwrites the room's active language, creating the room if
// needed.
func (g *Registry) SetLanguage(ctx context.Context, roomID, language string) {
	r := g.acquire(ctx, roomID)
	r.language = language
	r.mu.Unlock()
}

// SetCodeAndLanguage applies a code and language pair under one critical
// section, so no reader observes the new code with the old language.
func (g *Registry) SetCodeAndLanguage(ctx context.Context, roomID, code, language string) {
	r := g.acquire(ctx, roomID)
	r.code = code
	r.language = language
	r.mu.Unlock()
	g.persist(ctx, roomID, code)
}

func (g *Registry) persist(ctx context.Context, roomID, code string) {
	if g.store == nil {
		return
	}
	if err := g.store.SaveCode(ctx, roomID, code); err != nil {
		log.Printf("room %s: persisting code: %v", roomID, err)
	}
}
