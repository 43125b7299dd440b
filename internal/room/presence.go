package room

import (
	"context"
	"time"
)

// Presence tracking lives on the Registry: joins and leaves mutate the same
// room record as code writes, under the same per-room lock.
//
// Typing is deliberately absent here. It is a point-in-time event relayed by
// the broadcast layer and never stored, so a new joiner always starts from
// "not typing" regardless of what others were doing when it connected.

// Join increments the room's participant count, creating (and hydrating) the
// room if needed, and returns the new count. A pending eviction is cancelled.
func (g *Registry) Join(ctx context.Context, roomID string) int {
	r := g.acquire(ctx, roomID)
	defer r.mu.Unlock()
	r.participants++
	if r.evict != nil {
		r.evict.Stop()
		r.evict = nil
	}
	return r.participants
}

// Leave decrements the room's participant count, floored at zero, and returns
// the new count. When the room becomes empty a deferred eviction check is
// armed for the grace period.
func (g *Registry) Leave(roomID string) int {
	g.mu.RLock()
	r, ok := g.rooms[roomID]
	g.mu.RUnlock()
	if !ok {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.evicted {
		return 0
	}
	if r.participants > 0 {
		r.participants--
	}
	if r.participants == 0 && r.evict == nil {
		r.evict = g.armEviction(roomID, r)
	}
	return r.participants
}

// armEviction schedules a best-effort removal of the room after the grace
// period. The callback takes the registry lock before the record lock, the
// order every other path follows, and re-checks both record identity and
// emptiness at fire time: a stale timer never evicts a successor room that
// reused the id, and an occupied room is left alone.
func (g *Registry) armEviction(roomID string, r *room) *time.Timer {
	return time.AfterFunc(g.grace, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.rooms[roomID] != r {
			return
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.participants == 0 {
			r.evicted = true
			delete(g.rooms, roomID)
		}
	})
}
