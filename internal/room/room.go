package room

import (
	"sync"
	"time"
)

// DefaultLanguage is the language a freshly created room starts with.
const DefaultLanguage = "javascript"

// room is one live shared editing session record. All fields are guarded by
// mu; readers take a Snapshot rather than touching fields directly, so a read
// can never observe code from one write and language from another.
type room struct {
	mu           sync.Mutex
	code         string
	language     string
	participants int

	// evict is the pending empty-room eviction timer, nil while occupied.
	evict *time.Timer

	// evicted marks a record the eviction callback has removed from the
	// registry. Mutators that raced the eviction retry against the live
	// record instead of writing to this orphan.
	evicted bool
}

// Snapshot is a consistent point-in-time copy of a room's record.
type Snapshot struct {
	Code         string `json:"code"`
	Language     string `json:"language"`
	Participants int    `json:"count"`
}

func (r *room) snapshotLocked() Snapshot {
	return Snapshot{
		Code:         r.code,
		Language:     r.language,
		Participants: r.participants,
	}
}
