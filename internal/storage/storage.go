package storage

import "context"

// Store is the optional persistence collaborator for room code. When no store
// is configured, rooms live only in process memory and are lost on restart.
// That is an accepted operating mode, not a defect.
type Store interface {
	// LoadCode returns the saved code for a room. The boolean reports whether
	// the room has ever been saved.
	LoadCode(ctx context.Context, roomID string) (string, bool, error)

	// SaveCode upserts the code for a room.
	SaveCode(ctx context.Context, roomID string, code string) error

	// Close releases resources.
	Close() error
}
