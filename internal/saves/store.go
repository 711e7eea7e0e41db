package saves

import "context"

// Store abstracts the key-value storage that holds persisted game saves.
// It is injected into the progression engine rather than reached for as an
// ambient global so the codec can be tested against an in-memory substitute.
type Store interface {
	// Get returns the stored value for key. The second return is false
	// when no entry exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous entry. The write
	// is all-or-nothing per call.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes the entry for key. Removing a missing key is not an
	// error.
	Remove(ctx context.Context, key string) error
}
