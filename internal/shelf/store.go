package shelf

// Store is a synchronous string-keyed byte store. The Repository serializes its
// collections as JSON documents through it.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Close releases any resources held by the store.
	Close() error
}
