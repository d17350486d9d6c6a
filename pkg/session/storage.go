package session

import (
	"sync"

	bolt "go.etcd.io/bbolt"
)

// Storage is the durable local key-value store backing a session, the
// equivalent of a browser's localStorage. Get returns nil for absent keys.
type Storage interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
}

var storageBucket = []byte("session")

// BoltStorage persists session entries in a bbolt file so a session survives
// process restarts.
type BoltStorage struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the session database at path.
func OpenBolt(path string) (*BoltStorage, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(storageBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStorage{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// Get implements Storage.
func (s *BoltStorage) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(storageBucket).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

// Put implements Storage.
func (s *BoltStorage) Put(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(storageBucket).Put([]byte(key), value)
	})
}

// Delete implements Storage.
func (s *BoltStorage) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(storageBucket).Delete([]byte(key))
	})
}

// MemoryStorage is a volatile Storage used in tests and ephemeral sessions.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStorage returns an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string][]byte)}
}

// Get implements Storage.
func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.entries[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, nil
}

// Put implements Storage.
func (s *MemoryStorage) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Storage.
func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
