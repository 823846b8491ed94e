package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// SourceState records the last successful download of a docs source.
type SourceState struct {
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Checksum    string    `json:"checksum"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Storage manages the bbolt database holding docs fetch state.
type Storage struct {
	db *bbolt.DB
}

// NewStorage creates or opens a bbolt database, creating its directory when
// needed.
func NewStorage(dbPath string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// bucketName is the name of the bucket where source states are stored.
var bucketName = []byte("sources")

// PutSource stores the state of a source, keyed by its name.
func (s *Storage) PutSource(state *SourceState) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}

		encoded, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal source state: %w", err)
		}

		return b.Put([]byte(state.Name), encoded)
	})
}

// GetSource returns the state stored for name, or nil if the source was never
// fetched.
func (s *Storage) GetSource(name string) (*SourceState, error) {
	var state *SourceState
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}

		v := b.Get([]byte(name))
		if v == nil {
			return nil
		}

		state = &SourceState{}
		return json.Unmarshal(v, state)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get source %s: %w", name, err)
	}
	return state, nil
}

// ListSources retrieves all stored source states, ordered by name.
func (s *Storage) ListSources() ([]*SourceState, error) {
	var states []*SourceState
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			// If the bucket doesn't exist, nothing was fetched yet.
			return nil
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var state SourceState
			if err := json.Unmarshal(v, &state); err != nil {
				// Skip corrupted entries, they get rewritten on the next fetch.
				continue
			}
			states = append(states, &state)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return states, nil
}
