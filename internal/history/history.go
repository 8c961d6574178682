// Package history keeps a persistent record of completed downloads, keyed by URL.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketDownloads = []byte("downloads")

// An Entry is one completed download.
type Entry struct {
	URL          string        `json:"url"`
	Subject      string        `json:"subject"`
	Path         string        `json:"path"`
	Size         int64         `json:"size"`
	Duration     time.Duration `json:"duration"`
	DownloadedAt time.Time     `json:"downloaded_at"`
}

type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDownloads)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare history store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores an entry, replacing any previous record for the same URL.
func (s *Store) Record(e Entry) error {
	if e.DownloadedAt.IsZero() {
		e.DownloadedAt = time.Now()
	}
	data, err := json.Marshal(&e)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDownloads).Put([]byte(e.URL), data)
	})
}

// Lookup returns the entry for a URL, or (nil, nil) if it was never recorded.
func (s *Store) Lookup(url string) (*Entry, error) {
	var entry *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketDownloads).Get([]byte(url))
		if data == nil {
			return nil
		}
		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Each calls f for every recorded entry, in key order.
func (s *Store) Each(f func(Entry) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDownloads).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			return f(entry)
		})
	})
}

// Count returns how many downloads have been recorded.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketDownloads).Stats().KeyN
		return nil
	})
	return count, err
}
