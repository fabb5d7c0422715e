package database

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"satwatch/projection"
	"satwatch/upstream"
)

const (
	defaultDbFile   = "satwatch.db"
	snapshotsBucket = "snapshots"

	// maxSnapshots bounds the retained history; older entries are pruned
	// on save.
	maxSnapshots = 288
)

// Snapshot is a last-known-good observation persisted across restarts so the
// API can keep answering while upstream sources are down.
type Snapshot struct {
	Stats      projection.RawChainStats
	Projection projection.MiningProjection
	Price      *upstream.PriceQuote
	Source     string
	FetchedAt  time.Time
}

// Storage persists snapshots to a bbolt database.
type Storage struct {
	db *bbolt.DB
}

// NewStorage opens the snapshot database under dataDir, creating the
// directory and bucket as needed.
func NewStorage(dataDir string) (*Storage, error) {
	if dataDir == "" {
		dataDir = "."
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbFile := filepath.Join(dataDir, defaultDbFile)
	db, err := bbolt.Open(dbFile, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() {
	s.db.Close()
}

// SaveSnapshot appends a snapshot keyed by its fetch time and prunes history
// beyond the retention bound.
func (s *Storage) SaveSnapshot(snap *Snapshot) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(snapshotsBucket))

		var buf bytes.Buffer
		enc := gob.NewEncoder(&buf)
		if err := enc.Encode(snap); err != nil {
			return err
		}

		// Key: fetch time as big-endian nanos so bbolt's byte order is
		// chronological order.
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, uint64(snap.FetchedAt.UnixNano()))

		if err := b.Put(key, buf.Bytes()); err != nil {
			return err
		}

		return pruneSnapshots(b)
	})
}

// LatestSnapshot returns the most recent snapshot, or an error if none has
// been stored yet.
func (s *Storage) LatestSnapshot() (*Snapshot, error) {
	var snap Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(snapshotsBucket))

		k, v := b.Cursor().Last()
		if k == nil {
			return fmt.Errorf("no snapshot stored")
		}

		dec := gob.NewDecoder(bytes.NewReader(v))
		return dec.Decode(&snap)
	})
	if err != nil {
		return nil, err
	}

	return &snap, nil
}

// SnapshotCount returns the number of stored snapshots.
func (s *Storage) SnapshotCount() (int, error) {
	count := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = countKeys(tx.Bucket([]byte(snapshotsBucket)))
		return nil
	})
	return count, err
}

// pruneSnapshots deletes the oldest entries beyond the retention bound.
func pruneSnapshots(b *bbolt.Bucket) error {
	excess := countKeys(b) - maxSnapshots
	if excess <= 0 {
		return nil
	}

	c := b.Cursor()
	for k, _ := c.First(); k != nil && excess > 0; k, _ = c.Next() {
		if err := c.Delete(); err != nil {
			return err
		}
		excess--
	}
	return nil
}

func countKeys(b *bbolt.Bucket) int {
	count := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		count++
	}
	return count
}
