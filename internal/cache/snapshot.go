// Package cache stores aggregation snapshots in a local bolt file, so a
// chart can be re-rendered without hitting the index again.
package cache

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/devtrends/turnover/internal/errors"
	"github.com/devtrends/turnover/internal/models"
)

var snapshotBucket = []byte("snapshots")

// Snapshot is one saved aggregation result
type Snapshot struct {
	ID      string                `json:"id"`
	TakenAt time.Time             `json:"taken_at"`
	Buckets []models.AuthorBucket `json:"buckets"`
}

// Store is a bolt-backed snapshot store
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the snapshot store at path
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "failed to open snapshot store")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(snapshotBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "failed to initialize snapshot store")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bolt file
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the aggregation under a fresh id and returns the snapshot
func (s *Store) Save(buckets []models.AuthorBucket) (*Snapshot, error) {
	snap := &Snapshot{
		ID:      uuid.NewString(),
		TakenAt: time.Now().UTC(),
		Buckets: buckets,
	}

	if err := s.put(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Store) put(snap *Snapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeStorage, "failed to encode snapshot")
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucket).Put([]byte(snap.ID), value)
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeStorage, "failed to write snapshot")
	}
	return nil
}

// Get returns the snapshot with the given id
func (s *Store) Get(id string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(snapshotBucket).Get([]byte(id))
		if value == nil {
			return errors.New(errors.ErrorTypeStorage, "snapshot %s not found", id)
		}
		snap = &Snapshot{}
		return json.Unmarshal(value, snap)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// List returns all snapshots, newest first
func (s *Store) List() ([]Snapshot, error) {
	var snaps []Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(snapshotBucket).ForEach(func(k, v []byte) error {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			snaps = append(snaps, snap)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeStorage, "failed to list snapshots")
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].TakenAt.After(snaps[j].TakenAt)
	})
	return snaps, nil
}
