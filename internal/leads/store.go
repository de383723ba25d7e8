package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var leadsBucket = []byte("leads")

// Store defines the interface for lead persistence
type Store interface {
	Save(ctx context.Context, lead *Lead) error
	All(ctx context.Context) ([]*Lead, error)
	Recent(ctx context.Context, n int) ([]*Lead, error)
	Close() error
}

// BoltStore persists leads in a local bbolt file, one record per sender
// address. Saving again for the same sender replaces the prior record.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the lead database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("leads: open db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(leadsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("leads: create bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Save writes a completed lead keyed by its sender address, stamping id,
// status and recording time when they are not set yet.
func (s *BoltStore) Save(ctx context.Context, lead *Lead) error {
	if lead == nil || lead.Sender == "" {
		return ErrMissingSender
	}
	if !lead.Complete() {
		return ErrIncomplete
	}
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	if lead.RecordedAt.IsZero() {
		lead.RecordedAt = time.Now().UTC()
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(lead)
		if err != nil {
			return fmt.Errorf("leads: marshal record: %w", err)
		}
		if err := tx.Bucket(leadsBucket).Put([]byte(lead.Sender), data); err != nil {
			return fmt.Errorf("leads: put record: %w", err)
		}
		return nil
	})
}

// All returns every stored lead ordered by recording time, oldest first.
func (s *BoltStore) All(ctx context.Context) ([]*Lead, error) {
	var records []*Lead
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(leadsBucket).ForEach(func(k, v []byte) error {
			var lead Lead
			if err := json.Unmarshal(v, &lead); err != nil {
				return fmt.Errorf("leads: decode record %s: %w", string(k), err)
			}
			records = append(records, &lead)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].RecordedAt.Before(records[j].RecordedAt)
	})
	return records, nil
}

// Recent returns the n most recently recorded leads, oldest of them first.
func (s *BoltStore) Recent(ctx context.Context, n int) ([]*Lead, error) {
	if n <= 0 {
		return nil, nil
	}
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) <= n {
		return records, nil
	}
	return records[len(records)-n:], nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
