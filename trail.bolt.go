package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.uber.org/zap"
)

var (
	_ CirculationTrail = (*boltTrail)(nil) // ensure boltTrail implements CirculationTrail.
	_ CirculationTrail = (*nopTrail)(nil)  // ensure nopTrail implements CirculationTrail.
)

// CirculationTrail records every borrow and return as an append-only
// event stream, next to the full-state records file.
type CirculationTrail interface {
	Record(ctx context.Context, event TrailEvent) error
	Recent(ctx context.Context, limit int) ([]TrailEvent, error)
	Close() error
}

type boltTrail struct {
	logger *zap.Logger
	client *bolt.DB
	config *TrailConfig
}

// GetBoltTrailClient setup the database and the bucket then provides a ready to use client.
func GetBoltTrailClient(config *Config) (*bolt.DB, error) {
	db, err := bolt.Open(config.Trail.FilePath, 0o600, &bolt.Options{Timeout: config.Trail.Timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open the trail database, %v", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.Trail.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.Trail.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up trail bucket: %v", err)
	}
	return db, nil
}

// NewBoltTrail provides an instance of bolt-based circulation trail.
func NewBoltTrail(logger *zap.Logger, trailConfig *TrailConfig, client *bolt.DB) CirculationTrail {
	return &boltTrail{
		logger: logger,
		client: client,
		config: trailConfig,
	}
}

// Close shuts down the bolt-based circulation trail.
func (bt *boltTrail) Close() error {
	return bt.client.Close()
}

// Record appends one event under the bucket auto-incremented sequence.
func (bt *boltTrail) Record(_ context.Context, event TrailEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return bt.client.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bt.config.BucketName))
		seq, errS := bucket.NextSequence()
		if errS != nil {
			return errS
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return bucket.Put(key, eventBytes)
	})
}

// Recent retrieves up to limit events, newest first.
func (bt *boltTrail) Recent(_ context.Context, limit int) ([]TrailEvent, error) {
	// initialize a readable transaction.
	tx, err := bt.client.Begin(false)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	c := tx.Bucket([]byte(bt.config.BucketName)).Cursor()

	events := []TrailEvent{}
	for k, v := c.Last(); k != nil && len(events) < limit; k, v = c.Prev() {
		var event TrailEvent
		if err = json.Unmarshal(v, &event); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// nopTrail is used when the audit trail is disabled by configuration.
type nopTrail struct{}

// NewNopTrail provides a trail that records nothing.
func NewNopTrail() CirculationTrail {
	return &nopTrail{}
}

func (nt *nopTrail) Record(_ context.Context, _ TrailEvent) error { return nil }

func (nt *nopTrail) Recent(_ context.Context, _ int) ([]TrailEvent, error) {
	return []TrailEvent{}, nil
}

func (nt *nopTrail) Close() error { return nil }
