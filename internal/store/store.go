// Package store persists the plan and tracker collections in a key-value
// backend. Each collection is one JSON document under a fixed key.
package store

import (
	"context"
)

// Keys under which the two collections are stored.
const (
	PlansKey    = "workout_plans_v1"
	TrackersKey = "workout_trackers_v1"
)

// KV is the minimal key-value contract the collections are written through.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
