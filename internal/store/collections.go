package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperengineering/lifter/internal/workout"
)

// Collections loads and saves the plan and tracker collections. Every save
// writes the whole collection.
type Collections struct {
	kv KV
}

// NewCollections binds the collections to a backend.
func NewCollections(kv KV) *Collections {
	return &Collections{kv: kv}
}

// LoadPlans returns every stored plan. An absent key yields an empty slice.
func (c *Collections) LoadPlans(ctx context.Context) ([]workout.WorkoutPlan, error) {
	plans := []workout.WorkoutPlan{}
	if err := c.load(ctx, PlansKey, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// SavePlans replaces the stored plan collection.
func (c *Collections) SavePlans(ctx context.Context, plans []workout.WorkoutPlan) error {
	if plans == nil {
		plans = []workout.WorkoutPlan{}
	}
	return c.save(ctx, PlansKey, plans)
}

// LoadTrackers returns every stored tracker. An absent key yields an empty slice.
func (c *Collections) LoadTrackers(ctx context.Context) ([]workout.Tracker, error) {
	trackers := []workout.Tracker{}
	if err := c.load(ctx, TrackersKey, &trackers); err != nil {
		return nil, err
	}
	return trackers, nil
}

// SaveTrackers replaces the stored tracker collection.
func (c *Collections) SaveTrackers(ctx context.Context, trackers []workout.Tracker) error {
	if trackers == nil {
		trackers = []workout.Tracker{}
	}
	return c.save(ctx, TrackersKey, trackers)
}

// Close closes the backend.
func (c *Collections) Close() error {
	return c.kv.Close()
}

func (c *Collections) load(ctx context.Context, key string, dst any) error {
	data, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptCollection, key, err)
	}
	return nil
}

func (c *Collections) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
