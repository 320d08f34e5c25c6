// Package prefs remembers the last road and vehicle category used, so the
// next quick add can be prefilled. It lives in the shared key-value table
// and is reset independently from the entity store.
package prefs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tolltracker/internal/core"
	"tolltracker/internal/storage"
)

const (
	KeyLastRoadID          = "prefs.last_road_id"
	KeyLastVehicleCategory = "prefs.last_vehicle_category"
)

type Store struct {
	kv storage.KeyValue
}

func New(kv storage.KeyValue) *Store {
	return &Store{kv: kv}
}

// SetLastRoad stores id; nil clears it.
func (s *Store) SetLastRoad(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return s.kv.DeleteValues(ctx, KeyLastRoadID)
	}
	if err := s.kv.SetValue(ctx, KeyLastRoadID, id.String()); err != nil {
		return fmt.Errorf("save last road: %w", err)
	}
	return nil
}

// LastRoad returns the remembered road, or nil. A value that is not a valid
// id reads as nil.
func (s *Store) LastRoad(ctx context.Context) (*uuid.UUID, error) {
	raw, ok, err := s.kv.GetValue(ctx, KeyLastRoadID)
	if err != nil {
		return nil, fmt.Errorf("read last road: %w", err)
	}
	if !ok {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, nil
	}
	return &id, nil
}

// SetLastCategory stores the normalized category; nil or blank clears it.
func (s *Store) SetLastCategory(ctx context.Context, category *string) error {
	var normalized string
	if category != nil {
		normalized = core.NormalizeCategory(*category)
	}
	if normalized == "" {
		return s.kv.DeleteValues(ctx, KeyLastVehicleCategory)
	}
	if err := s.kv.SetValue(ctx, KeyLastVehicleCategory, normalized); err != nil {
		return fmt.Errorf("save last category: %w", err)
	}
	return nil
}

func (s *Store) LastCategory(ctx context.Context) (*string, error) {
	v, ok, err := s.kv.GetValue(ctx, KeyLastVehicleCategory)
	if err != nil {
		return nil, fmt.Errorf("read last category: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// ResetAll removes every key managed by this store.
func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.kv.DeleteValues(ctx, KeyLastRoadID, KeyLastVehicleCategory); err != nil {
		return fmt.Errorf("reset preferences: %w", err)
	}
	return nil
}
