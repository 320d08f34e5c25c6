package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tolltracker/internal/core"
	"tolltracker/internal/storage"
)

// TripStore is the subset of the store used for trips and their entries.
type TripStore interface {
	storage.TripRepository
	GetVehicle(ctx context.Context, id uuid.UUID) (core.Vehicle, error)
	ListEntries(ctx context.Context, pred storage.Predicate[core.TollEntry]) ([]core.TollEntry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
}

type TripService struct {
	store TripStore
	now   func() time.Time
}

func NewTripService(store TripStore) *TripService {
	return &TripService{store: store, now: time.Now}
}

// Create stores a trip. A zero date means now.
func (s *TripService) Create(ctx context.Context, trip core.Trip) (core.Trip, error) {
	trip, err := s.prepare(ctx, trip)
	if err != nil {
		return core.Trip{}, err
	}
	if trip.Date.IsZero() {
		trip.Date = s.now()
	}
	return s.store.CreateTrip(ctx, trip)
}

func (s *TripService) Update(ctx context.Context, trip core.Trip) error {
	trip, err := s.prepare(ctx, trip)
	if err != nil {
		return err
	}
	if trip.Date.IsZero() {
		return fmt.Errorf("%w: trip date is required", core.ErrValidation)
	}
	return s.store.UpdateTrip(ctx, trip)
}

func (s *TripService) prepare(ctx context.Context, trip core.Trip) (core.Trip, error) {
	trip.Title = strings.TrimSpace(trip.Title)
	trip.Notes = optional(trip.Notes)
	trip.ProjectTag = optional(trip.ProjectTag)
	if trip.VehicleID != nil {
		if _, err := s.store.GetVehicle(ctx, *trip.VehicleID); err != nil {
			return core.Trip{}, fmt.Errorf("trip vehicle %s: %w", *trip.VehicleID, err)
		}
	}
	return trip, nil
}

// Delete removes the trip and its entries.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteTrip(ctx, id)
}

// List returns trips newest first.
func (s *TripService) List(ctx context.Context) ([]core.Trip, error) {
	trips, err := s.store.ListTrips(ctx, nil)
	if err != nil {
		return nil, err
	}
	core.SortTripsByDate(trips)
	return trips, nil
}

// Entries returns the trip's entries newest first.
func (s *TripService) Entries(ctx context.Context, tripID uuid.UUID) ([]core.TollEntry, error) {
	entries, err := s.store.ListEntries(ctx, func(e core.TollEntry) bool { return e.TripID == tripID })
	if err != nil {
		return nil, err
	}
	core.SortEntriesByTimestamp(entries)
	return entries, nil
}

func (s *TripService) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteEntry(ctx, id)
}
