package storage

import (
	"context"

	"github.com/google/uuid"

	"tolltracker/internal/core"
)

// Predicate filters records during a List call. A nil predicate matches everything.
type Predicate[T any] func(T) bool

// Match reports whether v satisfies p.
func (p Predicate[T]) Match(v T) bool {
	return p == nil || p(v)
}

// Repositories for each record type. List returns records in insertion order;
// Delete of a missing id is a no-op.
type (
	VehicleRepository interface {
		// CreateVehicle clears the other defaults when v.IsDefault is set.
		CreateVehicle(ctx context.Context, v core.Vehicle) (core.Vehicle, error)
		GetVehicle(ctx context.Context, id uuid.UUID) (core.Vehicle, error)
		ListVehicles(ctx context.Context, pred Predicate[core.Vehicle]) ([]core.Vehicle, error)
		UpdateVehicle(ctx context.Context, v core.Vehicle) error
		// SetDefaultVehicle flags id as the only default vehicle.
		SetDefaultVehicle(ctx context.Context, id uuid.UUID) error
		// DeleteVehicle also clears the vehicle reference on trips.
		DeleteVehicle(ctx context.Context, id uuid.UUID) error
		DeleteAllVehicles(ctx context.Context) error
	}

	RoadRepository interface {
		CreateRoad(ctx context.Context, r core.TollRoad) (core.TollRoad, error)
		GetRoad(ctx context.Context, id uuid.UUID) (core.TollRoad, error)
		ListRoads(ctx context.Context, pred Predicate[core.TollRoad]) ([]core.TollRoad, error)
		UpdateRoad(ctx context.Context, r core.TollRoad) error
		// DeleteRoad removes the road together with its tariffs.
		DeleteRoad(ctx context.Context, id uuid.UUID) error
		DeleteAllRoads(ctx context.Context) error
	}

	TariffRepository interface {
		// CreateTariff upserts on (road, category): an existing tariff for the
		// pair gets the new amount and is returned.
		CreateTariff(ctx context.Context, t core.TollTariff) (core.TollTariff, error)
		GetTariff(ctx context.Context, id uuid.UUID) (core.TollTariff, error)
		ListTariffs(ctx context.Context, pred Predicate[core.TollTariff]) ([]core.TollTariff, error)
		UpdateTariff(ctx context.Context, t core.TollTariff) error
		DeleteTariff(ctx context.Context, id uuid.UUID) error
		DeleteAllTariffs(ctx context.Context) error
	}

	TripRepository interface {
		CreateTrip(ctx context.Context, t core.Trip) (core.Trip, error)
		GetTrip(ctx context.Context, id uuid.UUID) (core.Trip, error)
		ListTrips(ctx context.Context, pred Predicate[core.Trip]) ([]core.Trip, error)
		UpdateTrip(ctx context.Context, t core.Trip) error
		// DeleteTrip removes the trip together with its entries.
		DeleteTrip(ctx context.Context, id uuid.UUID) error
		DeleteAllTrips(ctx context.Context) error
	}

	EntryRepository interface {
		CreateEntry(ctx context.Context, e core.TollEntry) (core.TollEntry, error)
		ListEntries(ctx context.Context, pred Predicate[core.TollEntry]) ([]core.TollEntry, error)
		DeleteEntry(ctx context.Context, id uuid.UUID) error
		DeleteAllEntries(ctx context.Context) error
	}

	// KeyValue is the scalar preference storage shared by prefs and settings.
	// Get returns ok=false for missing keys.
	KeyValue interface {
		GetValue(ctx context.Context, key string) (value string, ok bool, err error)
		SetValue(ctx context.Context, key, value string) error
		// SetValues writes all pairs or none.
		SetValues(ctx context.Context, values map[string]string) error
		DeleteValues(ctx context.Context, keys ...string) error
	}

	// Store is the full entity store.
	Store interface {
		VehicleRepository
		RoadRepository
		TariffRepository
		TripRepository
		EntryRepository

		// ResetAll deletes every entry, trip, tariff, road and vehicle in that
		// order. It is atomic: on error nothing has been deleted.
		ResetAll(ctx context.Context) error
		Close() error
	}
)

// ResetOrder lists the collections in the order ResetAll clears them.
var ResetOrder = []string{"toll_entries", "trips", "toll_tariffs", "toll_roads", "vehicles"}
