// Package memory is an in-process implementation of storage.Store and
// storage.KeyValue. Nothing survives a restart; it backs tests and the
// "memory" data backend.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"tolltracker/internal/core"
	"tolltracker/internal/storage"
)

// resetStep runs before each collection is cleared by ResetAll.
var resetStep = func(collection string) error { return nil }

type state struct {
	vehicles []core.Vehicle
	roads    []core.TollRoad
	tariffs  []core.TollTariff
	trips    []core.Trip
	entries  []core.TollEntry
}

type Store struct {
	mu   sync.Mutex
	data state
	kv   map[string]string
}

var (
	_ storage.Store    = (*Store)(nil)
	_ storage.KeyValue = (*Store)(nil)
)

func New() *Store {
	return &Store{kv: make(map[string]string)}
}

// NewFromFiles returns a store pre-filled from seed_roads.txt and
// seed_vehicles.txt in base. Each line holds pipe-separated fields:
//
//	roads:    name|section|currency
//	vehicles: name|plate|category
//
// Missing files are ignored.
func NewFromFiles(base string) *Store {
	s := New()
	for _, fields := range readLines(filepath.Join(base, "seed_roads.txt")) {
		road := core.TollRoad{Name: field(fields, 0), Section: field(fields, 1), Currency: field(fields, 2)}.Normalize()
		road.ID = uuid.New()
		s.data.roads = append(s.data.roads, road)
	}
	for _, fields := range readLines(filepath.Join(base, "seed_vehicles.txt")) {
		s.data.vehicles = append(s.data.vehicles, core.Vehicle{
			ID:       uuid.New(),
			Name:     field(fields, 0),
			Plate:    field(fields, 1),
			Category: core.NormalizeCategory(field(fields, 2)),
		})
	}
	return s
}

func (s *Store) Close() error { return nil }

// Vehicles

func (s *Store) CreateVehicle(_ context.Context, v core.Vehicle) (core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.ID = newID(v.ID)
	if v.IsDefault {
		s.flagDefault(v.ID)
	}
	s.data.vehicles = append(s.data.vehicles, v)
	return v, nil
}

func (s *Store) GetVehicle(_ context.Context, id uuid.UUID) (core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.vehicles, func(v core.Vehicle) bool { return v.ID == id })
	if i < 0 {
		return core.Vehicle{}, fmt.Errorf("get vehicle %s: %w", id, core.ErrNotFound)
	}
	return s.data.vehicles[i], nil
}

func (s *Store) ListVehicles(_ context.Context, pred storage.Predicate[core.Vehicle]) ([]core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.vehicles, pred, nil), nil
}

func (s *Store) UpdateVehicle(_ context.Context, v core.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.vehicles, func(x core.Vehicle) bool { return x.ID == v.ID })
	if i < 0 {
		return fmt.Errorf("update vehicle %s: %w", v.ID, core.ErrNotFound)
	}
	s.data.vehicles[i] = v
	return nil
}

func (s *Store) SetDefaultVehicle(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.data.vehicles, func(v core.Vehicle) bool { return v.ID == id }) < 0 {
		return fmt.Errorf("set default vehicle %s: %w", id, core.ErrNotFound)
	}
	s.flagDefault(id)
	return nil
}

// flagDefault marks id as the only default vehicle. Callers hold s.mu.
func (s *Store) flagDefault(id uuid.UUID) {
	for i := range s.data.vehicles {
		s.data.vehicles[i].IsDefault = s.data.vehicles[i].ID == id
	}
}

func (s *Store) DeleteVehicle(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.vehicles = remove(s.data.vehicles, func(v core.Vehicle) bool { return v.ID == id })
	for i := range s.data.trips {
		if vid := s.data.trips[i].VehicleID; vid != nil && *vid == id {
			s.data.trips[i].VehicleID = nil
		}
	}
	return nil
}

func (s *Store) DeleteAllVehicles(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.vehicles = nil
	for i := range s.data.trips {
		s.data.trips[i].VehicleID = nil
	}
	return nil
}

// Roads

func (s *Store) CreateRoad(_ context.Context, r core.TollRoad) (core.TollRoad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r = r.Normalize()
	r.ID = newID(r.ID)
	s.data.roads = append(s.data.roads, cloneRoad(r))
	return r, nil
}

func (s *Store) GetRoad(_ context.Context, id uuid.UUID) (core.TollRoad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.roads, func(r core.TollRoad) bool { return r.ID == id })
	if i < 0 {
		return core.TollRoad{}, fmt.Errorf("get road %s: %w", id, core.ErrNotFound)
	}
	return cloneRoad(s.data.roads[i]), nil
}

func (s *Store) ListRoads(_ context.Context, pred storage.Predicate[core.TollRoad]) ([]core.TollRoad, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.roads, pred, cloneRoad), nil
}

func (s *Store) UpdateRoad(_ context.Context, r core.TollRoad) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.roads, func(x core.TollRoad) bool { return x.ID == r.ID })
	if i < 0 {
		return fmt.Errorf("update road %s: %w", r.ID, core.ErrNotFound)
	}
	s.data.roads[i] = cloneRoad(r.Normalize())
	return nil
}

func (s *Store) DeleteRoad(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.tariffs = remove(s.data.tariffs, func(t core.TollTariff) bool { return t.RoadID == id })
	s.data.roads = remove(s.data.roads, func(r core.TollRoad) bool { return r.ID == id })
	return nil
}

func (s *Store) DeleteAllRoads(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.tariffs = nil
	s.data.roads = nil
	return nil
}

// Tariffs

func (s *Store) CreateTariff(_ context.Context, t core.TollTariff) (core.TollTariff, error) {
	t.VehicleCategory = core.NormalizeCategory(t.VehicleCategory)
	if err := t.Validate(); err != nil {
		return core.TollTariff{}, fmt.Errorf("create tariff: %w: %w", core.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.tariffs, func(x core.TollTariff) bool {
		return x.RoadID == t.RoadID && x.VehicleCategory == t.VehicleCategory
	})
	if i >= 0 {
		s.data.tariffs[i].Amount = t.Amount
		return s.data.tariffs[i], nil
	}
	t.ID = newID(t.ID)
	s.data.tariffs = append(s.data.tariffs, t)
	return t, nil
}

func (s *Store) GetTariff(_ context.Context, id uuid.UUID) (core.TollTariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.tariffs, func(t core.TollTariff) bool { return t.ID == id })
	if i < 0 {
		return core.TollTariff{}, fmt.Errorf("get tariff %s: %w", id, core.ErrNotFound)
	}
	return s.data.tariffs[i], nil
}

func (s *Store) ListTariffs(_ context.Context, pred storage.Predicate[core.TollTariff]) ([]core.TollTariff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.tariffs, pred, nil), nil
}

func (s *Store) UpdateTariff(_ context.Context, t core.TollTariff) error {
	t.VehicleCategory = core.NormalizeCategory(t.VehicleCategory)
	if err := t.Validate(); err != nil {
		return fmt.Errorf("update tariff: %w: %w", core.ErrValidation, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.tariffs, func(x core.TollTariff) bool { return x.ID == t.ID })
	if i < 0 {
		return fmt.Errorf("update tariff %s: %w", t.ID, core.ErrNotFound)
	}
	dup := indexOf(s.data.tariffs, func(x core.TollTariff) bool {
		return x.ID != t.ID && x.RoadID == t.RoadID && x.VehicleCategory == t.VehicleCategory
	})
	if dup >= 0 {
		return fmt.Errorf("update tariff %s: %w: category %s already priced for road", t.ID, core.ErrValidation, t.VehicleCategory)
	}
	s.data.tariffs[i] = t
	return nil
}

func (s *Store) DeleteTariff(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.tariffs = remove(s.data.tariffs, func(t core.TollTariff) bool { return t.ID == id })
	return nil
}

func (s *Store) DeleteAllTariffs(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.tariffs = nil
	return nil
}

// Trips

func (s *Store) CreateTrip(_ context.Context, t core.Trip) (core.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = newID(t.ID)
	s.data.trips = append(s.data.trips, cloneTrip(t))
	return t, nil
}

func (s *Store) GetTrip(_ context.Context, id uuid.UUID) (core.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.trips, func(t core.Trip) bool { return t.ID == id })
	if i < 0 {
		return core.Trip{}, fmt.Errorf("get trip %s: %w", id, core.ErrNotFound)
	}
	return cloneTrip(s.data.trips[i]), nil
}

func (s *Store) ListTrips(_ context.Context, pred storage.Predicate[core.Trip]) ([]core.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.trips, pred, cloneTrip), nil
}

func (s *Store) UpdateTrip(_ context.Context, t core.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.data.trips, func(x core.Trip) bool { return x.ID == t.ID })
	if i < 0 {
		return fmt.Errorf("update trip %s: %w", t.ID, core.ErrNotFound)
	}
	s.data.trips[i] = cloneTrip(t)
	return nil
}

func (s *Store) DeleteTrip(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.entries = remove(s.data.entries, func(e core.TollEntry) bool { return e.TripID == id })
	s.data.trips = remove(s.data.trips, func(t core.Trip) bool { return t.ID == id })
	return nil
}

func (s *Store) DeleteAllTrips(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.entries = nil
	s.data.trips = nil
	return nil
}

// Entries

func (s *Store) CreateEntry(_ context.Context, e core.TollEntry) (core.TollEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = newID(e.ID)
	e.Quantity = core.ClampQuantity(e.Quantity)
	s.data.entries = append(s.data.entries, cloneEntry(e))
	return e, nil
}

func (s *Store) ListEntries(_ context.Context, pred storage.Predicate[core.TollEntry]) ([]core.TollEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filter(s.data.entries, pred, cloneEntry), nil
}

func (s *Store) DeleteEntry(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.entries = remove(s.data.entries, func(e core.TollEntry) bool { return e.ID == id })
	return nil
}

func (s *Store) DeleteAllEntries(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.entries = nil
	return nil
}

// ResetAll clears a copy of the collections and only swaps it in once every
// step succeeded.
func (s *Store) ResetAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data
	steps := map[string]func(){
		"toll_entries": func() { next.entries = nil },
		"trips":        func() { next.trips = nil },
		"toll_tariffs": func() { next.tariffs = nil },
		"toll_roads":   func() { next.roads = nil },
		"vehicles":     func() { next.vehicles = nil },
	}
	for _, collection := range storage.ResetOrder {
		if err := resetStep(collection); err != nil {
			return fmt.Errorf("reset all: reset %s: %w", collection, err)
		}
		steps[collection]()
	}
	s.data = next
	return nil
}

// Key-value settings

func (s *Store) GetValue(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	return v, ok, nil
}

func (s *Store) SetValue(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *Store) SetValues(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.kv[k] = v
	}
	return nil
}

func (s *Store) DeleteValues(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.kv, k)
	}
	return nil
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// filter returns copies so callers never alias the store's slices. clone,
// when set, also detaches pointer fields.
func filter[T any](items []T, pred storage.Predicate[T], clone func(T) T) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if !pred.Match(v) {
			continue
		}
		if clone != nil {
			v = clone(v)
		}
		out = append(out, v)
	}
	return out
}

func cloneRoad(r core.TollRoad) core.TollRoad {
	r.Notes = clonePtr(r.Notes)
	return r
}

func cloneTrip(t core.Trip) core.Trip {
	t.Notes = clonePtr(t.Notes)
	t.ProjectTag = clonePtr(t.ProjectTag)
	t.VehicleID = clonePtr(t.VehicleID)
	return t
}

func cloneEntry(e core.TollEntry) core.TollEntry {
	e.Note = clonePtr(e.Note)
	return e
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, v := range items {
		if match(v) {
			return i
		}
	}
	return -1
}

// remove returns a new slice without the matching items.
func remove[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, v := range items {
		if !match(v) {
			out = append(out, v)
		}
	}
	return out
}

func field(fields []string, i int) string {
	if i < len(fields) {
		return strings.TrimSpace(fields[i])
	}
	return ""
}

func readLines(path string) [][]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out [][]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, strings.Split(line, "|"))
	}
	return out
}
