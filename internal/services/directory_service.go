package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tolltracker/internal/core"
	"tolltracker/internal/storage"
)

// DirectoryStore is the subset of the store holding reference data.
type DirectoryStore interface {
	storage.RoadRepository
	storage.TariffRepository
	storage.VehicleRepository
}

// DirectoryService manages roads, their tariffs and vehicles.
type DirectoryService struct {
	store DirectoryStore
}

func NewDirectoryService(store DirectoryStore) *DirectoryService {
	return &DirectoryService{store: store}
}

func (s *DirectoryService) AddRoad(ctx context.Context, road core.TollRoad) (core.TollRoad, error) {
	road = road.Normalize()
	if road.Name == "" {
		return core.TollRoad{}, fmt.Errorf("%w: road name is required", core.ErrValidation)
	}
	road.Notes = optional(road.Notes)
	return s.store.CreateRoad(ctx, road)
}

func (s *DirectoryService) UpdateRoad(ctx context.Context, road core.TollRoad) error {
	road = road.Normalize()
	if road.Name == "" {
		return fmt.Errorf("%w: road name is required", core.ErrValidation)
	}
	road.Notes = optional(road.Notes)
	return s.store.UpdateRoad(ctx, road)
}

// DeleteRoad removes the road and its tariffs. Recorded entries stay.
func (s *DirectoryService) DeleteRoad(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteRoad(ctx, id)
}

func (s *DirectoryService) Road(ctx context.Context, id uuid.UUID) (core.TollRoad, error) {
	return s.store.GetRoad(ctx, id)
}

func (s *DirectoryService) Roads(ctx context.Context) ([]core.TollRoad, error) {
	return s.store.ListRoads(ctx, nil)
}

// AddTariff parses amountText ("12.34" or "12,34") and sets the road's
// price for category, replacing any existing price for the pair.
func (s *DirectoryService) AddTariff(ctx context.Context, roadID uuid.UUID, category, amountText string) (core.TollTariff, error) {
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return core.TollTariff{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}
	if _, err := s.store.GetRoad(ctx, roadID); err != nil {
		return core.TollTariff{}, fmt.Errorf("add tariff: road %s: %w", roadID, err)
	}

	t := core.TollTariff{RoadID: roadID, VehicleCategory: core.NormalizeCategory(category), Amount: amount}
	if err := t.Validate(); err != nil {
		return core.TollTariff{}, fmt.Errorf("%w: %w", core.ErrValidation, err)
	}
	return s.store.CreateTariff(ctx, t)
}

func (s *DirectoryService) DeleteTariff(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteTariff(ctx, id)
}

func (s *DirectoryService) TariffsForRoad(ctx context.Context, roadID uuid.UUID) ([]core.TollTariff, error) {
	return s.store.ListTariffs(ctx, func(t core.TollTariff) bool { return t.RoadID == roadID })
}

func (s *DirectoryService) AddVehicle(ctx context.Context, v core.Vehicle) (core.Vehicle, error) {
	v.Name = strings.TrimSpace(v.Name)
	v.Plate = strings.TrimSpace(v.Plate)
	v.Category = core.CategoryOrDefault(v.Category)
	if v.Name == "" {
		return core.Vehicle{}, fmt.Errorf("%w: vehicle name is required", core.ErrValidation)
	}
	return s.store.CreateVehicle(ctx, core.Vehicle{Name: v.Name, Plate: v.Plate, Category: v.Category, IsDefault: v.IsDefault})
}

// DeleteVehicle removes the vehicle; trips that used it keep no vehicle.
func (s *DirectoryService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteVehicle(ctx, id)
}

func (s *DirectoryService) Vehicles(ctx context.Context) ([]core.Vehicle, error) {
	return s.store.ListVehicles(ctx, nil)
}

// SetDefaultVehicle flags id as the default and clears the flag elsewhere.
func (s *DirectoryService) SetDefaultVehicle(ctx context.Context, id uuid.UUID) error {
	return s.store.SetDefaultVehicle(ctx, id)
}

// DefaultVehicle returns the flagged vehicle, or nil when none is.
func (s *DirectoryService) DefaultVehicle(ctx context.Context) (*core.Vehicle, error) {
	vs, err := s.store.ListVehicles(ctx, func(v core.Vehicle) bool { return v.IsDefault })
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}
	return &vs[0], nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	return core.OptionalText(*s)
}
