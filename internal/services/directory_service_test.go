package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tolltracker/internal/core"
	"tolltracker/internal/services"
	"tolltracker/internal/storage/memory"
)

func TestDirectoryService_AddRoad(t *testing.T) {
	ctx := context.Background()
	svc := services.NewDirectoryService(memory.New())

	notes := "   "
	road, err := svc.AddRoad(ctx, core.TollRoad{Name: "  A1 ", Section: " Milano-Bologna ", Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "A1", road.Name)
	assert.Equal(t, "Milano-Bologna", road.Section)
	assert.Equal(t, "USD", road.Currency)
	assert.Nil(t, road.Notes)

	_, err = svc.AddRoad(ctx, core.TollRoad{Name: "  "})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestDirectoryService_UpdateRoad(t *testing.T) {
	ctx := context.Background()
	svc := services.NewDirectoryService(memory.New())
	road, err := svc.AddRoad(ctx, core.TollRoad{Name: "A1"})
	require.NoError(t, err)

	road.Currency = "EUR"
	require.NoError(t, svc.UpdateRoad(ctx, road))
	roads, _ := svc.Roads(ctx)
	require.Len(t, roads, 1)
	assert.Equal(t, "EUR", roads[0].Currency)

	assert.ErrorIs(t, svc.UpdateRoad(ctx, core.TollRoad{ID: uuid.New(), Name: "ghost"}), core.ErrNotFound)
}

func TestDirectoryService_AddTariff(t *testing.T) {
	ctx := context.Background()
	svc := services.NewDirectoryService(memory.New())
	road, err := svc.AddRoad(ctx, core.TollRoad{Name: "A1"})
	require.NoError(t, err)

	t.Run("comma decimal", func(t *testing.T) {
		tt, err := svc.AddTariff(ctx, road.ID, "b", "12,34")
		require.NoError(t, err)
		assert.Equal(t, "B", tt.VehicleCategory)
		assert.True(t, dec("12.34").Equal(tt.Amount))
	})

	t.Run("replaces existing price", func(t *testing.T) {
		_, err := svc.AddTariff(ctx, road.ID, "B", "7.5")
		require.NoError(t, err)
		tariffs, err := svc.TariffsForRoad(ctx, road.ID)
		require.NoError(t, err)
		require.Len(t, tariffs, 1)
		assert.True(t, dec("7.5").Equal(tariffs[0].Amount))
	})

	for _, bad := range []string{"", "abc", "-1", "1.2.3"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := svc.AddTariff(ctx, road.ID, "A", bad)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.ErrorIs(t, err, core.ErrInvalidAmount)
		})
	}

	t.Run("blank category", func(t *testing.T) {
		_, err := svc.AddTariff(ctx, road.ID, "  ", "1")
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("unknown road", func(t *testing.T) {
		_, err := svc.AddTariff(ctx, uuid.New(), "A", "1")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestDirectoryService_DeleteRoadDropsTariffs(t *testing.T) {
	ctx := context.Background()
	svc := services.NewDirectoryService(memory.New())
	road, _ := svc.AddRoad(ctx, core.TollRoad{Name: "A1"})
	tariff, err := svc.AddTariff(ctx, road.ID, "A", "1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRoad(ctx, road.ID))
	tariffs, _ := svc.TariffsForRoad(ctx, road.ID)
	assert.Empty(t, tariffs)

	assert.NoError(t, svc.DeleteTariff(ctx, tariff.ID), "already gone")
}

func TestDirectoryService_Vehicles(t *testing.T) {
	ctx := context.Background()
	svc := services.NewDirectoryService(memory.New())

	none, err := svc.DefaultVehicle(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)

	car, err := svc.AddVehicle(ctx, core.Vehicle{Name: " Car ", Category: "", IsDefault: true})
	require.NoError(t, err)
	assert.Equal(t, "Car", car.Name)
	assert.Equal(t, "A", car.Category)
	assert.True(t, car.IsDefault)

	van, err := svc.AddVehicle(ctx, core.Vehicle{Name: "Van", Category: "b"})
	require.NoError(t, err)
	assert.Equal(t, "B", van.Category)

	require.NoError(t, svc.SetDefaultVehicle(ctx, van.ID))
	def, err := svc.DefaultVehicle(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, van.ID, def.ID)

	vs, _ := svc.Vehicles(ctx)
	defaults := 0
	for _, v := range vs {
		if v.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)

	assert.ErrorIs(t, svc.SetDefaultVehicle(ctx, uuid.New()), core.ErrNotFound)

	_, err = svc.AddVehicle(ctx, core.Vehicle{Name: ""})
	assert.ErrorIs(t, err, core.ErrValidation)

	require.NoError(t, svc.DeleteVehicle(ctx, van.ID))
	def, err = svc.DefaultVehicle(ctx)
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestDirectoryService_AddDefaultVehicleReplacesDefault(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := services.NewDirectoryService(store)

	_, err := svc.AddVehicle(ctx, core.Vehicle{Name: "Car", IsDefault: true})
	require.NoError(t, err)
	van, err := svc.AddVehicle(ctx, core.Vehicle{Name: "Van", IsDefault: true})
	require.NoError(t, err)
	assert.True(t, van.IsDefault)

	defaults, err := store.ListVehicles(ctx, func(v core.Vehicle) bool { return v.IsDefault })
	require.NoError(t, err)
	require.Len(t, defaults, 1)
	assert.Equal(t, van.ID, defaults[0].ID)
}
