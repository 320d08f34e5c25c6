package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tolltracker/internal/core"
)

// newTestRepo opens a fresh SQLite database in a temp dir; it is closed when
// the test finishes.
func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "tolls.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func seed(t *testing.T, repo *SQLiteRepository) (core.TollRoad, core.Trip) {
	t.Helper()
	ctx := context.Background()

	for _, v := range []core.Vehicle{
		{Name: "Van", Plate: "AB123", Category: "B", IsDefault: true},
		{Name: "Car", Plate: "CD456", Category: "A"},
		{Name: "Truck", Plate: "EF789", Category: "C"},
	} {
		_, err := repo.CreateVehicle(ctx, v)
		require.NoError(t, err)
	}

	road, err := repo.CreateRoad(ctx, core.TollRoad{Name: "A1", Currency: "EUR"})
	require.NoError(t, err)
	other, err := repo.CreateRoad(ctx, core.TollRoad{Name: "A4"})
	require.NoError(t, err)

	for _, tt := range []core.TollTariff{
		{RoadID: road.ID, VehicleCategory: "A", Amount: decimal.RequireFromString("1.50")},
		{RoadID: road.ID, VehicleCategory: "B", Amount: decimal.RequireFromString("2.50")},
		{RoadID: other.ID, VehicleCategory: "A", Amount: decimal.RequireFromString("3")},
		{RoadID: other.ID, VehicleCategory: "C", Amount: decimal.RequireFromString("9.99")},
	} {
		_, err := repo.CreateTariff(ctx, tt)
		require.NoError(t, err)
	}

	trip, err := repo.CreateTrip(ctx, core.Trip{Date: time.Now(), Title: "Commute"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := repo.CreateEntry(ctx, core.TollEntry{
			TripID:          trip.ID,
			RoadID:          road.ID,
			VehicleCategory: "A",
			Quantity:        1,
			Amount:          decimal.RequireFromString("1.50"),
			Currency:        "EUR",
			Timestamp:       time.Now(),
		})
		require.NoError(t, err)
	}
	return road, trip
}

type counts struct{ vehicles, roads, tariffs, trips, entries int }

func countAll(t *testing.T, repo *SQLiteRepository) counts {
	t.Helper()
	ctx := context.Background()
	v, err := repo.ListVehicles(ctx, nil)
	require.NoError(t, err)
	r, err := repo.ListRoads(ctx, nil)
	require.NoError(t, err)
	tt, err := repo.ListTariffs(ctx, nil)
	require.NoError(t, err)
	tr, err := repo.ListTrips(ctx, nil)
	require.NoError(t, err)
	e, err := repo.ListEntries(ctx, nil)
	require.NoError(t, err)
	return counts{len(v), len(r), len(tt), len(tr), len(e)}
}

func TestSQLiteRepository_RoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	notes := "northbound only"
	road, err := repo.CreateRoad(ctx, core.TollRoad{Name: " A7 ", Section: "Milano-Genova", Notes: &notes})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, road.ID)
	assert.Equal(t, "USD", road.Currency, "blank currency defaults to USD")

	got, err := repo.GetRoad(ctx, road.ID)
	require.NoError(t, err)
	assert.Equal(t, "A7", got.Name)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)

	vehicle, err := repo.CreateVehicle(ctx, core.Vehicle{Name: "Van", Category: "B"})
	require.NoError(t, err)

	date := time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)
	tag := "client-x"
	trip, err := repo.CreateTrip(ctx, core.Trip{Date: date, ProjectTag: &tag, VehicleID: &vehicle.ID})
	require.NoError(t, err)

	gotTrip, err := repo.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.True(t, gotTrip.Date.Equal(date))
	require.NotNil(t, gotTrip.VehicleID)
	assert.Equal(t, vehicle.ID, *gotTrip.VehicleID)
	assert.Nil(t, gotTrip.Notes)

	entry, err := repo.CreateEntry(ctx, core.TollEntry{
		TripID:          trip.ID,
		RoadID:          road.ID,
		VehicleCategory: "B",
		Quantity:        0,
		Amount:          decimal.RequireFromString("12.345"),
		Currency:        "USD",
		Timestamp:       date,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Quantity, "quantity is clamped to 1")

	entries, err := repo.ListEntries(ctx, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Amount.Equal(decimal.RequireFromString("12.345")), "amount must round-trip exactly")
	assert.True(t, entries[0].Timestamp.Equal(date))
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetRoad(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = repo.GetTrip(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = repo.GetVehicle(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = repo.UpdateRoad(ctx, core.TollRoad{ID: uuid.New(), Name: "x"})
	assert.ErrorIs(t, err, core.ErrNotFound)

	// deleting a missing id is a no-op
	assert.NoError(t, repo.DeleteEntry(ctx, uuid.New()))
	assert.NoError(t, repo.DeleteRoad(ctx, uuid.New()))
}

func TestSQLiteRepository_TariffUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	road, err := repo.CreateRoad(ctx, core.TollRoad{Name: "A1"})
	require.NoError(t, err)

	first, err := repo.CreateTariff(ctx, core.TollTariff{RoadID: road.ID, VehicleCategory: "b", Amount: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.Equal(t, "B", first.VehicleCategory)

	second, err := repo.CreateTariff(ctx, core.TollTariff{RoadID: road.ID, VehicleCategory: " B ", Amount: decimal.RequireFromString("2.75")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same road and category keeps one tariff")

	tariffs, err := repo.ListTariffs(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tariffs, 1)
	assert.True(t, tariffs[0].Amount.Equal(decimal.RequireFromString("2.75")))

	_, err = repo.CreateTariff(ctx, core.TollTariff{RoadID: road.ID, VehicleCategory: "A", Amount: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, core.ErrValidation)

	other, err := repo.CreateTariff(ctx, core.TollTariff{RoadID: road.ID, VehicleCategory: "C", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	other.VehicleCategory = "b"
	assert.ErrorIs(t, repo.UpdateTariff(ctx, other), core.ErrValidation)
}

func TestSQLiteRepository_ListWithPredicate(t *testing.T) {
	repo := newTestRepo(t)
	road, _ := seed(t, repo)

	tariffs, err := repo.ListTariffs(context.Background(), func(tt core.TollTariff) bool {
		return tt.RoadID == road.ID
	})
	require.NoError(t, err)
	assert.Len(t, tariffs, 2)
}

func TestSQLiteRepository_DeleteRoadCascadesTariffs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	road, _ := seed(t, repo)

	require.NoError(t, repo.DeleteRoad(ctx, road.ID))

	c := countAll(t, repo)
	assert.Equal(t, 1, c.roads)
	assert.Equal(t, 2, c.tariffs, "only the other road's tariffs remain")
	assert.Equal(t, 5, c.entries, "entries are kept as history")
}

func TestSQLiteRepository_DeleteTripCascadesEntries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_, trip := seed(t, repo)

	require.NoError(t, repo.DeleteTrip(ctx, trip.ID))

	c := countAll(t, repo)
	assert.Equal(t, 0, c.trips)
	assert.Equal(t, 0, c.entries)
}

func TestSQLiteRepository_DeleteVehicleClearsTrips(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v, err := repo.CreateVehicle(ctx, core.Vehicle{Name: "Van"})
	require.NoError(t, err)
	trip, err := repo.CreateTrip(ctx, core.Trip{Date: time.Now(), VehicleID: &v.ID})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteVehicle(ctx, v.ID))

	got, err := repo.GetTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Nil(t, got.VehicleID)
}

func TestSQLiteRepository_ResetAll(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)
	require.Equal(t, counts{3, 2, 4, 1, 5}, countAll(t, repo))

	require.NoError(t, repo.ResetAll(context.Background()))

	assert.Equal(t, counts{}, countAll(t, repo))
}

func TestSQLiteRepository_ResetAllIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	seed(t, repo)

	fault := errors.New("disk unplugged")
	orig := resetStep
	resetStep = func(table string) error {
		if table == "toll_roads" {
			return fault
		}
		return nil
	}
	t.Cleanup(func() { resetStep = orig })

	err := repo.ResetAll(context.Background())
	require.ErrorIs(t, err, fault)

	assert.Equal(t, counts{3, 2, 4, 1, 5}, countAll(t, repo), "failed reset must leave every collection untouched")
}

func TestSQLiteRepository_KeyValue(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := repo.GetValue(ctx, "prefs.last_road_id")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SetValue(ctx, "prefs.last_road_id", "x"))
	require.NoError(t, repo.SetValue(ctx, "prefs.last_road_id", "y"))

	v, ok, err := repo.GetValue(ctx, "prefs.last_road_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "y", v)

	// the entity reset does not touch preferences
	require.NoError(t, repo.ResetAll(ctx))
	_, ok, err = repo.GetValue(ctx, "prefs.last_road_id")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.DeleteValues(ctx, "prefs.last_road_id", "missing"))
	_, ok, err = repo.GetValue(ctx, "prefs.last_road_id")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteRepository_DefaultVehicle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	car, err := repo.CreateVehicle(ctx, core.Vehicle{Name: "Car", Category: "A", IsDefault: true})
	require.NoError(t, err)
	van, err := repo.CreateVehicle(ctx, core.Vehicle{Name: "Van", Category: "B", IsDefault: true})
	require.NoError(t, err)

	isDefault := func(v core.Vehicle) bool { return v.IsDefault }
	defaults, err := repo.ListVehicles(ctx, isDefault)
	require.NoError(t, err)
	require.Len(t, defaults, 1)
	assert.Equal(t, van.ID, defaults[0].ID)

	require.NoError(t, repo.SetDefaultVehicle(ctx, car.ID))
	assert.ErrorIs(t, repo.SetDefaultVehicle(ctx, uuid.New()), core.ErrNotFound)

	defaults, err = repo.ListVehicles(ctx, isDefault)
	require.NoError(t, err)
	require.Len(t, defaults, 1, "unknown id rolls back")
	assert.Equal(t, car.ID, defaults[0].ID)
}

func TestSQLiteRepository_SetValues(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SetValue(ctx, "app.language", "en"))
	require.NoError(t, repo.SetValues(ctx, map[string]string{
		"app.language":      "it",
		"app.monthly_limit": "40",
	}))

	for key, want := range map[string]string{"app.language": "it", "app.monthly_limit": "40"} {
		v, ok, err := repo.GetValue(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, want, v, key)
	}
}

func TestSQLiteRepository_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tolls.db")
	ctx := context.Background()

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	road, err := repo.CreateRoad(ctx, core.TollRoad{Name: "A1", Currency: "EUR"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetRoad(ctx, road.ID)
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)
}
