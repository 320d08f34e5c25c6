// Package storage contains the entity store ports and the SQLite
// implementation backing the toll tracker. No business rules live here beyond
// the cascade and uniqueness rules the store itself guarantees.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tolltracker/internal/core"

	_ "modernc.org/sqlite"
)

// resetStep runs before each table is cleared by ResetAll. Tests replace it
// to interrupt the reset half way.
var resetStep = func(table string) error { return nil }

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ Store    = (*SQLiteRepository)(nil)
	_ KeyValue = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// isUniqueViolation reports a UNIQUE index conflict from the sqlite driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns)
}

// queryAll runs q and collects the rows accepted by pred.
func queryAll[T any](ctx context.Context, db *sql.DB, q string, scan func(scanner) (T, error), pred Predicate[T]) ([]T, error) {
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		if pred.Match(v) {
			out = append(out, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// Vehicles

const vehicleColumns = `id, name, plate, category, is_default`

func scanVehicle(s scanner) (core.Vehicle, error) {
	var v core.Vehicle
	err := s.Scan(&v.ID, &v.Name, &v.Plate, &v.Category, &v.IsDefault)
	return v, err
}

func (r *SQLiteRepository) CreateVehicle(ctx context.Context, v core.Vehicle) (core.Vehicle, error) {
	v.ID = newID(v.ID)
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if v.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE vehicles SET is_default = 0 WHERE is_default = 1`); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO vehicles (`+vehicleColumns+`) VALUES (?, ?, ?, ?, ?)`,
			v.ID, v.Name, v.Plate, v.Category, v.IsDefault)
		return err
	})
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}

	slog.InfoContext(ctx, "Vehicle saved to SQLite", "id", v.ID, "name", v.Name, "category", v.Category)
	return v, nil
}

func (r *SQLiteRepository) GetVehicle(ctx context.Context, id uuid.UUID) (core.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = ?`, id)
	v, err := scanVehicle(row)
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("get vehicle %s: %w", id, notFound(err))
	}
	return v, nil
}

func (r *SQLiteRepository) ListVehicles(ctx context.Context, pred Predicate[core.Vehicle]) ([]core.Vehicle, error) {
	out, err := queryAll(ctx, r.db, `SELECT `+vehicleColumns+` FROM vehicles ORDER BY rowid`, scanVehicle, pred)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateVehicle(ctx context.Context, v core.Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET name = ?, plate = ?, category = ?, is_default = ? WHERE id = ?`,
		v.Name, v.Plate, v.Category, v.IsDefault, v.ID)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		return fmt.Errorf("update vehicle %s: %w", v.ID, err)
	}
	return nil
}

// SetDefaultVehicle flags id and clears every other vehicle in one transaction.
func (r *SQLiteRepository) SetDefaultVehicle(ctx context.Context, id uuid.UUID) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE vehicles SET is_default = 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE vehicles SET is_default = 0 WHERE id <> ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("set default vehicle %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE trips SET vehicle_id = NULL WHERE vehicle_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete vehicle %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAllVehicles(ctx context.Context) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE trips SET vehicle_id = NULL`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM vehicles`)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete all vehicles: %w", err)
	}
	return nil
}

// Roads

const roadColumns = `id, name, section, direction, currency, notes`

func scanRoad(s scanner) (core.TollRoad, error) {
	var (
		road  core.TollRoad
		notes sql.NullString
	)
	if err := s.Scan(&road.ID, &road.Name, &road.Section, &road.Direction, &road.Currency, &notes); err != nil {
		return core.TollRoad{}, err
	}
	road.Notes = stringPtr(notes)
	return road, nil
}

func (r *SQLiteRepository) CreateRoad(ctx context.Context, road core.TollRoad) (core.TollRoad, error) {
	road = road.Normalize()
	road.ID = newID(road.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO toll_roads (`+roadColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		road.ID, road.Name, road.Section, road.Direction, road.Currency, nullString(road.Notes))
	if err != nil {
		return core.TollRoad{}, fmt.Errorf("create road: %w", err)
	}

	slog.InfoContext(ctx, "Road saved to SQLite", "id", road.ID, "name", road.Name, "currency", road.Currency)
	return road, nil
}

func (r *SQLiteRepository) GetRoad(ctx context.Context, id uuid.UUID) (core.TollRoad, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roadColumns+` FROM toll_roads WHERE id = ?`, id)
	road, err := scanRoad(row)
	if err != nil {
		return core.TollRoad{}, fmt.Errorf("get road %s: %w", id, notFound(err))
	}
	return road, nil
}

func (r *SQLiteRepository) ListRoads(ctx context.Context, pred Predicate[core.TollRoad]) ([]core.TollRoad, error) {
	out, err := queryAll(ctx, r.db, `SELECT `+roadColumns+` FROM toll_roads ORDER BY rowid`, scanRoad, pred)
	if err != nil {
		return nil, fmt.Errorf("list roads: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateRoad(ctx context.Context, road core.TollRoad) error {
	road = road.Normalize()
	res, err := r.db.ExecContext(ctx,
		`UPDATE toll_roads SET name = ?, section = ?, direction = ?, currency = ?, notes = ? WHERE id = ?`,
		road.Name, road.Section, road.Direction, road.Currency, nullString(road.Notes), road.ID)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		return fmt.Errorf("update road %s: %w", road.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRoad(ctx context.Context, id uuid.UUID) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM toll_tariffs WHERE road_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM toll_roads WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete road %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Road deleted with its tariffs", "id", id)
	return nil
}

func (r *SQLiteRepository) DeleteAllRoads(ctx context.Context) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM toll_tariffs`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM toll_roads`)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete all roads: %w", err)
	}
	return nil
}

// Tariffs

const tariffColumns = `id, road_id, vehicle_category, amount`

func scanTariff(s scanner) (core.TollTariff, error) {
	var t core.TollTariff
	err := s.Scan(&t.ID, &t.RoadID, &t.VehicleCategory, &t.Amount)
	return t, err
}

func (r *SQLiteRepository) CreateTariff(ctx context.Context, t core.TollTariff) (core.TollTariff, error) {
	t.VehicleCategory = core.NormalizeCategory(t.VehicleCategory)
	if err := t.Validate(); err != nil {
		return core.TollTariff{}, fmt.Errorf("create tariff: %w: %w", core.ErrValidation, err)
	}
	t.ID = newID(t.ID)

	row := r.db.QueryRowContext(ctx,
		`INSERT INTO toll_tariffs (`+tariffColumns+`) VALUES (?, ?, ?, ?)
		 ON CONFLICT (road_id, vehicle_category) DO UPDATE SET amount = excluded.amount
		 RETURNING id`,
		t.ID, t.RoadID, t.VehicleCategory, t.Amount)
	if err := row.Scan(&t.ID); err != nil {
		return core.TollTariff{}, fmt.Errorf("create tariff: %w", err)
	}

	slog.InfoContext(ctx, "Tariff saved to SQLite",
		"id", t.ID,
		"road_id", t.RoadID,
		"category", t.VehicleCategory,
		"amount", t.Amount.String())
	return t, nil
}

func (r *SQLiteRepository) GetTariff(ctx context.Context, id uuid.UUID) (core.TollTariff, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tariffColumns+` FROM toll_tariffs WHERE id = ?`, id)
	t, err := scanTariff(row)
	if err != nil {
		return core.TollTariff{}, fmt.Errorf("get tariff %s: %w", id, notFound(err))
	}
	return t, nil
}

func (r *SQLiteRepository) ListTariffs(ctx context.Context, pred Predicate[core.TollTariff]) ([]core.TollTariff, error) {
	out, err := queryAll(ctx, r.db, `SELECT `+tariffColumns+` FROM toll_tariffs ORDER BY rowid`, scanTariff, pred)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateTariff(ctx context.Context, t core.TollTariff) error {
	t.VehicleCategory = core.NormalizeCategory(t.VehicleCategory)
	if err := t.Validate(); err != nil {
		return fmt.Errorf("update tariff: %w: %w", core.ErrValidation, err)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE toll_tariffs SET road_id = ?, vehicle_category = ?, amount = ? WHERE id = ?`,
		t.RoadID, t.VehicleCategory, t.Amount, t.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("update tariff %s: %w: road already has a %s tariff", t.ID, core.ErrValidation, t.VehicleCategory)
	}
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		return fmt.Errorf("update tariff %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTariff(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM toll_tariffs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete tariff %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAllTariffs(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM toll_tariffs`); err != nil {
		return fmt.Errorf("delete all tariffs: %w", err)
	}
	return nil
}

// Trips

const tripColumns = `id, date_ns, title, notes, project_tag, vehicle_id`

func scanTrip(s scanner) (core.Trip, error) {
	var (
		t         core.Trip
		dateNs    int64
		notes     sql.NullString
		tag       sql.NullString
		vehicleID uuid.NullUUID
	)
	if err := s.Scan(&t.ID, &dateNs, &t.Title, &notes, &tag, &vehicleID); err != nil {
		return core.Trip{}, err
	}
	t.Date = fromUnixNano(dateNs)
	t.Notes = stringPtr(notes)
	t.ProjectTag = stringPtr(tag)
	if vehicleID.Valid {
		id := vehicleID.UUID
		t.VehicleID = &id
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTrip(ctx context.Context, t core.Trip) (core.Trip, error) {
	t.ID = newID(t.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trips (`+tripColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date.UnixNano(), t.Title, nullString(t.Notes), nullString(t.ProjectTag), nullUUID(t.VehicleID))
	if err != nil {
		return core.Trip{}, fmt.Errorf("create trip: %w", err)
	}

	slog.InfoContext(ctx, "Trip saved to SQLite", "id", t.ID, "title", t.Title, "date", t.Date)
	return t, nil
}

func (r *SQLiteRepository) GetTrip(ctx context.Context, id uuid.UUID) (core.Trip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err != nil {
		return core.Trip{}, fmt.Errorf("get trip %s: %w", id, notFound(err))
	}
	return t, nil
}

func (r *SQLiteRepository) ListTrips(ctx context.Context, pred Predicate[core.Trip]) ([]core.Trip, error) {
	out, err := queryAll(ctx, r.db, `SELECT `+tripColumns+` FROM trips ORDER BY rowid`, scanTrip, pred)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateTrip(ctx context.Context, t core.Trip) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE trips SET date_ns = ?, title = ?, notes = ?, project_tag = ?, vehicle_id = ? WHERE id = ?`,
		t.Date.UnixNano(), t.Title, nullString(t.Notes), nullString(t.ProjectTag), nullUUID(t.VehicleID), t.ID)
	if err == nil {
		err = requireAffected(res)
	}
	if err != nil {
		return fmt.Errorf("update trip %s: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM toll_entries WHERE trip_id = ?`, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete trip %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Trip deleted with its entries", "id", id)
	return nil
}

func (r *SQLiteRepository) DeleteAllTrips(ctx context.Context) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM toll_entries`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM trips`)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete all trips: %w", err)
	}
	return nil
}

// Entries

const entryColumns = `id, trip_id, road_id, vehicle_category, quantity, amount, currency, timestamp_ns, note`

func scanEntry(s scanner) (core.TollEntry, error) {
	var (
		e    core.TollEntry
		tsNs int64
		note sql.NullString
	)
	if err := s.Scan(&e.ID, &e.TripID, &e.RoadID, &e.VehicleCategory, &e.Quantity,
		&e.Amount, &e.Currency, &tsNs, &note); err != nil {
		return core.TollEntry{}, err
	}
	e.Timestamp = fromUnixNano(tsNs)
	e.Note = stringPtr(note)
	return e, nil
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.TollEntry) (core.TollEntry, error) {
	e.ID = newID(e.ID)
	e.Quantity = core.ClampQuantity(e.Quantity)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO toll_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.TripID, e.RoadID, e.VehicleCategory, e.Quantity,
		e.Amount, e.Currency, e.Timestamp.UnixNano(), nullString(e.Note))
	if err != nil {
		return core.TollEntry{}, fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", e.ID,
		"trip_id", e.TripID,
		"road_id", e.RoadID,
		"category", e.VehicleCategory,
		"quantity", e.Quantity,
		"amount", e.Amount.String(),
		"currency", e.Currency)
	return e, nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, pred Predicate[core.TollEntry]) ([]core.TollEntry, error) {
	out, err := queryAll(ctx, r.db, `SELECT `+entryColumns+` FROM toll_entries ORDER BY rowid`, scanEntry, pred)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM toll_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteAllEntries(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM toll_entries`); err != nil {
		return fmt.Errorf("delete all entries: %w", err)
	}
	return nil
}

// ResetAll clears every collection inside one transaction.
func (r *SQLiteRepository) ResetAll(ctx context.Context) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range ResetOrder {
			if err := resetStep(table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "Reset aborted, data left unchanged", "error", err)
		return fmt.Errorf("reset all: %w", err)
	}

	slog.InfoContext(ctx, "All toll data deleted")
	return nil
}

// Key-value settings

func (r *SQLiteRepository) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) SetValue(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO kv_settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) SetValues(ctx context.Context, values map[string]string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for key, value := range values {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO kv_settings (key, value) VALUES (?, ?)
				 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
				key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set settings: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteValues(ctx context.Context, keys ...string) error {
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM kv_settings WHERE key = ?`, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}
