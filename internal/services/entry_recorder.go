package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tolltracker/internal/core"
	"tolltracker/internal/log"
	"tolltracker/internal/storage"
)

// EntryStore is the subset of the store used to record entries.
type EntryStore interface {
	TariffLister
	GetRoad(ctx context.Context, id uuid.UUID) (core.TollRoad, error)
	GetTrip(ctx context.Context, id uuid.UUID) (core.Trip, error)
	ListTrips(ctx context.Context, pred storage.Predicate[core.Trip]) ([]core.Trip, error)
	CreateTrip(ctx context.Context, t core.Trip) (core.Trip, error)
	CreateEntry(ctx context.Context, e core.TollEntry) (core.TollEntry, error)
}

// PreferenceWriter remembers the last road and category for the next quick add.
type PreferenceWriter interface {
	SetLastRoad(ctx context.Context, id *uuid.UUID) error
	SetLastCategory(ctx context.Context, category *string) error
}

type RecordEntryInput struct {
	TripID   uuid.UUID
	RoadID   uuid.UUID
	Category string
	Quantity int
	Note     string
}

type QuickAddInput struct {
	RoadID   uuid.UUID
	Category string
	Quantity int
	Note     string
}

// EntryRecorder is the only place TollEntry records are built.
type EntryRecorder struct {
	store    EntryStore
	resolver *TariffResolver
	prefs    PreferenceWriter
	now      func() time.Time
	loc      *time.Location
	logger   *log.Logger

	// quick adds must not race to create two daily trips
	quickMu sync.Mutex
}

type RecorderOption func(*EntryRecorder)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *EntryRecorder) { r.now = now }
}

// WithLocation sets the timezone that defines "today".
func WithLocation(loc *time.Location) RecorderOption {
	return func(r *EntryRecorder) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func WithRecorderLogger(l *log.Logger) RecorderOption {
	return func(r *EntryRecorder) { r.logger = l.WithComponent(log.ComponentRecorder) }
}

// NewEntryRecorder wires a recorder. prefs may be nil, in which case quick
// adds are not remembered.
func NewEntryRecorder(store EntryStore, prefs PreferenceWriter, opts ...RecorderOption) *EntryRecorder {
	r := &EntryRecorder{
		store:    store,
		resolver: NewTariffResolver(store),
		prefs:    prefs,
		now:      time.Now,
		loc:      time.Local,
		logger:   log.Default(log.ComponentRecorder),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecordEntry prices and stores an entry on an existing trip. The amount is
// zero when the road has no tariff for the category.
func (r *EntryRecorder) RecordEntry(ctx context.Context, in RecordEntryInput) (core.TollEntry, error) {
	category := core.CategoryOrDefault(in.Category)

	road, err := r.store.GetRoad(ctx, in.RoadID)
	if err != nil {
		return core.TollEntry{}, fmt.Errorf("record entry: road %s: %w", in.RoadID, err)
	}
	if _, err := r.store.GetTrip(ctx, in.TripID); err != nil {
		return core.TollEntry{}, fmt.Errorf("record entry: trip %s: %w", in.TripID, err)
	}

	res, err := r.resolver.Resolve(ctx, road.ID, category)
	if err != nil {
		return core.TollEntry{}, fmt.Errorf("record entry: %w", err)
	}

	entry, err := r.store.CreateEntry(ctx, core.TollEntry{
		TripID:          in.TripID,
		RoadID:          road.ID,
		VehicleCategory: category,
		Quantity:        core.ClampQuantity(in.Quantity),
		Amount:          res.Amount,
		Currency:        road.Currency,
		Timestamp:       r.now(),
		Note:            core.OptionalText(in.Note),
	})
	if err != nil {
		return core.TollEntry{}, fmt.Errorf("record entry: %w", err)
	}

	log.NewStructuredLogger(r.logger).LogEntryRecorded(ctx,
		entry.ID.String(), entry.TripID.String(), entry.RoadID.String(),
		entry.VehicleCategory, entry.Quantity, core.FormatAmount(entry.Total()), res.Priced)
	if !res.Priced {
		r.logger.WarnContext(ctx, "No tariff for road and category, recorded at zero",
			log.FieldRoadID, road.ID, log.FieldCategory, category)
	}
	return entry, nil
}

// QuickAdd records an entry on today's trip, creating the trip when there
// is none, and remembers the road and category for next time.
func (r *EntryRecorder) QuickAdd(ctx context.Context, in QuickAddInput) (core.TollEntry, error) {
	r.quickMu.Lock()
	defer r.quickMu.Unlock()

	// check the road before a daily trip gets created for nothing
	if _, err := r.store.GetRoad(ctx, in.RoadID); err != nil {
		return core.TollEntry{}, fmt.Errorf("quick add: road %s: %w", in.RoadID, err)
	}

	trip, err := r.todayTrip(ctx)
	if err != nil {
		return core.TollEntry{}, fmt.Errorf("quick add: %w", err)
	}

	entry, err := r.RecordEntry(ctx, RecordEntryInput{
		TripID:   trip.ID,
		RoadID:   in.RoadID,
		Category: in.Category,
		Quantity: in.Quantity,
		Note:     in.Note,
	})
	if err != nil {
		return core.TollEntry{}, err
	}

	if r.prefs != nil {
		roadID := entry.RoadID
		category := entry.VehicleCategory
		if err := r.prefs.SetLastRoad(ctx, &roadID); err != nil {
			r.logger.WarnContext(ctx, "Failed to remember last road",
				log.FieldOperation, log.OpQuickAdd, log.FieldError, err)
		}
		if err := r.prefs.SetLastCategory(ctx, &category); err != nil {
			r.logger.WarnContext(ctx, "Failed to remember last category",
				log.FieldOperation, log.OpQuickAdd, log.FieldError, err)
		}
	}
	return entry, nil
}

// todayTrip returns the latest trip dated today, creating one if needed.
func (r *EntryRecorder) todayTrip(ctx context.Context) (core.Trip, error) {
	now := r.now().In(r.loc)
	start, end := core.DayBounds(now)

	trips, err := r.store.ListTrips(ctx, func(t core.Trip) bool {
		return core.InRange(t.Date, start, end)
	})
	if err != nil {
		return core.Trip{}, fmt.Errorf("find today's trip: %w", err)
	}
	if len(trips) > 0 {
		core.SortTripsByDate(trips)
		return trips[0], nil
	}

	trip, err := r.store.CreateTrip(ctx, core.Trip{Date: now, Title: core.QuickTripTitle})
	if err != nil {
		return core.Trip{}, fmt.Errorf("create today's trip: %w", err)
	}
	r.logger.InfoContext(ctx, "Created daily trip",
		log.FieldOperation, log.OpQuickAdd, log.FieldTripID, trip.ID)
	return trip, nil
}
