package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCategory is used when an entry is recorded without a vehicle category.
	DefaultCategory = "A"
	// DefaultCurrency is assigned to roads created without a currency.
	DefaultCurrency = "USD"
	// QuickTripTitle is the title of the trip created implicitly by a quick add.
	QuickTripTitle = "Today"
	// UnknownRoadName labels report rows whose road no longer exists.
	UnknownRoadName = "Road"
)

type (
	Vehicle struct {
		ID        uuid.UUID
		Name      string
		Plate     string
		Category  string // conventionally "A", "B" or "C"
		IsDefault bool
	}

	TollRoad struct {
		ID        uuid.UUID
		Name      string
		Section   string
		Direction string
		Currency  string
		Notes     *string
	}

	// TollTariff maps a road and a vehicle category to a per-use amount.
	TollTariff struct {
		ID              uuid.UUID
		RoadID          uuid.UUID
		VehicleCategory string
		Amount          decimal.Decimal
	}

	Trip struct {
		ID         uuid.UUID
		Date       time.Time
		Title      string
		Notes      *string
		ProjectTag *string
		VehicleID  *uuid.UUID
	}

	// TollEntry is one recorded toll payment. Amount and Currency are copied
	// from the tariff and road at recording time and never re-derived.
	TollEntry struct {
		ID              uuid.UUID
		TripID          uuid.UUID
		RoadID          uuid.UUID
		VehicleCategory string
		Quantity        int
		Amount          decimal.Decimal // per unit
		Currency        string
		Timestamp       time.Time
		Note            *string
	}
)

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrInvalidAmount = errors.New("invalid amount")
)

// NormalizeCategory trims and upper-cases a vehicle category.
func NormalizeCategory(category string) string {
	return strings.ToUpper(strings.TrimSpace(category))
}

// CategoryOrDefault normalizes category and falls back to DefaultCategory when it is empty.
func CategoryOrDefault(category string) string {
	if c := NormalizeCategory(category); c != "" {
		return c
	}
	return DefaultCategory
}

// ClampQuantity returns q, or 1 when q is below 1.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// OptionalText returns nil for blank strings and a pointer to the trimmed text otherwise.
func OptionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Total returns Amount multiplied by Quantity.
func (e TollEntry) Total() decimal.Decimal {
	return e.Amount.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// DisplayTitle returns the trip title, falling back to the formatted date.
func (t Trip) DisplayTitle() string {
	if strings.TrimSpace(t.Title) != "" {
		return t.Title
	}
	return t.Date.Format("Jan 2, 2006")
}

// Normalize fills defaults on a road before it is stored.
func (r TollRoad) Normalize() TollRoad {
	r.Name = strings.TrimSpace(r.Name)
	r.Section = strings.TrimSpace(r.Section)
	r.Direction = strings.TrimSpace(r.Direction)
	r.Currency = strings.TrimSpace(r.Currency)
	if r.Currency == "" {
		r.Currency = DefaultCurrency
	}
	return r
}

func (t TollTariff) Validate() error {
	if t.RoadID == uuid.Nil {
		return errors.New("tariff road is required")
	}
	if NormalizeCategory(t.VehicleCategory) == "" {
		return errors.New("tariff category is required")
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBounds returns [start of day, start of next day) for t's calendar day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// InRange reports whether t falls within [start, end).
func InRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
