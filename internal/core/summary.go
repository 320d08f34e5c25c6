package core

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoadTotal is the spending on a single road.
type RoadTotal struct {
	RoadID uuid.UUID
	Sum    decimal.Decimal
	Units  int // sum of quantities
}

// RoadSummary is a RoadTotal labelled with the road name for display.
type RoadSummary struct {
	RoadTotal
	Name string
}

// Report is the overall spending summary.
type Report struct {
	Total      decimal.Decimal
	EntryCount int
	ByRoad     []RoadSummary
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year      int
	Month     int // 1-12
	Total     decimal.Decimal
	Limit     decimal.Decimal // zero means no limit
	OverLimit bool
	ByRoad    []RoadTotal
}

// TotalAmount sums amount × quantity over entries.
func TotalAmount(entries []TollEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Total())
	}
	return total
}

// GroupByRoad totals entries per road, largest sum first. Equal sums are
// ordered by road id so the result is deterministic.
func GroupByRoad(entries []TollEntry) []RoadTotal {
	byRoad := make(map[uuid.UUID]*RoadTotal)
	for _, e := range entries {
		rt, ok := byRoad[e.RoadID]
		if !ok {
			rt = &RoadTotal{RoadID: e.RoadID, Sum: decimal.Zero}
			byRoad[e.RoadID] = rt
		}
		rt.Sum = rt.Sum.Add(e.Total())
		rt.Units += e.Quantity
	}

	out := make([]RoadTotal, 0, len(byRoad))
	for _, rt := range byRoad {
		out = append(out, *rt)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Sum.Cmp(out[j].Sum); c != 0 {
			return c > 0
		}
		return out[i].RoadID.String() < out[j].RoadID.String()
	})
	return out
}

// EntriesBetween returns the entries whose timestamp falls within [start, end).
func EntriesBetween(entries []TollEntry, start, end time.Time) []TollEntry {
	var out []TollEntry
	for _, e := range entries {
		if InRange(e.Timestamp, start, end) {
			out = append(out, e)
		}
	}
	return out
}

// DailyTotal sums the entries recorded on day's calendar day, using day's location.
func DailyTotal(entries []TollEntry, day time.Time) decimal.Decimal {
	start, end := DayBounds(day)
	return TotalAmount(EntriesBetween(entries, start, end))
}

// MonthBounds returns [first day of month, first day of next month) in loc.
func MonthBounds(year, month int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// MonthlyTotal sums the entries recorded during the given month in loc.
func MonthlyTotal(entries []TollEntry, year, month int, loc *time.Location) decimal.Decimal {
	start, end := MonthBounds(year, month, loc)
	return TotalAmount(EntriesBetween(entries, start, end))
}

// SortTripsByDate orders trips newest first; ties keep their input order.
func SortTripsByDate(trips []Trip) {
	sort.SliceStable(trips, func(i, j int) bool {
		return trips[i].Date.After(trips[j].Date)
	})
}

// SortEntriesByTimestamp orders entries newest first; ties keep their input order.
func SortEntriesByTimestamp(entries []TollEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
