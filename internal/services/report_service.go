package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"tolltracker/internal/core"
	"tolltracker/internal/log"
	"tolltracker/internal/settings"
	"tolltracker/internal/storage"
)

// ReportStore is the subset of the store reports read.
type ReportStore interface {
	ListEntries(ctx context.Context, pred storage.Predicate[core.TollEntry]) ([]core.TollEntry, error)
	ListRoads(ctx context.Context, pred storage.Predicate[core.TollRoad]) ([]core.TollRoad, error)
}

// SettingsSource supplies the monthly limit.
type SettingsSource interface {
	Current() settings.Settings
}

type ReportService struct {
	store    ReportStore
	settings SettingsSource
	now      func() time.Time
	loc      *time.Location
	logger   *log.Logger
}

// NewReportService builds a report service. settings may be nil, meaning no
// monthly limit; loc nil means time.Local.
func NewReportService(store ReportStore, settings SettingsSource, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		store:    store,
		settings: settings,
		now:      time.Now,
		loc:      loc,
		logger:   log.Default(log.ComponentReports),
	}
}

func (s *ReportService) load(ctx context.Context) ([]core.TollEntry, []core.TollRoad, error) {
	var (
		entries []core.TollEntry
		roads   []core.TollRoad
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = s.store.ListEntries(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		roads, err = s.store.ListRoads(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("load report data: %w", err)
	}
	return entries, roads, nil
}

// Overview summarizes all recorded spending by road, largest first.
func (s *ReportService) Overview(ctx context.Context) (core.Report, error) {
	entries, roads, err := s.load(ctx)
	if err != nil {
		return core.Report{}, err
	}

	names := make(map[uuid.UUID]string, len(roads))
	for _, r := range roads {
		names[r.ID] = r.Name
	}

	groups := core.GroupByRoad(entries)
	byRoad := make([]core.RoadSummary, 0, len(groups))
	for _, g := range groups {
		name, ok := names[g.RoadID]
		if !ok {
			name = core.UnknownRoadName
		}
		byRoad = append(byRoad, core.RoadSummary{RoadTotal: g, Name: name})
	}

	report := core.Report{
		Total:      core.TotalAmount(entries),
		EntryCount: len(entries),
		ByRoad:     byRoad,
	}
	s.logger.DebugContext(ctx, "Built overview report",
		log.FieldOperation, log.OpReport, log.FieldAmount, core.FormatAmount(report.Total))
	return report, nil
}

// Today returns the total spent on the current calendar day.
func (s *ReportService) Today(ctx context.Context) (decimal.Decimal, error) {
	entries, err := s.store.ListEntries(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("today total: %w", err)
	}
	return core.DailyTotal(entries, s.now().In(s.loc)), nil
}

// Month summarizes a calendar month against the monthly limit setting.
func (s *ReportService) Month(ctx context.Context, year, month int) (core.MonthOverview, error) {
	if month < 1 || month > 12 {
		return core.MonthOverview{}, fmt.Errorf("%w: month %d out of range", core.ErrValidation, month)
	}
	entries, err := s.store.ListEntries(ctx, nil)
	if err != nil {
		return core.MonthOverview{}, fmt.Errorf("month total: %w", err)
	}

	start, end := core.MonthBounds(year, month, s.loc)
	inMonth := core.EntriesBetween(entries, start, end)

	ov := core.MonthOverview{
		Year:   year,
		Month:  month,
		Total:  core.MonthlyTotal(entries, year, month, s.loc),
		Limit:  decimal.Zero,
		ByRoad: core.GroupByRoad(inMonth),
	}
	if s.settings != nil {
		if limit := s.settings.Current().MonthlyLimit; limit > 0 {
			ov.Limit = decimal.NewFromInt(int64(limit))
			ov.OverLimit = ov.Total.GreaterThan(ov.Limit)
		}
	}
	fields := log.NewFields().WithPeriod(year, month).WithOperation(log.OpReport)
	s.logger.DebugContext(ctx, "Built month overview",
		append(fields.ToSlice(), log.FieldAmount, core.FormatAmount(ov.Total))...)
	return ov, nil
}
