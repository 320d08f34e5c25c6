package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"tolltracker/internal/core"
	"tolltracker/internal/log"
	"tolltracker/internal/prefs"
	"tolltracker/internal/services"
	"tolltracker/internal/settings"
	"tolltracker/internal/storage"
)

var errUsage = errors.New("usage")

type app struct {
	out    io.Writer
	errOut io.Writer
	loc    *time.Location

	directory *services.DirectoryService
	trips     *services.TripService
	recorder  *services.EntryRecorder
	reports   *services.ReportService
	reset     *services.ResetService
	prefs     *prefs.Store
	settings  *settings.Manager
}

func newApp(ctx context.Context, store storage.Store, kv storage.KeyValue, loc *time.Location, logger *log.Logger) (*app, error) {
	p := prefs.New(kv)
	m := settings.NewManager(kv)
	if _, err := m.Load(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &app{
		out:       io.Discard,
		errOut:    io.Discard,
		loc:       loc,
		directory: services.NewDirectoryService(store),
		trips:     services.NewTripService(store),
		recorder: services.NewEntryRecorder(store, p,
			services.WithLocation(loc), services.WithRecorderLogger(logger)),
		reports:  services.NewReportService(store, m, loc),
		reset:    services.NewResetService(store, p, m),
		prefs:    p,
		settings: m,
	}, nil
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "road":
		return a.sub(ctx, cmd, rest, map[string]func(context.Context, []string) error{
			"add": a.roadAdd, "list": a.roadList, "rm": a.roadRemove,
		})
	case "tariff":
		return a.sub(ctx, cmd, rest, map[string]func(context.Context, []string) error{
			"add": a.tariffAdd, "list": a.tariffList,
		})
	case "vehicle":
		return a.sub(ctx, cmd, rest, map[string]func(context.Context, []string) error{
			"add": a.vehicleAdd, "list": a.vehicleList, "default": a.vehicleDefault,
		})
	case "trip":
		return a.sub(ctx, cmd, rest, map[string]func(context.Context, []string) error{
			"add": a.tripAdd, "list": a.tripList, "rm": a.tripRemove, "entries": a.tripEntries,
		})
	case "entry":
		return a.sub(ctx, cmd, rest, map[string]func(context.Context, []string) error{
			"add": a.entryAdd, "rm": a.entryRemove,
		})
	case "quick":
		return a.quick(ctx, rest)
	case "report":
		return a.report(ctx, rest)
	case "today":
		return a.today(ctx, rest)
	case "month":
		return a.month(ctx, rest)
	case "settings":
		return a.sub(ctx, cmd, rest, map[string]func(context.Context, []string) error{
			"show": a.settingsShow, "set": a.settingsSet,
		})
	case "reset":
		return a.factoryReset(ctx, rest)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) sub(ctx context.Context, cmd string, args []string, handlers map[string]func(context.Context, []string) error) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s needs a subcommand", errUsage, cmd)
	}
	h, ok := handlers[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown subcommand %s %s", errUsage, cmd, args[0])
	}
	return h(ctx, args[1:])
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s id %q", errUsage, kind, s)
	}
	return id, nil
}

func oneID(kind string, args []string) (uuid.UUID, error) {
	if len(args) != 1 {
		return uuid.Nil, fmt.Errorf("%w: expected one %s id", errUsage, kind)
	}
	return parseID(kind, args[0])
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

// Roads

func (a *app) roadAdd(ctx context.Context, args []string) error {
	fs := a.flags("road add")
	name := fs.String("name", "", "road name")
	section := fs.String("section", "", "section, e.g. Milano-Bologna")
	direction := fs.String("direction", "", "direction of travel")
	currency := fs.String("currency", "", "currency code (default USD)")
	notes := fs.String("notes", "", "free text")
	if err := parse(fs, args); err != nil {
		return err
	}
	road, err := a.directory.AddRoad(ctx, core.TollRoad{
		Name: *name, Section: *section, Direction: *direction, Currency: *currency, Notes: core.OptionalText(*notes),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, road.ID)
	return nil
}

func (a *app) roadList(ctx context.Context, _ []string) error {
	roads, err := a.directory.Roads(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tSECTION\tDIRECTION\tCURRENCY")
	for _, r := range roads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Section, r.Direction, r.Currency)
	}
	return w.Flush()
}

func (a *app) roadRemove(ctx context.Context, args []string) error {
	id, err := oneID("road", args)
	if err != nil {
		return err
	}
	return a.directory.DeleteRoad(ctx, id)
}

// Tariffs

func (a *app) tariffAdd(ctx context.Context, args []string) error {
	fs := a.flags("tariff add")
	road := fs.String("road", "", "road id")
	category := fs.String("category", core.DefaultCategory, "vehicle category")
	amount := fs.String("amount", "", "price per use, e.g. 2.50 or 2,50")
	if err := parse(fs, args); err != nil {
		return err
	}
	roadID, err := parseID("road", *road)
	if err != nil {
		return err
	}
	t, err := a.directory.AddTariff(ctx, roadID, *category, *amount)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, t.ID)
	return nil
}

func (a *app) tariffList(ctx context.Context, args []string) error {
	fs := a.flags("tariff list")
	road := fs.String("road", "", "road id")
	if err := parse(fs, args); err != nil {
		return err
	}
	roadID, err := parseID("road", *road)
	if err != nil {
		return err
	}
	tariffs, err := a.directory.TariffsForRoad(ctx, roadID)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tCATEGORY\tAMOUNT")
	for _, t := range tariffs {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.VehicleCategory, core.FormatAmount(t.Amount))
	}
	return w.Flush()
}

// Vehicles

func (a *app) vehicleAdd(ctx context.Context, args []string) error {
	fs := a.flags("vehicle add")
	name := fs.String("name", "", "vehicle name")
	plate := fs.String("plate", "", "licence plate")
	category := fs.String("category", core.DefaultCategory, "vehicle category")
	isDefault := fs.Bool("default", false, "make this the default vehicle")
	if err := parse(fs, args); err != nil {
		return err
	}
	v, err := a.directory.AddVehicle(ctx, core.Vehicle{Name: *name, Plate: *plate, Category: *category, IsDefault: *isDefault})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, v.ID)
	return nil
}

func (a *app) vehicleList(ctx context.Context, _ []string) error {
	vs, err := a.directory.Vehicles(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tPLATE\tCATEGORY\tDEFAULT")
	for _, v := range vs {
		def := ""
		if v.IsDefault {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Plate, v.Category, def)
	}
	return w.Flush()
}

func (a *app) vehicleDefault(ctx context.Context, args []string) error {
	id, err := oneID("vehicle", args)
	if err != nil {
		return err
	}
	return a.directory.SetDefaultVehicle(ctx, id)
}

// Trips

func (a *app) tripAdd(ctx context.Context, args []string) error {
	fs := a.flags("trip add")
	title := fs.String("title", "", "trip title")
	date := fs.String("date", "", "trip date YYYY-MM-DD (default now)")
	notes := fs.String("notes", "", "free text")
	tag := fs.String("tag", "", "project tag")
	vehicle := fs.String("vehicle", "", "vehicle id (default: the default vehicle)")
	if err := parse(fs, args); err != nil {
		return err
	}

	trip := core.Trip{Title: *title, Notes: core.OptionalText(*notes), ProjectTag: core.OptionalText(*tag)}
	if *date != "" {
		d, err := time.ParseInLocation("2006-01-02", *date, a.loc)
		if err != nil {
			return fmt.Errorf("%w: invalid date %q", errUsage, *date)
		}
		trip.Date = d
	}
	if *vehicle != "" {
		id, err := parseID("vehicle", *vehicle)
		if err != nil {
			return err
		}
		trip.VehicleID = &id
	} else {
		def, err := a.directory.DefaultVehicle(ctx)
		if err != nil {
			return err
		}
		if def != nil {
			trip.VehicleID = &def.ID
		}
	}

	created, err := a.trips.Create(ctx, trip)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, created.ID)
	return nil
}

func (a *app) tripList(ctx context.Context, _ []string) error {
	trips, err := a.trips.List(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tTAG")
	for _, t := range trips {
		tag := ""
		if t.ProjectTag != nil {
			tag = *t.ProjectTag
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Date.In(a.loc).Format("2006-01-02"), t.DisplayTitle(), tag)
	}
	return w.Flush()
}

func (a *app) tripRemove(ctx context.Context, args []string) error {
	id, err := oneID("trip", args)
	if err != nil {
		return err
	}
	return a.trips.Delete(ctx, id)
}

func (a *app) tripEntries(ctx context.Context, args []string) error {
	id, err := oneID("trip", args)
	if err != nil {
		return err
	}
	entries, err := a.trips.Entries(ctx, id)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTIME\tROAD\tCAT\tQTY\tTOTAL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s %s\n", e.ID, e.Timestamp.In(a.loc).Format("2006-01-02 15:04"),
			e.RoadID, e.VehicleCategory, e.Quantity, core.FormatAmount(e.Total()), e.Currency)
	}
	return w.Flush()
}

// Entries

func (a *app) entryAdd(ctx context.Context, args []string) error {
	fs := a.flags("entry add")
	trip := fs.String("trip", "", "trip id")
	road := fs.String("road", "", "road id")
	category := fs.String("category", "", "vehicle category (default A)")
	qty := fs.Int("qty", 1, "number of passes")
	note := fs.String("note", "", "free text")
	if err := parse(fs, args); err != nil {
		return err
	}
	tripID, err := parseID("trip", *trip)
	if err != nil {
		return err
	}
	roadID, err := parseID("road", *road)
	if err != nil {
		return err
	}
	e, err := a.recorder.RecordEntry(ctx, services.RecordEntryInput{
		TripID: tripID, RoadID: roadID, Category: *category, Quantity: *qty, Note: *note,
	})
	if err != nil {
		return err
	}
	a.printEntry(e)
	return nil
}

func (a *app) entryRemove(ctx context.Context, args []string) error {
	id, err := oneID("entry", args)
	if err != nil {
		return err
	}
	return a.trips.DeleteEntry(ctx, id)
}

// quick defaults road and category to the last ones used.
func (a *app) quick(ctx context.Context, args []string) error {
	fs := a.flags("quick")
	road := fs.String("road", "", "road id (default: last used)")
	category := fs.String("category", "", "vehicle category (default: last used)")
	qty := fs.Int("qty", 1, "number of passes")
	note := fs.String("note", "", "free text")
	if err := parse(fs, args); err != nil {
		return err
	}

	var roadID uuid.UUID
	if *road != "" {
		id, err := parseID("road", *road)
		if err != nil {
			return err
		}
		roadID = id
	} else {
		id, err := a.quickRoad(ctx)
		if err != nil {
			return err
		}
		roadID = id
	}
	if *category == "" {
		last, err := a.prefs.LastCategory(ctx)
		if err != nil {
			return err
		}
		if last != nil {
			*category = *last
		}
	}

	e, err := a.recorder.QuickAdd(ctx, services.QuickAddInput{RoadID: roadID, Category: *category, Quantity: *qty, Note: *note})
	if err != nil {
		return err
	}
	a.printEntry(e)
	return nil
}

// quickRoad picks the last used road, or the first road when that one is
// gone or was never set.
func (a *app) quickRoad(ctx context.Context) (uuid.UUID, error) {
	last, err := a.prefs.LastRoad(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if last != nil {
		_, err := a.directory.Road(ctx, *last)
		if err == nil {
			return *last, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return uuid.Nil, err
		}
	}
	roads, err := a.directory.Roads(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if len(roads) == 0 {
		return uuid.Nil, fmt.Errorf("%w: no road given and no roads added", errUsage)
	}
	return roads[0].ID, nil
}

func (a *app) printEntry(e core.TollEntry) {
	fmt.Fprintf(a.out, "%s %s x%d %s %s\n", e.ID, e.VehicleCategory, e.Quantity, core.FormatAmount(e.Total()), e.Currency)
}

// Reports

func (a *app) report(ctx context.Context, _ []string) error {
	r, err := a.reports.Overview(ctx)
	if err != nil {
		return err
	}
	cur := a.settings.Current().HomeCurrency
	w := a.table()
	fmt.Fprintln(w, "ROAD\tUSES\tTOTAL")
	for _, row := range r.ByRoad {
		fmt.Fprintf(w, "%s\t%d\t%s\n", row.Name, row.Units, core.FormatAmount(row.Sum))
	}
	fmt.Fprintf(w, "all (%d entries)\t\t%s %s\n", r.EntryCount, core.FormatAmount(r.Total), cur)
	return w.Flush()
}

func (a *app) today(ctx context.Context, _ []string) error {
	total, err := a.reports.Today(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %s\n", core.FormatAmount(total), a.settings.Current().HomeCurrency)
	return nil
}

func (a *app) month(ctx context.Context, args []string) error {
	now := time.Now().In(a.loc)
	fs := a.flags("month")
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", int(now.Month()), "month 1-12")
	if err := parse(fs, args); err != nil {
		return err
	}
	ov, err := a.reports.Month(ctx, *year, *month)
	if err != nil {
		return err
	}
	cur := a.settings.Current().HomeCurrency
	fmt.Fprintf(a.out, "%04d-%02d: %s %s", ov.Year, ov.Month, core.FormatAmount(ov.Total), cur)
	if !ov.Limit.IsZero() {
		fmt.Fprintf(a.out, " of %s", core.FormatAmount(ov.Limit))
		if ov.OverLimit {
			fmt.Fprint(a.out, " (over limit)")
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// Settings

func (a *app) settingsShow(_ context.Context, _ []string) error {
	s := a.settings.Current()
	w := a.table()
	fmt.Fprintf(w, "currency\t%s\n", s.HomeCurrency)
	fmt.Fprintf(w, "limit\t%d\n", s.MonthlyLimit)
	fmt.Fprintf(w, "appearance\t%s\n", s.Appearance)
	fmt.Fprintf(w, "language\t%s\n", s.Language)
	fmt.Fprintf(w, "onboarding\t%t\n", s.HasSeenOnboarding)
	return w.Flush()
}

// settingsSet applies key=value pairs in one update.
func (a *app) settingsSet(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: settings set key=value ...", errUsage)
	}
	var setters []func(*settings.Settings)
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("%w: expected key=value, got %q", errUsage, arg)
		}
		switch key {
		case "currency":
			setters = append(setters, func(s *settings.Settings) { s.HomeCurrency = value })
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: limit must be a whole number", core.ErrValidation)
			}
			setters = append(setters, func(s *settings.Settings) { s.MonthlyLimit = n })
		case "appearance":
			setters = append(setters, func(s *settings.Settings) { s.Appearance = settings.Appearance(value) })
		case "language":
			setters = append(setters, func(s *settings.Settings) { s.Language = value })
		case "onboarding":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%w: onboarding must be true or false", core.ErrValidation)
			}
			setters = append(setters, func(s *settings.Settings) { s.HasSeenOnboarding = b })
		default:
			return fmt.Errorf("%w: unknown setting %q", errUsage, key)
		}
	}
	_, err := a.settings.Update(ctx, func(s *settings.Settings) {
		for _, set := range setters {
			set(s)
		}
	})
	return err
}

func (a *app) factoryReset(ctx context.Context, args []string) error {
	fs := a.flags("reset")
	yes := fs.Bool("yes", false, "confirm erasing everything")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("%w: reset erases all data, pass -yes to confirm", errUsage)
	}
	if err := a.reset.FactoryReset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "all data erased")
	return nil
}
