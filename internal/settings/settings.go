// Package settings holds the app-wide presentation settings (home currency,
// monthly limit, appearance, language, onboarding flag). The Manager is
// created once at startup and handed to the presentation layer, which
// subscribes to changes instead of reading shared global state.
package settings

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"tolltracker/internal/core"
	"tolltracker/internal/log"
	"tolltracker/internal/storage"
)

const (
	keyHomeCurrency      = "app.home_currency"
	keyMonthlyLimit      = "app.monthly_limit"
	keyAppearance        = "app.appearance"
	keyLanguage          = "app.language"
	keyHasSeenOnboarding = "app.has_seen_onboarding"
)

type Appearance string

const (
	AppearanceSystem Appearance = "system"
	AppearanceLight  Appearance = "light"
	AppearanceDark   Appearance = "dark"
)

// Languages lists the supported interface languages.
var Languages = []string{"en", "fr", "es", "it", "pt"}

type Settings struct {
	HomeCurrency      string
	MonthlyLimit      int // whole currency units, 0 means no limit
	Appearance        Appearance
	Language          string
	HasSeenOnboarding bool
}

// Defaults returns the settings of a fresh install. Onboarding has not been
// seen yet.
func Defaults() Settings {
	return Settings{
		HomeCurrency:      core.DefaultCurrency,
		MonthlyLimit:      0,
		Appearance:        AppearanceSystem,
		Language:          "en",
		HasSeenOnboarding: false,
	}
}

func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.HomeCurrency) == "" {
		problems = append(problems, "home currency cannot be empty")
	}
	if s.MonthlyLimit < 0 {
		problems = append(problems, fmt.Sprintf("invalid monthly limit %d: must not be negative", s.MonthlyLimit))
	}
	switch s.Appearance {
	case AppearanceSystem, AppearanceLight, AppearanceDark:
	default:
		problems = append(problems, fmt.Sprintf("invalid appearance '%s'", s.Appearance))
	}
	if !slices.Contains(Languages, s.Language) {
		problems = append(problems, fmt.Sprintf("invalid language '%s': must be one of %v", s.Language, Languages))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", core.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// sanitized replaces each invalid field with its default.
func (s Settings) sanitized() Settings {
	d := Defaults()
	if strings.TrimSpace(s.HomeCurrency) == "" {
		s.HomeCurrency = d.HomeCurrency
	}
	if s.MonthlyLimit < 0 {
		s.MonthlyLimit = d.MonthlyLimit
	}
	switch s.Appearance {
	case AppearanceSystem, AppearanceLight, AppearanceDark:
	default:
		s.Appearance = d.Appearance
	}
	if !slices.Contains(Languages, s.Language) {
		s.Language = d.Language
	}
	return s
}

// Manager loads, persists and broadcasts settings.
type Manager struct {
	kv     storage.KeyValue
	logger *log.Logger

	// writeMu serialises Update and Reset from snapshot to swap.
	writeMu sync.Mutex

	mu      sync.Mutex
	current Settings
	nextID  int
	subs    map[int]func(Settings)
}

func NewManager(kv storage.KeyValue) *Manager {
	return &Manager{
		kv:      kv,
		logger:  log.Default(log.ComponentSettings),
		current: Defaults(),
		subs:    make(map[int]func(Settings)),
	}
}

// Load reads persisted values over the defaults. Unparseable or invalid
// values keep their default.
func (m *Manager) Load(ctx context.Context) (Settings, error) {
	s := Defaults()

	read := func(key string, apply func(string)) error {
		v, ok, err := m.kv.GetValue(ctx, key)
		if err != nil {
			return fmt.Errorf("load setting %s: %w", key, err)
		}
		if ok {
			apply(v)
		}
		return nil
	}

	steps := []struct {
		key   string
		apply func(string)
	}{
		{keyHomeCurrency, func(v string) { s.HomeCurrency = v }},
		{keyMonthlyLimit, func(v string) {
			if n, err := strconv.Atoi(v); err == nil {
				s.MonthlyLimit = n
			}
		}},
		{keyAppearance, func(v string) { s.Appearance = Appearance(v) }},
		{keyLanguage, func(v string) { s.Language = v }},
		{keyHasSeenOnboarding, func(v string) {
			if b, err := strconv.ParseBool(v); err == nil {
				s.HasSeenOnboarding = b
			}
		}},
	}
	for _, step := range steps {
		if err := read(step.key, step.apply); err != nil {
			return Defaults(), err
		}
	}
	s = s.sanitized()

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
	return s, nil
}

// Current returns the last loaded or saved settings.
func (m *Manager) Current() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Update applies fn to a copy of the current settings, validates, persists
// and notifies subscribers.
func (m *Manager) Update(ctx context.Context, fn func(*Settings)) (Settings, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	next := m.Current()
	fn(&next)
	next.HomeCurrency = strings.TrimSpace(next.HomeCurrency)
	if err := next.Validate(); err != nil {
		return m.Current(), err
	}
	if err := m.save(ctx, next, log.OpUpdate); err != nil {
		return m.Current(), err
	}
	return next, nil
}

// Reset restores defaults, which brings onboarding back.
func (m *Manager) Reset(ctx context.Context) (Settings, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	next := Defaults()
	if err := m.save(ctx, next, log.OpReset); err != nil {
		return m.Current(), err
	}
	return next, nil
}

// Subscribe registers fn to be called after every successful change. The
// returned func removes the subscription. fn runs inside Update or Reset and
// must not call either.
func (m *Manager) Subscribe(fn func(Settings)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) save(ctx context.Context, s Settings, op string) error {
	values := map[string]string{
		keyHomeCurrency:      s.HomeCurrency,
		keyMonthlyLimit:      strconv.Itoa(s.MonthlyLimit),
		keyAppearance:        string(s.Appearance),
		keyLanguage:          s.Language,
		keyHasSeenOnboarding: strconv.FormatBool(s.HasSeenOnboarding),
	}
	if err := m.kv.SetValues(ctx, values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	m.logger.DebugContext(ctx, "Settings saved", log.FieldOperation, op)

	m.mu.Lock()
	m.current = s
	subs := make([]func(Settings), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
	return nil
}
