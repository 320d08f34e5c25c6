package settings_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tolltracker/internal/core"
	"tolltracker/internal/settings"
	"tolltracker/internal/storage/memory"
)

func TestLoadDefaults(t *testing.T) {
	m := settings.NewManager(memory.New())

	got, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), got)
	assert.Equal(t, "USD", got.HomeCurrency)
	assert.False(t, got.HasSeenOnboarding, "a fresh install shows onboarding")
}

func TestUpdatePersists(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	m := settings.NewManager(kv)

	_, err := m.Update(ctx, func(s *settings.Settings) {
		s.HomeCurrency = " EUR "
		s.MonthlyLimit = 150
		s.Appearance = settings.AppearanceDark
		s.Language = "it"
	})
	require.NoError(t, err)

	reloaded, err := settings.NewManager(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", reloaded.HomeCurrency)
	assert.Equal(t, 150, reloaded.MonthlyLimit)
	assert.Equal(t, settings.AppearanceDark, reloaded.Appearance)
	assert.Equal(t, "it", reloaded.Language)
}

func TestUpdateRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		fn   func(*settings.Settings)
	}{
		{"negative limit", func(s *settings.Settings) { s.MonthlyLimit = -1 }},
		{"blank currency", func(s *settings.Settings) { s.HomeCurrency = "  " }},
		{"bad appearance", func(s *settings.Settings) { s.Appearance = "neon" }},
		{"bad language", func(s *settings.Settings) { s.Language = "de" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := settings.NewManager(memory.New())
			got, err := m.Update(context.Background(), tc.fn)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.Equal(t, settings.Defaults(), got)
			assert.Equal(t, settings.Defaults(), m.Current())
		})
	}
}

func TestLoadIgnoresCorruptValues(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	require.NoError(t, kv.SetValue(ctx, "app.monthly_limit", "lots"))
	require.NoError(t, kv.SetValue(ctx, "app.language", "xx"))
	require.NoError(t, kv.SetValue(ctx, "app.appearance", "light"))

	got, err := settings.NewManager(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.MonthlyLimit)
	assert.Equal(t, "en", got.Language)
	assert.Equal(t, settings.AppearanceLight, got.Appearance)
}

func TestResetShowsOnboardingAgain(t *testing.T) {
	ctx := context.Background()
	m := settings.NewManager(memory.New())
	_, err := m.Update(ctx, func(s *settings.Settings) { s.MonthlyLimit = 90 })
	require.NoError(t, err)

	got, err := m.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, got.MonthlyLimit)
	assert.False(t, got.HasSeenOnboarding)
	assert.False(t, m.Current().HasSeenOnboarding)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	m := settings.NewManager(memory.New())

	var seen []settings.Settings
	cancel := m.Subscribe(func(s settings.Settings) { seen = append(seen, s) })

	_, err := m.Update(ctx, func(s *settings.Settings) { s.Language = "fr" })
	require.NoError(t, err)
	_, err = m.Update(ctx, func(s *settings.Settings) { s.Language = "nope" })
	require.Error(t, err)

	require.Len(t, seen, 1, "failed updates do not notify")
	assert.Equal(t, "fr", seen[0].Language)

	cancel()
	_, err = m.Reset(ctx)
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

// slowKV stretches every write so overlapping updates would interleave.
type slowKV struct {
	*memory.Store
}

func (s slowKV) SetValue(ctx context.Context, key, value string) error {
	time.Sleep(time.Millisecond)
	return s.Store.SetValue(ctx, key, value)
}

func (s slowKV) SetValues(ctx context.Context, values map[string]string) error {
	time.Sleep(time.Millisecond)
	return s.Store.SetValues(ctx, values)
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	ctx := context.Background()
	kv := slowKV{memory.New()}
	m := settings.NewManager(kv)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, func(s *settings.Settings) { s.MonthlyLimit++ })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, m.Current().MonthlyLimit)

	reloaded, err := settings.NewManager(kv).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, workers, reloaded.MonthlyLimit)
}

func TestOnboardingSeenPersists(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	_, err := settings.NewManager(kv).Update(ctx, func(s *settings.Settings) { s.HasSeenOnboarding = true })
	require.NoError(t, err)

	got, err := settings.NewManager(kv).Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.HasSeenOnboarding)
}
