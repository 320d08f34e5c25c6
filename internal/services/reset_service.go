package services

import (
	"context"
	"fmt"

	"tolltracker/internal/log"
	"tolltracker/internal/settings"
)

type (
	StoreResetter interface {
		ResetAll(ctx context.Context) error
	}

	SettingsResetter interface {
		Reset(ctx context.Context) (settings.Settings, error)
	}
)

// ResetService wipes user data back to a fresh install.
type ResetService struct {
	store    StoreResetter
	prefs    StoreResetter
	settings SettingsResetter
	logger   *log.Logger
}

func NewResetService(store, prefs StoreResetter, settings SettingsResetter) *ResetService {
	return &ResetService{
		store:    store,
		prefs:    prefs,
		settings: settings,
		logger:   log.Default(log.ComponentReset),
	}
}

// FactoryReset clears the entity store, then preferences, then settings. A
// failed store reset leaves everything untouched.
func (s *ResetService) FactoryReset(ctx context.Context) error {
	if err := s.store.ResetAll(ctx); err != nil {
		log.NewStructuredLogger(s.logger).LogError(ctx, "Factory reset failed, nothing erased",
			err, log.OpReset, log.ErrorTypeDatabase, nil)
		return fmt.Errorf("factory reset: store: %w", err)
	}
	if err := s.prefs.ResetAll(ctx); err != nil {
		return fmt.Errorf("factory reset: preferences: %w", err)
	}
	if _, err := s.settings.Reset(ctx); err != nil {
		return fmt.Errorf("factory reset: settings: %w", err)
	}
	s.logger.InfoContext(ctx, "Factory reset complete", log.FieldOperation, log.OpReset)
	return nil
}
