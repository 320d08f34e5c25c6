// Package services holds the use cases on top of the entity store: pricing
// and recording toll entries, managing roads, tariffs, vehicles and trips,
// reports and the factory reset. Presentation code calls these and never
// builds records itself.
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tolltracker/internal/core"
	"tolltracker/internal/storage"
)

// TariffLister is the subset of the store the resolver reads.
type TariffLister interface {
	ListTariffs(ctx context.Context, pred storage.Predicate[core.TollTariff]) ([]core.TollTariff, error)
}

// Resolution is the outcome of a tariff lookup. Priced is false when no
// tariff matched, in which case Amount is zero.
type Resolution struct {
	Amount   decimal.Decimal
	Priced   bool
	TariffID *uuid.UUID
}

type TariffResolver struct {
	tariffs TariffLister
}

func NewTariffResolver(tariffs TariffLister) *TariffResolver {
	return &TariffResolver{tariffs: tariffs}
}

// Resolve finds the per-use amount for a road and vehicle category. The
// category match is case-insensitive. A missing tariff is not an error.
func (r *TariffResolver) Resolve(ctx context.Context, roadID uuid.UUID, category string) (Resolution, error) {
	want := core.NormalizeCategory(category)
	matches, err := r.tariffs.ListTariffs(ctx, func(t core.TollTariff) bool {
		return t.RoadID == roadID && core.NormalizeCategory(t.VehicleCategory) == want
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve tariff: %w", err)
	}
	if len(matches) == 0 {
		return Resolution{Amount: decimal.Zero}, nil
	}
	id := matches[0].ID
	return Resolution{Amount: matches[0].Amount, Priced: true, TariffID: &id}, nil
}
