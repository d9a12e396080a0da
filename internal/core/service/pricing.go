package service

import (
	"context"
	"fmt"

	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/port"
)

// PriceTierResolver turns a tier choice into a price predicate relative to
// the average price of the brand/category slice being browsed.
type PriceTierResolver struct {
	catalog port.CatalogStore
}

func NewPriceTierResolver(catalog port.CatalogStore) *PriceTierResolver {
	return &PriceTierResolver{catalog: catalog}
}

// ResolveTier maps "expensive" to price >= avg and "budget" to price <= avg.
// Both bounds are inclusive, so an item priced exactly at the average shows up
// in either tier. Any other tier yields no price predicate. The brand is
// matched as a prefix of the stored name, which starts with the brand.
func (r *PriceTierResolver) ResolveTier(ctx context.Context, tier domain.PriceTier, brand, category string) (domain.PricePredicate, error) {
	var op domain.PriceOp
	switch tier {
	case domain.PriceTierExpensive:
		op = domain.PriceAtLeast
	case domain.PriceTierBudget:
		op = domain.PriceAtMost
	default:
		return domain.PricePredicate{}, nil
	}

	avg, err := r.catalog.AveragePrice(ctx, brand, category)
	if err != nil {
		return domain.PricePredicate{}, fmt.Errorf("average price: %w", err)
	}

	return domain.PricePredicate{Op: op, Bound: avg}, nil
}
