package port

import (
	"context"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

type CatalogStore interface {
	// Insert persists a new goods item and returns its id
	Insert(ctx context.Context, goods domain.NewGoods) (int64, error)

	// Query returns goods matching the filter ordered by id
	Query(ctx context.Context, filter domain.GoodsFilter) ([]domain.Goods, error)

	// AveragePrice averages price over goods matching the brand and category
	// prefixes, returning 0 when nothing matches
	AveragePrice(ctx context.Context, brandPrefix, categoryPrefix string) (float64, error)

	// Delete removes goods by id, returns domain.ErrGoodsNotFound if absent
	Delete(ctx context.Context, goodsID int64) error
}
