package port

import (
	"context"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

type LedgerRepository interface {
	// RecordListing stores one entry per goods item shown in a delete listing
	RecordListing(ctx context.Context, listing domain.ListingKey, entries []domain.LedgerEntry) error

	// ResolveMessage finds the message that showed goodsID in the listing,
	// found is false when no such entry exists
	ResolveMessage(ctx context.Context, listing domain.ListingKey, goodsID int64) (messageID int64, found bool, err error)
}
