package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

const ledgerKeyPrefix = "ledger:"

// RedisLedger stores each listing as a hash of goods id to message id. The
// whole listing expires ttl after it was last written.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLedger(client *redis.Client, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

func ledgerKey(listing domain.ListingKey) string {
	return ledgerKeyPrefix + listing.String()
}

func (r *RedisLedger) RecordListing(ctx context.Context, listing domain.ListingKey, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	key := ledgerKey(listing)
	values := make([]any, 0, 2*len(entries))
	for _, e := range entries {
		values = append(values, strconv.FormatInt(e.GoodsID, 10), e.MessageID)
	}

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, values...)
		if r.ttl > 0 {
			p.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record listing %s: %w", listing, err)
	}
	return nil
}

func (r *RedisLedger) ResolveMessage(ctx context.Context, listing domain.ListingKey, goodsID int64) (int64, bool, error) {
	msgID, err := r.client.HGet(ctx, ledgerKey(listing), strconv.FormatInt(goodsID, 10)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve listing %s: %w", listing, err)
	}
	return msgID, true, nil
}

func (r *RedisLedger) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
