package storage

import (
	"context"
	"sync"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

// MemoryLedger keeps listings in process memory. Entries are lost on restart,
// after which deletes fall back to the "message not found" warning.
type MemoryLedger struct {
	mu       sync.RWMutex
	listings map[domain.ListingKey]map[int64]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{listings: make(map[domain.ListingKey]map[int64]int64)}
}

func (m *MemoryLedger) RecordListing(_ context.Context, listing domain.ListingKey, entries []domain.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	messages, ok := m.listings[listing]
	if !ok {
		messages = make(map[int64]int64, len(entries))
		m.listings[listing] = messages
	}
	for _, e := range entries {
		messages[e.GoodsID] = e.MessageID
	}
	return nil
}

func (m *MemoryLedger) ResolveMessage(_ context.Context, listing domain.ListingKey, goodsID int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgID, ok := m.listings[listing][goodsID]
	return msgID, ok, nil
}
