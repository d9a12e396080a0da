package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rl1809/catalog-bot/internal/adapter/telegram"
	"github.com/rl1809/catalog-bot/internal/core/domain"
)

// mockCatalog mirrors the SQL store: case-insensitive name and category
// prefixes, characteristic substring, results ordered by id.
type mockCatalog struct {
	mu       sync.Mutex
	goods    []domain.Goods
	nextID   int64
	inserted []domain.NewGoods
	deleted  []int64
	avgCalls int

	queryErr  error
	insertErr error
	avgErr    error
	deleteErr error
}

func newMockCatalog(goods ...domain.NewGoods) *mockCatalog {
	c := &mockCatalog{}
	for _, g := range goods {
		c.add(g)
	}
	return c
}

func (c *mockCatalog) add(g domain.NewGoods) int64 {
	c.nextID++
	c.goods = append(c.goods, domain.Goods{
		ID:              c.nextID,
		CategoryID:      g.CategoryID,
		Name:            g.Name,
		Price:           g.Price,
		Characteristics: g.Characteristics,
		Photo:           g.Photo,
	})
	return c.nextID
}

func (c *mockCatalog) Insert(_ context.Context, g domain.NewGoods) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.insertErr != nil {
		return 0, c.insertErr
	}
	c.inserted = append(c.inserted, g)
	return c.add(g), nil
}

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

func (c *mockCatalog) match(brand, category string) []domain.Goods {
	var out []domain.Goods
	for _, g := range c.goods {
		if hasPrefixFold(g.Name, brand) && hasPrefixFold(g.CategoryID, category) {
			out = append(out, g)
		}
	}
	return out
}

func (c *mockCatalog) Query(_ context.Context, f domain.GoodsFilter) ([]domain.Goods, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.queryErr != nil {
		return nil, c.queryErr
	}
	var out []domain.Goods
	for _, g := range c.match(f.BrandPrefix, f.CategoryPrefix) {
		if f.Characteristic != "" && !strings.Contains(strings.ToLower(g.Characteristics), strings.ToLower(f.Characteristic)) {
			continue
		}
		if !f.Price.Match(g.Price) {
			continue
		}
		out = append(out, g)
		if f.FirstOnly {
			break
		}
	}
	return out, nil
}

func (c *mockCatalog) AveragePrice(_ context.Context, brand, category string) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.avgCalls++
	if c.avgErr != nil {
		return 0, c.avgErr
	}
	rows := c.match(brand, category)
	if len(rows) == 0 {
		return 0, nil
	}
	var sum int64
	for _, g := range rows {
		sum += g.Price
	}
	return float64(sum) / float64(len(rows)), nil
}

func (c *mockCatalog) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	for i, g := range c.goods {
		if g.ID == id {
			c.goods = append(c.goods[:i], c.goods[i+1:]...)
			c.deleted = append(c.deleted, id)
			return nil
		}
	}
	return domain.ErrGoodsNotFound
}

func (c *mockCatalog) insertCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inserted)
}

type mockLedger struct {
	mu      sync.Mutex
	entries map[domain.ListingKey]map[int64]int64
	err     error
}

func newMockLedger() *mockLedger {
	return &mockLedger{entries: make(map[domain.ListingKey]map[int64]int64)}
}

func (l *mockLedger) RecordListing(_ context.Context, listing domain.ListingKey, entries []domain.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	if l.entries[listing] == nil {
		l.entries[listing] = make(map[int64]int64)
	}
	for _, e := range entries {
		l.entries[listing][e.GoodsID] = e.MessageID
	}
	return nil
}

func (l *mockLedger) ResolveMessage(_ context.Context, listing domain.ListingKey, goodsID int64) (int64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return 0, false, l.err
	}
	msgID, ok := l.entries[listing][goodsID]
	return msgID, ok, nil
}

type mockAuthorizer map[int64]bool

func (a mockAuthorizer) IsAdministrator(_ context.Context, userID int64) bool {
	return a[userID]
}

type mockAssistant struct {
	err error
}

func (m *mockAssistant) Answer(_ context.Context, question, mode string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return mode + ": " + question, nil
}

// gatedMessenger blocks every SendText until gate is closed and signals
// entered the first time a worker reaches it.
type gatedMessenger struct {
	*telegram.RecordingMessenger
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func newGatedMessenger() *gatedMessenger {
	return &gatedMessenger{
		RecordingMessenger: telegram.NewRecordingMessenger(),
		entered:            make(chan struct{}),
		gate:               make(chan struct{}),
	}
}

func (g *gatedMessenger) SendText(ctx context.Context, chatID int64, text string, kb domain.Keyboard) error {
	g.once.Do(func() { close(g.entered) })
	<-g.gate
	return g.RecordingMessenger.SendText(ctx, chatID, text, kb)
}
