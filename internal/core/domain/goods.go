package domain

import (
	"errors"
	"fmt"
)

var ErrGoodsNotFound = errors.New("goods not found")

type Goods struct {
	ID              int64
	CategoryID      string
	Name            string
	Price           int64
	Characteristics string
	Photo           string
}

type NewGoods struct {
	CategoryID      string
	Name            string
	Price           int64
	Characteristics string
	Photo           string
}

type PriceTier string

const (
	PriceTierAll       PriceTier = "all"
	PriceTierExpensive PriceTier = "expensive"
	PriceTierBudget    PriceTier = "budget"
)

// ParsePriceTier reports false for tokens outside the known tiers.
func ParsePriceTier(s string) (PriceTier, bool) {
	switch t := PriceTier(s); t {
	case PriceTierAll, PriceTierExpensive, PriceTierBudget:
		return t, true
	}
	return "", false
}

type PriceOp int

const (
	PriceAny PriceOp = iota
	PriceAtLeast
	PriceAtMost
)

// PricePredicate bounds are inclusive on both sides.
type PricePredicate struct {
	Op    PriceOp
	Bound float64
}

func (p PricePredicate) Match(price int64) bool {
	switch p.Op {
	case PriceAtLeast:
		return float64(price) >= p.Bound
	case PriceAtMost:
		return float64(price) <= p.Bound
	default:
		return true
	}
}

func (p PricePredicate) String() string {
	switch p.Op {
	case PriceAtLeast:
		return fmt.Sprintf("price >= %.2f", p.Bound)
	case PriceAtMost:
		return fmt.Sprintf("price <= %.2f", p.Bound)
	default:
		return "any price"
	}
}

// GoodsFilter selects goods whose name starts with BrandPrefix, whose category
// starts with CategoryPrefix and whose characteristics contain Characteristic.
// Empty strings match everything.
type GoodsFilter struct {
	BrandPrefix    string
	CategoryPrefix string
	Characteristic string
	Price          PricePredicate
	FirstOnly      bool
}

// ListingKey identifies one delete listing. Message ids are numbered per
// chat, so the triggering message id alone is not unique across admins.
type ListingKey struct {
	ChatID    int64
	MessageID int64
}

func (k ListingKey) String() string {
	return fmt.Sprintf("%d:%d", k.ChatID, k.MessageID)
}

type LedgerEntry struct {
	Listing   ListingKey
	MessageID int64
	GoodsID   int64
}
