package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rl1809/catalog-bot/internal/core/domain"
	"github.com/rl1809/catalog-bot/internal/port"
)

var errInvalidFixture = errors.New("invalid fixture")

type fixtureGoods struct {
	Category        string `yaml:"category"`
	Brand           string `yaml:"brand"`
	Model           string `yaml:"model"`
	Price           int64  `yaml:"price"`
	Characteristics string `yaml:"characteristics"`
	Photo           string `yaml:"photo"`
}

type fixture struct {
	Goods []fixtureGoods `yaml:"goods"`
}

func readFixture(path string) (fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fixture{}, fmt.Errorf("%w: %v", errInvalidFixture, err)
	}
	return f, nil
}

// seed inserts every fixture item. Names are stored as "<brand> <model>",
// the same shape the admin flow produces, so brand browsing finds them.
func seed(ctx context.Context, store port.CatalogStore, f fixture) (int, error) {
	for i, g := range f.Goods {
		if g.Category == "" || g.Brand == "" || g.Model == "" || g.Price < 0 {
			return i, fmt.Errorf("%w: item %d needs category, brand, model and a non-negative price", errInvalidFixture, i)
		}

		_, err := store.Insert(ctx, domain.NewGoods{
			CategoryID:      g.Category,
			Name:            strings.TrimSpace(g.Brand) + " " + strings.TrimSpace(g.Model),
			Price:           g.Price,
			Characteristics: g.Characteristics,
			Photo:           g.Photo,
		})
		if err != nil {
			return i, fmt.Errorf("insert item %d: %w", i, err)
		}
	}
	return len(f.Goods), nil
}
