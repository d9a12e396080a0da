package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rl1809/catalog-bot/internal/core/domain"
)

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// LoadTaxonomy reads the catalog tree from path, or the built-in tree when
// path is empty.
func LoadTaxonomy(path string) (*domain.Taxonomy, error) {
	raw := defaultTaxonomy
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read taxonomy: %w", err)
		}
	}
	return ParseTaxonomy(raw)
}

func ParseTaxonomy(raw []byte) (*domain.Taxonomy, error) {
	var tx domain.Taxonomy
	if err := yaml.Unmarshal(raw, &tx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTaxonomy, err)
	}
	if err := tx.Index(); err != nil {
		return nil, err
	}
	return &tx, nil
}
