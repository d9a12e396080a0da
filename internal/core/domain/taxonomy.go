package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidTaxonomy = errors.New("invalid taxonomy")

type Connector struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

type Category struct {
	Code       string      `yaml:"code"`
	Label      string      `yaml:"label"`
	Brands     []string    `yaml:"brands"`
	Connectors []Connector `yaml:"connectors"`
}

// RequiresConnector reports whether browsing this category asks for a
// connector type before the brand.
func (c Category) RequiresConnector() bool {
	return len(c.Connectors) > 0
}

func (c Category) Connector(code string) (Connector, bool) {
	for _, conn := range c.Connectors {
		if conn.Code == code {
			return conn, true
		}
	}
	return Connector{}, false
}

type Section struct {
	Code       string   `yaml:"code"`
	Label      string   `yaml:"label"`
	Categories []string `yaml:"categories"`
}

// Taxonomy is the static catalog tree shared by the browsing and admin flows.
type Taxonomy struct {
	Sections   []Section  `yaml:"sections"`
	Categories []Category `yaml:"categories"`

	byCategory map[string]Category
	bySection  map[string]Section
}

// Index builds lookup tables and checks that every section only refers to
// known categories. It must be called once after loading.
func (t *Taxonomy) Index() error {
	t.byCategory = make(map[string]Category, len(t.Categories))
	for _, c := range t.Categories {
		if c.Code == "" {
			return fmt.Errorf("%w: category without code", ErrInvalidTaxonomy)
		}
		if _, dup := t.byCategory[c.Code]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidTaxonomy, c.Code)
		}
		t.byCategory[c.Code] = c
	}

	t.bySection = make(map[string]Section, len(t.Sections))
	for _, s := range t.Sections {
		if len(s.Categories) == 0 {
			return fmt.Errorf("%w: section %q has no categories", ErrInvalidTaxonomy, s.Code)
		}
		for _, code := range s.Categories {
			if _, ok := t.byCategory[code]; !ok {
				return fmt.Errorf("%w: section %q refers to unknown category %q", ErrInvalidTaxonomy, s.Code, code)
			}
		}
		t.bySection[s.Code] = s
	}
	return nil
}

func (t *Taxonomy) Category(code string) (Category, bool) {
	c, ok := t.byCategory[code]
	return c, ok
}

func (t *Taxonomy) Section(code string) (Section, bool) {
	s, ok := t.bySection[code]
	return s, ok
}
