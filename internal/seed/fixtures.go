// Package seed creates fixture and demo data for development databases.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"inkwell/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed fixtures.yml
var defaultFixtures []byte

// Fixtures lists the taxonomy every seeded database starts with.
type Fixtures struct {
	Categories []string `yaml:"categories"`
	Tags       []string `yaml:"tags"`
}

// ParseFixtures decodes a fixtures document. Blank names are dropped.
func ParseFixtures(raw []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	fx.Categories = compact(fx.Categories)
	fx.Tags = compact(fx.Tags)
	return &fx, nil
}

// DefaultFixtures returns the fixtures embedded in the binary.
func DefaultFixtures() (*Fixtures, error) {
	return ParseFixtures(defaultFixtures)
}

// ApplyFixtures inserts the fixture categories and tags. Existing names are left alone, so
// the call is idempotent.
func ApplyFixtures(ctx context.Context, db *gorm.DB, fx *Fixtures) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range fx.Categories {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Category{Name: name}).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		for _, name := range fx.Tags {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.Tag{Name: name}).Error; err != nil {
				return fmt.Errorf("seed tag %q: %w", name, err)
			}
		}
		return nil
	})
}

func compact(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
