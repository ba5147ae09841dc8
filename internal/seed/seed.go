// Package seed loads reference data (media types, the category tree, brands)
// from YAML and writes whatever is missing.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"catalog-service/internal/apperrors"
	"catalog-service/internal/models"
	"catalog-service/internal/repository"
)

//go:embed default.yaml
var defaultData []byte

type MediaType struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Category struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Children    []Category `yaml:"children"`
}

type Brand struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Data is the shape of a seed file.
type Data struct {
	MediaTypes []MediaType `yaml:"mediaTypes"`
	Categories []Category  `yaml:"categories"`
	Brands     []Brand     `yaml:"brands"`
}

// Result counts the rows created by Apply. Existing rows are not counted.
type Result struct {
	MediaTypes int
	Categories int
	Brands     int
}

// Default returns the seed data shipped with the binary.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Load reads a seed file.
func Load(r io.Reader) (*Data, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (d *Data) validate() error {
	for i, mt := range d.MediaTypes {
		if strings.TrimSpace(mt.Name) == "" {
			return apperrors.Validation("mediaTypes[%d]: name is required", i)
		}
	}
	for i, b := range d.Brands {
		if strings.TrimSpace(b.Name) == "" {
			return apperrors.Validation("brands[%d]: name is required", i)
		}
	}
	var walk func(path string, nodes []Category) error
	walk = func(path string, nodes []Category) error {
		for i, c := range nodes {
			at := fmt.Sprintf("%s[%d]", path, i)
			if strings.TrimSpace(c.Name) == "" {
				return apperrors.Validation("%s: name is required", at)
			}
			if err := walk(at+".children", c.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk("categories", d.Categories)
}

// Apply creates every media type, category and brand that does not exist yet,
// matching on name (and parent, for categories). Running it twice is a no-op.
func Apply(ctx context.Context, store *repository.Store, data *Data, logger *logrus.Logger) (Result, error) {
	var result Result
	err := store.WithTransaction(ctx, func(tx *repository.Store) error {
		result = Result{}
		for _, mt := range data.MediaTypes {
			created, err := seedMediaType(ctx, tx, mt)
			if err != nil {
				return err
			}
			if created {
				result.MediaTypes++
			}
		}
		for _, c := range data.Categories {
			n, err := seedCategory(ctx, tx, c, nil)
			if err != nil {
				return err
			}
			result.Categories += n
		}
		for _, b := range data.Brands {
			created, err := seedBrand(ctx, tx, b)
			if err != nil {
				return err
			}
			if created {
				result.Brands++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.WithFields(logrus.Fields{
		"mediaTypes": result.MediaTypes,
		"categories": result.Categories,
		"brands":     result.Brands,
	}).Info("Seed data applied")
	return result, nil
}

func seedMediaType(ctx context.Context, tx *repository.Store, mt MediaType) (bool, error) {
	name := strings.TrimSpace(mt.Name)
	_, err := tx.MediaTypes.FindByName(ctx, name)
	if exists, err := found(err); err != nil || exists {
		return false, err
	}
	return true, tx.MediaTypes.Create(ctx, &models.MediaType{Name: name, Description: optional(mt.Description)})
}

func seedBrand(ctx context.Context, tx *repository.Store, b Brand) (bool, error) {
	name := strings.TrimSpace(b.Name)
	_, err := tx.Brands.FindByName(ctx, name)
	if exists, err := found(err); err != nil || exists {
		return false, err
	}
	return true, tx.Brands.Create(ctx, &models.Brand{Name: name, Description: optional(b.Description), IsActive: true})
}

// seedCategory returns how many nodes of the subtree were created.
func seedCategory(ctx context.Context, tx *repository.Store, c Category, parentID *uuid.UUID) (int, error) {
	name := strings.TrimSpace(c.Name)
	created := 0

	category, err := tx.Categories.FindByName(ctx, name, parentID)
	exists, err := found(err)
	if err != nil {
		return 0, err
	}
	if !exists {
		category = &models.Category{
			Name:        name,
			Description: optional(c.Description),
			ParentID:    parentID,
			IsActive:    true,
		}
		if err := tx.Categories.Create(ctx, category); err != nil {
			return 0, err
		}
		created++
	}

	for _, child := range c.Children {
		n, err := seedCategory(ctx, tx, child, &category.ID)
		if err != nil {
			return 0, err
		}
		created += n
	}
	return created, nil
}

func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case apperrors.KindOf(err) == apperrors.KindNotFound:
		return false, nil
	default:
		return false, err
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
