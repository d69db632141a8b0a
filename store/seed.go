package store

import (
	"context"

	"github.com/judyrop/storefront/models"
)

type seedProduct struct {
	name        string
	description string
	priceCents  int64
	slug        string
}

var (
	seedCategories = []models.Category{
		{Name: "Books", Slug: "books"},
		{Name: "Electronics", Slug: "electronics"},
		{Name: "Toys", Slug: "toys"},
	}
	seedProducts = []seedProduct{
		{"Building Blocks", "500 piece starter set", 4999, "toys"},
		{"Plush Bear", "Soft toy, 30cm", 1999, "toys"},
		{"Go in Practice", "Paperback", 3950, "books"},
		{"USB-C Cable", "1m braided", 899, "electronics"},
		{"Wireless Mouse", "2.4GHz, AA battery", 2450, "electronics"},
	}
)

// SeedCatalog fills an empty catalog with demo data. It reports whether
// anything was written.
func (s *Store) SeedCatalog(ctx context.Context) (bool, error) {
	n, err := s.Categories.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	err = s.Transaction(ctx, func(tx *Store) error {
		bySlug := make(map[string]models.Category, len(seedCategories))
		for _, c := range seedCategories {
			c := c
			if err := tx.Categories.Create(ctx, &c); err != nil {
				return err
			}
			bySlug[c.Slug] = c
		}
		for _, sp := range seedProducts {
			desc := sp.description
			p := models.Product{
				Name:        sp.name,
				Description: &desc,
				PriceCents:  sp.priceCents,
				IsActive:    true,
				CategoryID:  bySlug[sp.slug].ID,
			}
			if err := tx.Products.Create(ctx, &p); err != nil {
				return err
			}
		}
		return nil
	})
	return err == nil, err
}
