// Package catalog serves categories and products in their public shapes.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/judyrop/storefront/models"
	"github.com/judyrop/storefront/store"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrUnknownCategory = errors.New("unknown category")
	ErrSlugTaken       = errors.New("category slug already exists")
)

const (
	categoriesKey = "categories"
	productsKey   = "products"
)

type CategorySummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

type ProductView struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	PriceCents  int64            `json:"priceCents"`
	ImageURL    *string          `json:"imageUrl"`
	Category    *CategorySummary `json:"category"`
}

// NewProduct is the admin create payload.
type NewProduct struct {
	Name         string
	Description  *string
	PriceCents   int64
	ImageURL     *string
	CategorySlug string
	IsActive     bool
}

type Service struct {
	store *store.Store
	cache Cache
	log   logrus.FieldLogger
}

func NewService(s *store.Store, cache Cache, log logrus.FieldLogger) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{store: s, cache: cache, log: log}
}

func summarize(c *models.Category) *CategorySummary {
	if c == nil {
		return nil
	}
	return &CategorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func project(p models.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		ImageURL:    p.ImageURL,
		Category:    summarize(p.Category),
	}
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	var out []CategorySummary
	if s.cached(ctx, categoriesKey, &out) {
		return out, nil
	}

	categories, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]CategorySummary, 0, len(categories))
	for i := range categories {
		out = append(out, *summarize(&categories[i]))
	}
	s.remember(ctx, categoriesKey, out)
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, name, slug string) (*CategorySummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}
	slug = Slugify(slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug must contain letters or digits", ErrInvalidCategory)
	}

	category := models.Category{Name: name, Slug: slug}
	if err := s.store.Categories.Create(ctx, &category); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	s.invalidate(ctx)
	return summarize(&category), nil
}

// ListProducts returns active products ordered by name.
func (s *Service) ListProducts(ctx context.Context) ([]ProductView, error) {
	var out []ProductView
	if s.cached(ctx, productsKey, &out) {
		return out, nil
	}

	products, err := s.store.Products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, project(p))
	}
	s.remember(ctx, productsKey, out)
	return out, nil
}

// GetProduct returns ErrNotFound for missing and inactive products alike.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	p, err := s.store.Products.FindActive(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	view := project(*p)
	return &view, nil
}

func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (uuid.UUID, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return uuid.Nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if in.PriceCents < 0 {
		return uuid.Nil, fmt.Errorf("%w: priceCents must not be negative", ErrInvalidProduct)
	}

	category, err := s.store.Categories.FindBySlug(ctx, strings.TrimSpace(in.CategorySlug))
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownCategory, in.CategorySlug)
	}
	if err != nil {
		return uuid.Nil, err
	}

	product := models.Product{
		Name:        name,
		Description: trimmedOrNil(in.Description),
		PriceCents:  in.PriceCents,
		ImageURL:    trimmedOrNil(in.ImageURL),
		IsActive:    in.IsActive,
		CategoryID:  category.ID,
	}
	if err := s.store.Products.Create(ctx, &product); err != nil {
		return uuid.Nil, err
	}
	s.invalidate(ctx)
	return product.ID, nil
}

func (s *Service) cached(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("catalog cache read failed")
		return false
	}
	return hit
}

func (s *Service) remember(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("catalog cache write failed")
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoriesKey, productsKey); err != nil {
		s.log.WithError(err).Warn("catalog cache invalidation failed")
	}
}

// Slugify lower-cases s and collapses every run of characters outside
// [a-z0-9] into a single dash.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
