package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/judyrop/storefront/models"
)

type ProductRepository struct {
	db *gorm.DB
}

// ListActive returns active products ordered by name with their category.
func (r *ProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "list products")
	}
	return products, nil
}

// FindActive returns ErrNotFound for both missing and inactive products.
func (r *ProductRepository) FindActive(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = ?", id, true).
		First(&product).Error
	if err != nil {
		return nil, translate(err, "find product")
	}
	return &product, nil
}

// FindActiveByIDs returns the active subset of ids keyed by id.
func (r *ProductRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, translate(err, "find products")
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Omit("Category").Create(product).Error, "create product")
}
