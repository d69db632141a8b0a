package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/judyrop/storefront/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

// List returns every category ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, translate(err, "list categories")
	}
	return categories, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	return translate(r.db.WithContext(ctx).Create(category).Error, "create category")
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, translate(err, "find category")
	}
	return &category, nil
}

// Delete fails with ErrInUse while products still point at the category.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error, "delete category")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error; err != nil {
		return 0, translate(err, "count categories")
	}
	return n, nil
}
