package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/judyrop/storefront/models"
)

type OrderRepository struct {
	db *gorm.DB
}

// Create inserts the order together with its items.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(order).Error, "create order")
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	err := r.db.WithContext(ctx).
		Preload("Items", itemsInPosition).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, translate(err, "list orders")
	}
	return orders, nil
}

// FindForUser hides orders that belong to someone else behind ErrNotFound.
func (r *OrderRepository) FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", itemsInPosition).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, translate(err, "find order")
	}
	return &order, nil
}

func itemsInPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
