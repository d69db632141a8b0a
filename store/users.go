package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/judyrop/storefront/models"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, "create user")
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, "find user")
	}
	return &user, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return translate(result.Error, "update user role")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
