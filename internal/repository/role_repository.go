package repository

import (
	"context"
	"questionnaire_backend/internal/model"

	"gorm.io/gorm"
)

type RoleRepository struct {
	DB *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

func (r *RoleRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserRoles, error) {
	var roles model.UserRoles
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&roles).Error
	return &roles, err
}
