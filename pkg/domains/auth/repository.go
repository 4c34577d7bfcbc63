package auth

import (
	"context"

	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/entities"
	"gorm.io/gorm"
)

type Repository interface {
	CreateUser(ctx context.Context, user *entities.User) error
	FindUserByEmail(ctx context.Context, email string) (entities.User, error)
	FindUserByEmailOrPhone(ctx context.Context, email string, phone string) (entities.User, error)
	FindUserByID(ctx context.Context, id uint) (entities.User, error)
	UpdateUser(ctx context.Context, user entities.User) error
}

type repository struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindUserByEmail(ctx context.Context, email string) (entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, err
}

func (r *repository) FindUserByEmailOrPhone(ctx context.Context, email string, phone string) (entities.User, error) {
	var user entities.User
	query := r.db.WithContext(ctx).Where("email = ?", email)
	if phone != "" {
		query = query.Or("phone = ?", phone)
	}
	err := query.First(&user).Error
	return user, err
}

func (r *repository) FindUserByID(ctx context.Context, id uint) (entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

func (r *repository) UpdateUser(ctx context.Context, user entities.User) error {
	return r.db.WithContext(ctx).Save(&user).Error
}
