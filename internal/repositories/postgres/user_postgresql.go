package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/arteterapia/workshop-service/internal/models"
	"github.com/arteterapia/workshop-service/internal/repositories"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.helpers.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Preload("Roles").
		First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsernameOrEmail(ctx context.Context, tx *gorm.DB, identifier string) (*models.User, error) {
	var user models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Preload("Roles").
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Preload("Roles").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByVerificationToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	var user models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Where("verification_token = ?", token).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByResetToken(ctx context.Context, tx *gorm.DB, token string) (*models.User, error) {
	var user models.User
	err := u.helpers.getDB(tx).WithContext(ctx).
		Where("reset_token = ?", token).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	// Save with Select("*") so cleared token pointers write NULL.
	if err := u.helpers.getDB(tx).WithContext(ctx).
		Model(user).
		Select("*").
		Omit("id", "created_at").
		Updates(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := u.helpers.getDB(tx).WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (u *UserPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	var count int64
	err := u.helpers.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	var count int64
	err := u.helpers.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) AssignRole(ctx context.Context, tx *gorm.DB, user *models.User, role *models.Role) error {
	if err := u.helpers.getDB(tx).WithContext(ctx).
		Model(user).
		Association("Roles").
		Append(role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

type RolePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewRolePostgreSQL(db *gorm.DB) repositories.RoleRepository {
	return &RolePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *RolePostgreSQL) GetByName(ctx context.Context, tx *gorm.DB, name string) (*models.Role, error) {
	var role models.Role
	err := r.helpers.getDB(tx).WithContext(ctx).
		Where("name = ?", name).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// EnsureDefaults creates the admin and editor roles if missing.
func (r *RolePostgreSQL) EnsureDefaults(ctx context.Context, tx *gorm.DB) error {
	db := r.helpers.getDB(tx).WithContext(ctx)
	for _, name := range []string{models.RoleAdmin, models.RoleEditor} {
		if err := db.Where(models.Role{Name: name}).FirstOrCreate(&models.Role{Name: name}).Error; err != nil {
			return fmt.Errorf("failed to ensure role %s: %w", name, err)
		}
	}
	return nil
}
