// Package gormrepos implements the domain repositories on gorm/postgres.
package gormrepos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/progressiveschool/progressive/core/user"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]uint, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	var usr user.User
	query := repo.db.WithContext(ctx).Where("username = ?", username)
	if len(exclIDs) > 0 {
		query = query.Where("id NOT IN ?", exclIDs)
	}
	if err := query.First(&usr).Error; err == nil {
		return user.ErrUsernameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	query = repo.db.WithContext(ctx).Where("email = ?", email)
	if len(exclIDs) > 0 {
		query = query.Where("id NOT IN ?", exclIDs)
	}
	if err := query.First(&usr).Error; err == nil {
		return user.ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if err := repo.db.WithContext(ctx).Create(&usr).Error; err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id uint) (user.User, error) {
	var usr user.User
	if err := repo.db.WithContext(ctx).First(&usr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	var usr user.User
	err := repo.db.WithContext(ctx).
		Where("username = ? OR email = ?", uname, uname).
		First(&usr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := repo.db.WithContext(ctx).Model(&user.User{})

	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where(
			"username ILIKE ? OR email ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR admission_number ILIKE ?",
			search, search, search, search, search,
		)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.ClassID != 0 {
		query = query.Where("class_id = ?", filter.ClassID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}

	var users []user.User
	if err := query.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	origUsr, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.User{}, err
	}

	// only save set fields
	if usr.FirstName != "" {
		origUsr.FirstName = usr.FirstName
	}
	if usr.LastName != "" {
		origUsr.LastName = usr.LastName
	}
	if usr.Username != "" {
		origUsr.Username = usr.Username
	}
	if usr.Email != "" {
		origUsr.Email = usr.Email
	}
	if usr.Role != "" {
		origUsr.Role = usr.Role
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if usr.DepartmentID != nil {
		origUsr.DepartmentID = usr.DepartmentID
	}
	if usr.CourseID != nil {
		origUsr.CourseID = usr.CourseID
	}
	if usr.ClassID != nil {
		origUsr.ClassID = usr.ClassID
	}
	if usr.SemesterID != nil {
		origUsr.SemesterID = usr.SemesterID
	}
	if !usr.LastLogin.IsZero() {
		origUsr.LastLogin = usr.LastLogin
	}
	if isActive != nil {
		origUsr.IsActive = *isActive
	}
	if !usr.UpdatedAt.IsZero() {
		origUsr.UpdatedAt = usr.UpdatedAt
	}

	if err := repo.db.WithContext(ctx).Save(&origUsr).Error; err != nil {
		return user.User{}, err
	}
	return origUsr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...uint) error {
	return repo.db.WithContext(ctx).Delete(&user.User{}, ids).Error
}

func (repo *userRepository) LatestAdmissionNumber(ctx context.Context, prefix string) (string, error) {
	var latest string
	err := repo.db.WithContext(ctx).
		Model(&user.User{}).
		Select("COALESCE(MAX(admission_number), '')").
		Where("admission_number LIKE ?", prefix+"%").
		Scan(&latest).Error
	if err != nil {
		return "", err
	}
	return latest, nil
}

func (repo *userRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := repo.db.WithContext(ctx).
		Model(&user.User{}).
		Where("role = ?", role).
		Count(&n).Error
	return n, err
}
