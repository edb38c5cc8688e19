package storage

import (
	"context"

	"gorm.io/gorm"

	"userapi/internals/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns every user ordered by ascending id.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}

// Create inserts u and returns the stored row, including its generated id.
func (r *UserRepository) Create(ctx context.Context, u models.User) (*models.User, error) {
	u.ID = 0
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, classify("create user", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, classify("find user by email", err)
	}
	return &u, nil
}

// UpsertByEmail updates the name and password of the user with u.Email, or creates it.
func (r *UserRepository) UpsertByEmail(ctx context.Context, u models.User) (*models.User, bool, error) {
	var (
		out     models.User
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", u.Email).First(&out).Error
		switch {
		case err == nil:
			out.Name = u.Name
			out.Password = u.Password
			return tx.Save(&out).Error
		case KindOf(classify("", err)) == KindNotFound:
			out = models.User{Name: u.Name, Email: u.Email, Password: u.Password}
			created = true
			return tx.Create(&out).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, classify("upsert user", err)
	}
	return &out, created, nil
}
