package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
)

// SQLUserRepository stores users through gorm.
type SQLUserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewSQLUserRepository(db *gorm.DB, timeout time.Duration) *SQLUserRepository {
	return &SQLUserRepository{db: db, timeout: timeout}
}

// isUniqueViolation matches the duplicate-key messages of sqlite, postgres,
// mysql and sqlserver.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (r *SQLUserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveDBQuery("sql", "users.create", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	user.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("sql: insert user: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveDBQuery("sql", "users.find", time.Now())
	return r.first(ctx, "email = ?", email)
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	defer metrics.ObserveDBQuery("sql", "users.find", time.Now())
	return r.first(ctx, "id = ?", id)
}

func (r *SQLUserRepository) SetRole(ctx context.Context, id, role string) error {
	defer metrics.ObserveDBQuery("sql", "users.update", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"role": role, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("sql: set role: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLUserRepository) first(ctx context.Context, query string, arg any) (models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var user models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("sql: find user: %w", err)
	}
	return user, nil
}
