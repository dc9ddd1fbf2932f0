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

// SQLSweetRepository stores sweets through gorm.
type SQLSweetRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewSQLSweetRepository(db *gorm.DB, timeout time.Duration) *SQLSweetRepository {
	return &SQLSweetRepository{db: db, timeout: timeout}
}

func (r *SQLSweetRepository) Create(ctx context.Context, sweet *models.Sweet) error {
	defer metrics.ObserveDBQuery("sql", "sweets.create", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	sweet.ID = uuid.NewString()
	if err := r.db.WithContext(ctx).Create(sweet).Error; err != nil {
		return fmt.Errorf("sql: insert sweet: %w", err)
	}
	return nil
}

func (r *SQLSweetRepository) FindByID(ctx context.Context, id string) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("sql", "sweets.find", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	return findSweet(r.db.WithContext(ctx), id)
}

func findSweet(tx *gorm.DB, id string) (models.Sweet, error) {
	var sweet models.Sweet
	if err := tx.Where("id = ?", id).First(&sweet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Sweet{}, ErrNotFound
		}
		return models.Sweet{}, fmt.Errorf("sql: find sweet: %w", err)
	}
	return sweet, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a portable case-insensitive LIKE argument that treats
// the input literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func (r *SQLSweetRepository) List(ctx context.Context, f SweetFilter, page Page) ([]models.Sweet, int64, error) {
	defer metrics.ObserveDBQuery("sql", "sweets.list", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	q := r.db.WithContext(ctx).Model(&models.Sweet{})
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '!'", likePattern(f.Name))
	}
	if f.Category != "" {
		q = q.Where("LOWER(category) LIKE ? ESCAPE '!'", likePattern(f.Category))
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("sql: count sweets: %w", err)
	}

	q = q.Order("created_at ASC").Order("id ASC")
	if page.enabled() {
		q = q.Offset(page.offset()).Limit(page.Size)
	}
	sweets := make([]models.Sweet, 0)
	if err := q.Find(&sweets).Error; err != nil {
		return nil, 0, fmt.Errorf("sql: list sweets: %w", err)
	}
	return sweets, total, nil
}

func (r *SQLSweetRepository) Update(ctx context.Context, id string, c SweetChanges) (models.Sweet, error) {
	if c.Empty() {
		return r.FindByID(ctx, id)
	}
	defer metrics.ObserveDBQuery("sql", "sweets.update", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var out models.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sweet, err := findSweet(tx, id)
		if err != nil {
			return err
		}
		c.apply(&sweet)
		sweet.UpdatedAt = time.Now()
		if err := tx.Save(&sweet).Error; err != nil {
			return fmt.Errorf("sql: update sweet: %w", err)
		}
		out = sweet
		return nil
	})
	return out, err
}

func (r *SQLSweetRepository) Delete(ctx context.Context, id string) error {
	defer metrics.ObserveDBQuery("sql", "sweets.delete", time.Now())
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Sweet{})
	if res.Error != nil {
		return fmt.Errorf("sql: delete sweet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLSweetRepository) Decrement(ctx context.Context, id string, n int) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("sql", "sweets.decrement", time.Now())
	return r.adjust(ctx, id, -n)
}

func (r *SQLSweetRepository) Increment(ctx context.Context, id string, n int) (models.Sweet, error) {
	defer metrics.ObserveDBQuery("sql", "sweets.increment", time.Now())
	return r.adjust(ctx, id, n)
}

// adjust applies delta with one guarded UPDATE. A negative delta only
// matches rows holding at least -delta units.
func (r *SQLSweetRepository) adjust(ctx context.Context, id string, delta int) (models.Sweet, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var out models.Sweet
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Sweet{}).Where("id = ?", id)
		if delta < 0 {
			q = q.Where("quantity >= ?", -delta)
		}
		res := q.Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return fmt.Errorf("sql: adjust stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			if _, err := findSweet(tx, id); err != nil {
				return err
			}
			return ErrInsufficientStock
		}
		sweet, err := findSweet(tx, id)
		if err != nil {
			return err
		}
		out = sweet
		return nil
	})
	return out, err
}

func (r *SQLSweetRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Sweet{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("sql: count sweets: %w", err)
	}
	return n, nil
}
