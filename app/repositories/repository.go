// Package repositories persists sweets and users. Each backend (Mongo,
// gorm SQL, in-memory) implements the same contracts, and stock changes are
// always a single conditional update so concurrent purchases cannot
// oversell.
package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/sweetshop/app/models"
)

var (
	ErrNotFound          = errors.New("repositories: not found")
	ErrDuplicate         = errors.New("repositories: duplicate key")
	ErrInsufficientStock = errors.New("repositories: insufficient stock")
)

// SweetFilter narrows a listing. Name and Category are case-insensitive
// literal substrings; prices are inclusive bounds.
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// Page selects a window of results. The zero Page means everything.
type Page struct {
	Number int
	Size   int
}

func (p Page) enabled() bool { return p.Number > 0 && p.Size > 0 }
func (p Page) offset() int   { return (p.Number - 1) * p.Size }

// SweetChanges holds the fields an update may touch. Nil means unchanged.
type SweetChanges struct {
	Name        *string
	Category    *string
	Price       *float64
	Quantity    *int
	Image       *string
	Rating      *float64
	Description *string
}

// Empty reports whether no field is set.
func (c SweetChanges) Empty() bool {
	return c.Name == nil && c.Category == nil && c.Price == nil && c.Quantity == nil &&
		c.Image == nil && c.Rating == nil && c.Description == nil
}

func (c SweetChanges) apply(s *models.Sweet) {
	if c.Name != nil {
		s.Name = *c.Name
	}
	if c.Category != nil {
		s.Category = *c.Category
	}
	if c.Price != nil {
		s.Price = *c.Price
	}
	if c.Quantity != nil {
		s.Quantity = *c.Quantity
	}
	if c.Image != nil {
		s.Image = *c.Image
	}
	if c.Rating != nil {
		s.Rating = *c.Rating
	}
	if c.Description != nil {
		s.Description = *c.Description
	}
}

type SweetRepository interface {
	Create(ctx context.Context, sweet *models.Sweet) error
	FindByID(ctx context.Context, id string) (models.Sweet, error)
	// List returns matching sweets in insertion order and the total match
	// count before paging.
	List(ctx context.Context, filter SweetFilter, page Page) ([]models.Sweet, int64, error)
	Update(ctx context.Context, id string, changes SweetChanges) (models.Sweet, error)
	Delete(ctx context.Context, id string) error
	// Decrement removes n units only if at least n are in stock. It returns
	// ErrInsufficientStock, leaving the sweet untouched, otherwise.
	Decrement(ctx context.Context, id string, n int) (models.Sweet, error)
	Increment(ctx context.Context, id string, n int) (models.Sweet, error)
	Count(ctx context.Context) (int64, error)
}

type UserRepository interface {
	// Create returns ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	SetRole(ctx context.Context, id, role string) error
}

func containsFold(haystack, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (f SweetFilter) matches(s models.Sweet) bool {
	if !containsFold(s.Name, f.Name) || !containsFold(s.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && s.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && s.Price > *f.MaxPrice {
		return false
	}
	return true
}
