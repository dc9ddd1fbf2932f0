package validate_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sweetshop/pkg/validate"
)

type sweetInput struct {
	Name     *string  `json:"name"     validate:"required,max=10"`
	Price    *float64 `json:"price"    validate:"required,gte=0"`
	Quantity *int     `json:"quantity" validate:"required,gte=0"`
	Rating   *float64 `json:"rating"   validate:"nullable,between=0,5"`
	Role     string   `json:"role"     validate:"nullable,in=user,admin"`
}

func ptr[T any](v T) *T { return &v }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(sweetInput{
		Name:     ptr("Ladoo"),
		Price:    ptr(0.0),
		Quantity: ptr(0),
		Rating:   ptr(5.0),
		Role:     "admin",
	})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequiredTreatsNilPointerAsMissing(t *testing.T) {
	errs := validate.Struct(sweetInput{})
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "quantity")
	assert.NotContains(t, errs, "rating")
	assert.NotContains(t, errs, "role")
}

func TestPointerZeroIsPresent(t *testing.T) {
	errs := validate.Struct(sweetInput{Name: ptr("x"), Price: ptr(0.0), Quantity: ptr(0)})
	assert.Empty(t, errs)
}

func TestRangeRules(t *testing.T) {
	errs := validate.Struct(sweetInput{
		Name:     ptr("a very long sweet name"),
		Price:    ptr(-1.0),
		Quantity: ptr(-3),
		Rating:   ptr(5.5),
		Role:     "root",
	})
	assert.Equal(t, "The name must not exceed 10 characters.", errs["name"])
	assert.Equal(t, "The price must be greater than or equal to 0.", errs["price"])
	assert.Contains(t, errs, "quantity")
	assert.Equal(t, "The rating must be between 0 and 5.", errs["rating"])
	assert.Equal(t, "The selected role is invalid.", errs["role"])
}

func TestNullableRequiredRejectsBlankPresentValue(t *testing.T) {
	type update struct {
		Name *string `json:"name" validate:"nullable,required,max=120"`
	}
	assert.Empty(t, validate.Struct(update{}))
	assert.Contains(t, validate.Struct(update{Name: ptr("   ")}), "name")
	assert.Empty(t, validate.Struct(update{Name: ptr("Barfi")}))
}

func TestEmailAndURL(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
		Site  string `json:"site"  validate:"nullable,url"`
	}
	errs := validate.Struct(in{Email: "not-an-email", Site: "ftp://x"})
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "site")

	assert.Empty(t, validate.Struct(in{Email: "a@b.io", Site: "https://cdn.test/x.png"}))
}

func TestStringLengthUsesRunes(t *testing.T) {
	type in struct {
		Password string `json:"password" validate:"min=6"`
	}
	assert.Empty(t, validate.Struct(in{Password: "मिठाईमिठाई"}))
	assert.Contains(t, validate.Struct(in{Password: "abc"}), "password")
}

func TestNaNIsNotANumber(t *testing.T) {
	errs := validate.Struct(sweetInput{Name: ptr("x"), Price: ptr(math.NaN()), Quantity: ptr(1)})
	assert.Equal(t, "The price must be a number.", errs["price"])
	assert.Len(t, errs, 1)
}
