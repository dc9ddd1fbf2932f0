package services

import "github.com/shashiranjanraj/sweetshop/pkg/apperr"

// Client-facing failures. Messages are part of the API contract.
var (
	ErrInvalidQuantity     = apperr.New(apperr.Validation, "Quantity must be greater than zero")
	ErrSweetNotFound       = apperr.New(apperr.NotFound, "Sweet not found")
	ErrInsufficientStock   = apperr.New(apperr.Validation, "Insufficient stock")
	ErrMissingSweetFields  = apperr.New(apperr.Validation, "All fields (name, category, price, quantity, image) are required")
	ErrInvalidPriceFilter  = apperr.New(apperr.Validation, "Invalid price filter")
	ErrInvalidPage         = apperr.New(apperr.Validation, "Invalid pagination parameters")
	ErrMissingSignupFields = apperr.New(apperr.Validation, "Name, email or password not present")
	ErrEmailTaken          = apperr.New(apperr.Conflict, "User already registered")
	ErrMissingCredentials  = apperr.New(apperr.Validation, "Email or password not provided")
	ErrInvalidCredentials  = apperr.New(apperr.Unauthenticated, "Invalid credentials")
	ErrAuthRequired        = apperr.New(apperr.Unauthenticated, "Authentication required")
	ErrAuthFailed          = apperr.New(apperr.Unauthenticated, "Authentication failed")
	ErrInvalidToken        = apperr.New(apperr.Unauthenticated, "Invalid token")
	ErrAdminOnly           = apperr.New(apperr.Forbidden, "Admin access only")
)

const validationFailed = "Validation failed"
