package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/pkg/apperr"
	"github.com/shashiranjanraj/sweetshop/pkg/cache"
	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/validate"
)

const (
	cachePrefix  = "sweets:"
	MaxPageLimit = 100
)

// CreateSweetInput is the body of POST /sweet. Numbers may arrive as
// numeric strings.
type CreateSweetInput struct {
	Name        *string `json:"name"        validate:"required,max=255"`
	Category    *string `json:"category"    validate:"required,max=255"`
	Price       *Number `json:"price"       validate:"required,gte=0"`
	Quantity    *Number `json:"quantity"    validate:"required,gte=0"`
	Image       *string `json:"image"       validate:"required,max=1024"`
	Rating      *Number `json:"rating"      validate:"nullable,between=0,5"`
	Description *string `json:"description" validate:"nullable,max=5000"`
}

// UpdateSweetInput is the body of PUT /sweet/{id}. Absent fields are left
// unchanged; anything outside this struct is ignored.
type UpdateSweetInput struct {
	Name        *string `json:"name"        validate:"nullable,required,max=255"`
	Category    *string `json:"category"    validate:"nullable,required,max=255"`
	Price       *Number `json:"price"       validate:"nullable,gte=0"`
	Quantity    *Number `json:"quantity"    validate:"nullable,gte=0"`
	Image       *string `json:"image"       validate:"nullable,required,max=1024"`
	Rating      *Number `json:"rating"      validate:"nullable,between=0,5"`
	Description *string `json:"description" validate:"nullable,max=5000"`
}

// ListResult is one page (or all) of a listing.
type ListResult struct {
	Sweets []models.Sweet    `json:"sweets"`
	Total  int64             `json:"total"`
	Page   repositories.Page `json:"page"`
}

// Pagination is the envelope block for paged listings.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Pagination returns nil when the listing was not paged.
func (r ListResult) Pagination() *Pagination {
	if r.Page.Number == 0 {
		return nil
	}
	return &Pagination{
		Page:       r.Page.Number,
		Limit:      r.Page.Size,
		Total:      r.Total,
		TotalPages: int((r.Total + int64(r.Page.Size) - 1) / int64(r.Page.Size)),
	}
}

// SweetService owns catalogue CRUD and search.
type SweetService struct {
	repo   repositories.SweetRepository
	cache  cache.Cache
	events *event.Dispatcher
	ttl    time.Duration
}

func NewSweetService(repo repositories.SweetRepository, c cache.Cache, events *event.Dispatcher, ttl time.Duration) *SweetService {
	if c == nil {
		c = cache.Nop{}
	}
	return &SweetService{repo: repo, cache: c, events: events, ttl: ttl}
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// checkSweetNumbers adds the rules struct tags cannot express.
func checkSweetNumbers(quantity *Number, errs map[string]string) (*int, map[string]string) {
	if quantity == nil {
		return nil, errs
	}
	if _, bad := errs["quantity"]; bad {
		return nil, errs
	}
	n, ok := quantity.Int()
	if !ok {
		errs["quantity"] = "The quantity must be a whole number."
		return nil, errs
	}
	return &n, errs
}

// Create validates in, applies defaults and stores the sweet.
func (s *SweetService) Create(ctx context.Context, in CreateSweetInput) (models.Sweet, error) {
	if blank(in.Name) || blank(in.Category) || blank(in.Image) || in.Price == nil || in.Quantity == nil {
		return models.Sweet{}, ErrMissingSweetFields
	}
	quantity, errs := checkSweetNumbers(in.Quantity, validate.Struct(in))
	if validate.HasErrors(errs) {
		return models.Sweet{}, apperr.Invalid(validationFailed, errs)
	}

	sweet := models.Sweet{
		Name:        *trimmed(in.Name),
		Category:    *trimmed(in.Category),
		Price:       float64(*in.Price),
		Quantity:    *quantity,
		Image:       *trimmed(in.Image),
		Rating:      models.DefaultRating,
		Description: models.DefaultDescription,
	}
	if in.Rating != nil {
		sweet.Rating = float64(*in.Rating)
	}
	if !blank(in.Description) {
		sweet.Description = *trimmed(in.Description)
	}

	if err := s.repo.Create(ctx, &sweet); err != nil {
		return models.Sweet{}, apperr.Wrap(apperr.Internal, "Error adding sweet", err)
	}
	s.changed(ctx, event.Event{Name: EventSweetCreated, Payload: sweet})
	return sweet, nil
}

// List returns the catalogue filtered and optionally paged. Results are
// served from cache until the next write or the configured TTL.
func (s *SweetService) List(ctx context.Context, filter repositories.SweetFilter, page repositories.Page) (ListResult, error) {
	key := listKey(filter, page)
	var cached ListResult
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	gen := s.cache.Generation()
	sweets, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return ListResult{}, apperr.Wrap(apperr.Internal, "Error fetching sweets", err)
	}
	res := ListResult{Sweets: sweets, Total: total, Page: page}
	s.fill(ctx, key, res, gen)
	return res, nil
}

// Get returns one sweet by id.
func (s *SweetService) Get(ctx context.Context, id string) (models.Sweet, error) {
	key := cachePrefix + "one:" + id
	var sweet models.Sweet
	if s.cache.Get(ctx, key, &sweet) {
		return sweet, nil
	}

	gen := s.cache.Generation()
	sweet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Sweet{}, s.translate(err, "Error fetching sweet")
	}
	s.fill(ctx, key, sweet, gen)
	return sweet, nil
}

// fill caches a store read taken at generation gen. Reads that overlapped a
// write are dropped.
func (s *SweetService) fill(ctx context.Context, key string, value any, gen uint64) {
	if err := cache.Fill(ctx, s.cache, key, value, s.ttl, gen); err != nil {
		logger.WithCtx(ctx).Warn("sweets: cache set", "key", key, "error", err)
	}
}

// Update applies the present fields of in. An empty input returns the
// current sweet unchanged.
func (s *SweetService) Update(ctx context.Context, id string, in UpdateSweetInput) (models.Sweet, error) {
	quantity, errs := checkSweetNumbers(in.Quantity, validate.Struct(in))
	if validate.HasErrors(errs) {
		return models.Sweet{}, apperr.Invalid(validationFailed, errs)
	}

	changes := repositories.SweetChanges{
		Name:        trimmed(in.Name),
		Category:    trimmed(in.Category),
		Price:       in.Price.Float(),
		Quantity:    quantity,
		Image:       trimmed(in.Image),
		Rating:      in.Rating.Float(),
		Description: trimmed(in.Description),
	}
	// A blank description falls back to the default, as on create.
	if changes.Description != nil && *changes.Description == "" {
		def := models.DefaultDescription
		changes.Description = &def
	}
	sweet, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		return models.Sweet{}, s.translate(err, "Error updating sweet")
	}
	if !changes.Empty() {
		s.changed(ctx, event.Event{Name: EventSweetUpdated, Payload: sweet})
	}
	return sweet, nil
}

// Delete removes a sweet.
func (s *SweetService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, "Error deleting sweet")
	}
	s.changed(ctx, event.Event{Name: EventSweetDeleted, Payload: SweetDeleted{ID: id}})
	return nil
}

func (s *SweetService) translate(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrSweetNotFound
	}
	return apperr.Wrap(apperr.Internal, message, err)
}

func (s *SweetService) changed(ctx context.Context, e event.Event) {
	invalidate(ctx, s.cache)
	if s.events != nil {
		s.events.Dispatch(ctx, e)
	}
}

func invalidate(ctx context.Context, c cache.Cache) {
	if err := c.DeletePrefix(ctx, cachePrefix); err != nil {
		logger.WithCtx(ctx).Warn("sweets: cache invalidate", "error", err)
	}
}

func listKey(f repositories.SweetFilter, p repositories.Page) string {
	price := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'g', -1, 64)
	}
	q := url.Values{}
	q.Set("n", strings.ToLower(f.Name))
	q.Set("c", strings.ToLower(f.Category))
	q.Set("min", price(f.MinPrice))
	q.Set("max", price(f.MaxPrice))
	q.Set("p", strconv.Itoa(p.Number))
	q.Set("s", strconv.Itoa(p.Size))
	return cachePrefix + "list:" + q.Encode()
}

// ParseFilter reads name, category, minPrice and maxPrice from a query
// string.
func ParseFilter(q url.Values) (repositories.SweetFilter, error) {
	f := repositories.SweetFilter{
		Name:     strings.TrimSpace(q.Get("name")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	var err error
	if f.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		return f, err
	}
	if f.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		return f, err
	}
	return f, nil
}

func parsePrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, ErrInvalidPriceFilter.WithCause(fmt.Errorf("price %q", raw))
	}
	return &v, nil
}

// ParsePage reads page and limit. Without page the listing is not paged.
// limit defaults to defaultSize and is capped at MaxPageLimit.
func ParsePage(q url.Values, defaultSize int) (repositories.Page, error) {
	rawPage := strings.TrimSpace(q.Get("page"))
	if rawPage == "" {
		return repositories.Page{}, nil
	}
	number, err := strconv.Atoi(rawPage)
	if err != nil || number < 1 {
		return repositories.Page{}, ErrInvalidPage
	}

	size := defaultSize
	if rawLimit := strings.TrimSpace(q.Get("limit")); rawLimit != "" {
		size, err = strconv.Atoi(rawLimit)
		if err != nil || size < 1 {
			return repositories.Page{}, ErrInvalidPage
		}
	}
	if size < 1 {
		size = 20
	}
	return repositories.Page{Number: number, Size: min(size, MaxPageLimit)}, nil
}
