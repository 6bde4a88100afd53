// Package catalog holds storefront products and the home page listings.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/storefront-api/internal/errors"
)

// ListingLimit is the number of products in each home page listing
const ListingLimit = 5

type Product struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Price            float64   `json:"price"`
	Duration         string    `json:"duration"`
	Stock            int       `json:"stock"`
	Image            string    `json:"image"` // Stored upload filename, empty when none
	ViewsCount       int       `json:"views_count"`
	IsTopSelling     bool      `json:"is_top_selling"`
	IsBudgetFriendly bool      `json:"is_budget_friendly"`
	CreatedAt        time.Time `json:"created_at"`
}

// Repo persists products
type Repo interface {
	Create(ctx context.Context, product *Product) error
	TopSelling(ctx context.Context, limit int) ([]*Product, error)
	MostViewed(ctx context.Context, limit int) ([]*Product, error)
	BudgetFriendly(ctx context.Context, limit int) ([]*Product, error)
}

// AddProductRequest is the add-product form. Title and a non-zero price are required.
type AddProductRequest struct {
	Title            string  `json:"title" validate:"required"`
	Description      string  `json:"description"`
	Price            float64 `json:"price" validate:"required"`
	Duration         string  `json:"duration"`
	Stock            int     `json:"stock" validate:"gte=0"`
	Image            string  `json:"image"`
	IsBudgetFriendly bool    `json:"is_budget_friendly"`
	IsTopSelling     bool    `json:"is_top_selling"`
}

// Listings is the combined home page payload
type Listings struct {
	TopSelling     []*Product
	MostViewed     []*Product
	BudgetFriendly []*Product
}

type Service struct {
	repo    Repo
	timeout time.Duration
}

func NewService(repo Repo, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{repo: repo, timeout: timeout}
}

// ErrNegativeStock is a validation error for a stock count below zero
var ErrNegativeStock = errors.New("stock cannot be negative")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func (s *Service) AddProduct(ctx context.Context, req AddProductRequest) (*Product, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	product := &Product{
		Title:            req.Title,
		Description:      req.Description,
		Price:            req.Price,
		Duration:         req.Duration,
		Stock:            req.Stock,
		Image:            req.Image,
		IsTopSelling:     req.IsTopSelling,
		IsBudgetFriendly: req.IsBudgetFriendly,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("add product failed")
		return nil, errors.Kind(errors.ErrPersistence, err)
	}
	return product, nil
}

// validateProduct reports a missing title or price ahead of a bad stock count.
func validateProduct(req AddProductRequest) error {
	validateOnce.Do(func() { validate = validator.New() })
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Field() != "Stock" {
				return errors.Kind(errors.ErrValidation, err)
			}
		}
		return errors.Kind(errors.ErrValidation, ErrNegativeStock)
	}
	return errors.Kind(errors.ErrValidation, err)
}

func (s *Service) TopSelling(ctx context.Context) ([]*Product, error) {
	return s.list(ctx, "top-selling", s.repo.TopSelling)
}

func (s *Service) MostViewed(ctx context.Context) ([]*Product, error) {
	return s.list(ctx, "most-viewed", s.repo.MostViewed)
}

func (s *Service) BudgetFriendly(ctx context.Context) ([]*Product, error) {
	return s.list(ctx, "budget-friendly", s.repo.BudgetFriendly)
}

// All returns the three home page listings. Any failure fails the whole call.
func (s *Service) All(ctx context.Context) (*Listings, error) {
	var (
		listings Listings
		err      error
	)
	if listings.TopSelling, err = s.TopSelling(ctx); err != nil {
		return nil, err
	}
	if listings.MostViewed, err = s.MostViewed(ctx); err != nil {
		return nil, err
	}
	if listings.BudgetFriendly, err = s.BudgetFriendly(ctx); err != nil {
		return nil, err
	}
	return &listings, nil
}

func (s *Service) list(ctx context.Context, name string, query func(context.Context, int) ([]*Product, error)) ([]*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	products, err := query(ctx, ListingLimit)
	if err != nil {
		log.Error().Err(err).Str("listing", name).Msg("product listing failed")
		return nil, errors.Kind(errors.ErrPersistence, pkgerrors.Wrapf(err, "[list] %s", name))
	}
	if products == nil {
		products = []*Product{}
	}
	return products, nil
}
