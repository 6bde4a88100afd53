package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/storefront-api/catalog"
	"github.com/jrsteele09/storefront-api/internal/errors"
	"github.com/jrsteele09/storefront-api/internal/utils"
)

// productResponse is the wire shape of a product. Flags are 0/1 and image_url
// is absolute or null.
type productResponse struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Price            float64   `json:"price"`
	Duration         string    `json:"duration"`
	Stock            int       `json:"stock"`
	Image            *string   `json:"image"`
	ViewsCount       int       `json:"views_count"`
	IsBudgetFriendly int       `json:"is_budget_friendly"`
	IsTopSelling     int       `json:"is_top_selling"`
	CreatedAt        time.Time `json:"created_at"`
	ImageURL         *string   `json:"image_url"`
}

type listingsResponse struct {
	TopSelling     []productResponse `json:"topSelling"`
	MostViewed     []productResponse `json:"mostViewed"`
	BudgetFriendly []productResponse `json:"budgetFriendly"`
}

// AddProductHandler stores a product. The image field is the name of an
// already stored upload.
func (s *Server) AddProductHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req catalog.AddProductRequest
		if err := bindRequest(w, r, maxProductBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Title and price are required")
			return
		}

		product, err := s.catalog.AddProduct(r.Context(), req)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]any{
				"message": "Product added successfully",
				"product": toProductResponse(r, product),
			})
		case errors.Is(err, catalog.ErrNegativeStock):
			writeError(w, http.StatusBadRequest, "Stock cannot be negative")
		case errors.Is(err, errors.ErrValidation):
			writeError(w, http.StatusBadRequest, "Title and price are required")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to add product")
		}
	}
}

// ListingHandler serves one home page listing as a JSON array
func (s *Server) ListingHandler(name string, list func(context.Context) ([]*catalog.Product, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := list(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch "+name+" products")
			return
		}
		writeJSON(w, http.StatusOK, toProductResponses(r, products))
	}
}

// ProductsHandler serves all three home page listings
func (s *Server) ProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := s.catalog.All(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to fetch products")
			return
		}
		writeJSON(w, http.StatusOK, listingsResponse{
			TopSelling:     toProductResponses(r, listings.TopSelling),
			MostViewed:     toProductResponses(r, listings.MostViewed),
			BudgetFriendly: toProductResponses(r, listings.BudgetFriendly),
		})
	}
}

func toProductResponses(r *http.Request, products []*catalog.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(r, p))
	}
	return out
}

func toProductResponse(r *http.Request, p *catalog.Product) productResponse {
	resp := productResponse{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Price:            p.Price,
		Duration:         p.Duration,
		Stock:            p.Stock,
		ViewsCount:       p.ViewsCount,
		IsBudgetFriendly: boolToInt(p.IsBudgetFriendly),
		IsTopSelling:     boolToInt(p.IsTopSelling),
		CreatedAt:        p.CreatedAt,
		Image:            utils.PtrOrNil(p.Image),
	}
	if p.Image != "" {
		resp.ImageURL = utils.Ptr(getScheme(r) + "://" + r.Host + RouteUploads + url.PathEscape(p.Image))
	}
	return resp
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
