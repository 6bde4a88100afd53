package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteRegister        = "/api/register"
	RouteLogin           = "/api/login"
	RouteLoginWithGoogle = "/api/login-with-google"
	RouteLogout          = "/api/logout"
	RouteMe              = "/api/me"

	// Catalog Routes
	RouteAddProduct             = "/api/add-product"
	RouteProducts               = "/api/products"
	RouteProductsTopSelling     = "/api/products/top-selling"
	RouteProductsMostViewed     = "/api/products/most-viewed"
	RouteProductsBudgetFriendly = "/api/products/budget-friendly"

	// Uploaded images are served by the frontend host under this prefix
	RouteUploads = "/uploads/"

	RouteMetrics = "/metrics"
)
