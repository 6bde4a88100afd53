package server

import (
	"net/http"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), s.PublicAuthMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.PublicAuthMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLoginWithGoogle, ChainMiddleware(s.LoginWithGoogleHandler(), s.PublicAuthMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.RequireAuth()))

	// CATALOG
	s.RegisterRouteHandler("POST "+RouteAddProduct, ChainMiddleware(s.AddProductHandler(), s.RequireAuth()))
	s.RegisterRouteFunc("GET "+RouteProducts, s.ProductsHandler())
	s.RegisterRouteFunc("GET "+RouteProductsTopSelling, s.ListingHandler("top-selling", s.catalog.TopSelling))
	s.RegisterRouteFunc("GET "+RouteProductsMostViewed, s.ListingHandler("most-viewed", s.catalog.MostViewed))
	s.RegisterRouteFunc("GET "+RouteProductsBudgetFriendly, s.ListingHandler("budget-friendly", s.catalog.BudgetFriendly))

	if s.metricsHandler != nil {
		s.mux.Handle("GET "+RouteMetrics, s.metricsHandler)
		s.routes = append(s.routes, "GET "+RouteMetrics)
	}
}

// PublicAuthMiddleware guards the unauthenticated credential endpoints
func (s *Server) PublicAuthMiddleware() []func(http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return nil
	}
	return []func(http.HandlerFunc) http.HandlerFunc{
		s.limiter.Middleware,
	}
}
