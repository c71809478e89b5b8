package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/seat-inventory/internal/config"
	"github.com/iliyamo/seat-inventory/internal/handler"
	"github.com/iliyamo/seat-inventory/internal/middleware"
)

// Deps bundles what the route groups need.  Redis may be nil, in which case
// caching and rate limiting are pass-throughs.
type Deps struct {
	Layouts   *handler.LayoutHandler
	Checkout  *handler.CheckoutHandler
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	JWTSecret string
}

// New builds the echo instance with recovery and request ids installed and
// every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	RegisterRoutes(e)
	v1 := e.Group("/v1", middleware.NewTokenBucket(d.RateLimit, d.Redis))
	RegisterLayout(v1, d.Layouts, middleware.NewRedisCache(d.Cache, d.Redis))
	RegisterCheckout(v1, d.Checkout, d.JWTSecret)
	return e
}

// RegisterRoutes registers the unauthenticated, unversioned routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterLayout registers the layout routes on g.  Only the GET routes go
// through the response cache; posted block lists are never cached.
func RegisterLayout(g *echo.Group, h *handler.LayoutHandler, cache echo.MiddlewareFunc) {
	g.GET("/layouts/:id", h.GetLayout, cache)
	g.GET("/layouts/:id/counts", h.GetCounts, cache)
	g.GET("/layouts/:id/tiers", h.GetTiers, cache)
	g.POST("/layouts/normalize", h.Normalize)
	g.POST("/layouts/counts", h.Counts)
}

// RegisterCheckout registers the discount and checkout routes on g.
// Quoting is anonymous; redeeming consumes a use of the code and requires a
// CUSTOMER token.
func RegisterCheckout(g *echo.Group, h *handler.CheckoutHandler, jwtSecret string) {
	g.GET("/discounts/:code", h.GetDiscount)
	g.POST("/checkout/quote", h.Quote)
	g.POST("/checkout/redeem", h.Redeem,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
}
