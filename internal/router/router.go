package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/flight-booking/internal/config"
	"github.com/iliyamo/flight-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/flight-booking/internal/middleware" // import middleware for JWT authentication, caching and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.  Unauthenticated
// operations live under /v1/auth; the aggregated /v1/me view is registered by
// RegisterBooking together with the other protected endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to log out using a refresh token.  The handler
	// accepts a JSON body containing a `refresh_token` and invalidates that
	// token; no JWT is required.
	g.POST("/logout", a.Logout)
}

// RegisterFlights registers the public flight browsing and route search
// endpoints.  These routes carry no JWT middleware; instead they sit behind
// the Redis response cache and the token-bucket rate limiter, because they
// serve read-only reference data and the route search rebuilds the flight
// graph on every cache miss.
func RegisterFlights(e *echo.Echo, f *handler.FlightHandler, r *handler.RouteHandler, rdb *redis.Client) {
	g := e.Group("/v1")
	if rdb != nil {
		// Rate limiting runs before the cache so that abusive clients are
		// rejected without touching Redis payloads.
		g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
		g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	// Paginated flight listing at /v1/flights?page=&size=.
	g.GET("/flights", f.List)
	// Single flight lookup by its flight number.
	g.GET("/flights/:number", f.Get)
	// Cheapest route search at /v1/routes/cheapest?from_airport=&to_airport=.
	g.GET("/routes/cheapest", r.Cheapest)
}

// RegisterBooking registers the protected booking endpoints.  All handlers on
// this group execute the JWTAuth middleware before being invoked, so each one
// can rely on user_id being present in the request context.
func RegisterBooking(e *echo.Echo, t *handler.TicketHandler, p *handler.PrivilegeHandler, jwtSecret string) {
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Purchase a ticket for a flight; the body selects money or bonus payment.
	auth.POST("/tickets", t.Purchase)
	// List the authenticated user's tickets, newest first.
	auth.GET("/tickets", t.List)
	// Fetch a single ticket owned by the authenticated user.
	auth.GET("/tickets/:id", t.Get)
	// Cancel a ticket and reverse its bonus operation.
	auth.DELETE("/tickets/:id", t.Cancel)
	// Bonus account balance, status and full operation history.
	auth.GET("/privilege", p.Get)
	// Aggregated profile view: user info, tickets and bonus account.
	auth.GET("/me", p.Me)
}
