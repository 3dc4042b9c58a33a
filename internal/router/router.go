// Package router registers the public API routes and wires the middleware
// chain onto them.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/seathive/seathive-server/internal/config"
	"github.com/seathive/seathive-server/internal/handler"
	"github.com/seathive/seathive-server/internal/middleware"
	"github.com/seathive/seathive-server/internal/model"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Health      *handler.HealthHandler
	Movies      *handler.MovieHandler
	Cinemas     *handler.CinemaHandler
	Auditoriums *handler.AuditoriumHandler
	Showtimes   *handler.ShowtimeHandler
	Tickets     *handler.TicketHandler
	Payments    *handler.PaymentHandler
}

// Register wires the full route table.  Catalog reads are anonymous and
// may be served from the Redis response cache; every mutation runs behind
// JWT auth plus a role guard, with ownership enforced deeper in the
// handlers; the payment webhook is verified by the service signature.
func Register(e *echo.Echo, h Handlers, cfg config.Config, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Validator = handler.NewValidator()

	auth := middleware.JWTAuth(cfg.JWTSecret)
	staff := middleware.RequireRole(model.RoleOrganizer, model.RoleAdmin)
	respCache := middleware.ResponseCache(cacheCfg, rdb)

	e.GET("/healthz", h.Health.Healthz)

	api := e.Group("/api")

	movies := api.Group("/movies")
	movies.GET("", h.Movies.List, respCache)
	movies.GET("/:id", h.Movies.Get, respCache)
	movies.POST("", h.Movies.Create, auth, staff)
	movies.PUT("/:id", h.Movies.Update, auth, staff)
	movies.DELETE("/:id", h.Movies.Delete, auth, staff)

	cinemas := api.Group("/cinemas")
	cinemas.GET("", h.Cinemas.List, respCache)
	cinemas.GET("/:id", h.Cinemas.Get, respCache)
	cinemas.POST("", h.Cinemas.Create, auth, staff)
	cinemas.PATCH("/:id/status", h.Cinemas.UpdateStatus, auth, middleware.RequireRole(model.RoleAdmin))
	cinemas.PUT("/:id", h.Cinemas.Update, auth, staff)
	cinemas.DELETE("/:id", h.Cinemas.Delete, auth, staff)

	auditoriums := api.Group("/auditoriums")
	auditoriums.GET("", h.Auditoriums.List, respCache)
	auditoriums.GET("/:id", h.Auditoriums.Get, respCache)
	auditoriums.GET("/cinema/:cinemaId", h.Auditoriums.ListByCinema, respCache)
	auditoriums.POST("", h.Auditoriums.Create, auth, staff)
	auditoriums.PUT("/:id", h.Auditoriums.Update, auth, staff)
	auditoriums.DELETE("/:id", h.Auditoriums.Delete, auth, staff)

	showtimes := api.Group("/showtimes")
	// The seat map is deliberately not response-cached; it has its own
	// short-TTL cache with write-path invalidation.
	showtimes.GET("/:id/seatmap", h.Showtimes.SeatMap)
	showtimes.GET("/:id", h.Showtimes.Get)
	showtimes.POST("", h.Showtimes.Create, auth, staff)
	showtimes.PUT("/:id", h.Showtimes.Update, auth, staff)
	showtimes.DELETE("/:id", h.Showtimes.Delete, auth, staff)

	tickets := api.Group("/tickets")
	tickets.POST("/reserve", h.Tickets.Reserve, auth)
	tickets.GET("/my-bookings", h.Tickets.MyBookings, auth)
	tickets.POST("/payment/success", h.Payments.Success, middleware.S2SAuth(cfg.IdentitySecret))
}
