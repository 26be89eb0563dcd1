package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/itinerary-maker/api/internal/auth"
	"github.com/octobees/itinerary-maker/api/internal/config"
	"github.com/octobees/itinerary-maker/api/internal/handler"
	middlewarepkg "github.com/octobees/itinerary-maker/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserAdminHandler
	Companies   *handler.CompaniesHandler
	AdminUpload *handler.AdminUploadHandler
	Directory   *handler.DirectoryHandler
	Itinerary   *handler.ItineraryHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))
	requireAdmin := middlewarepkg.RequireRole(middlewarepkg.RoleAdmin)

	secured.GET("/companies", handlers.Companies.List)
	secured.GET("/companies/:id", handlers.Companies.Get)
	secured.POST("/companies", handlers.Companies.Create, requireAdmin)
	secured.PATCH("/companies/:id", handlers.Companies.Update, requireAdmin)
	secured.DELETE("/companies/:id", handlers.Companies.Delete, requireAdmin)

	secured.GET("/companies/:id/contact-numbers", handlers.Directory.ListContactNumbers)
	secured.POST("/companies/:id/contact-numbers", handlers.Directory.AddContactNumber, requireAdmin)
	secured.DELETE("/contact-numbers/:id", handlers.Directory.DeleteContactNumber, requireAdmin)

	secured.GET("/users/:id/social-media", handlers.Directory.ListSocialMedia)
	secured.POST("/users/:id/social-media", handlers.Directory.AddSocialMedia)
	secured.DELETE("/social-media/:id", handlers.Directory.DeleteSocialMedia)

	secured.GET("/account-roles", handlers.Directory.ListAccountRoles)

	secured.GET("/itinerary/delegations", handlers.Itinerary.Delegations)
	secured.GET("/itinerary/form", handlers.Itinerary.Form)
	secured.POST("/itineraries", handlers.Itinerary.Submit, middlewarepkg.RateLimit(cfg.RateLimitItinerary))
	secured.GET("/itineraries/jobs/:id", handlers.Itinerary.JobStatus)
	secured.GET("/itineraries/:id", handlers.Itinerary.Get)
	secured.GET("/itineraries/:id/export", handlers.Itinerary.Export)

	admin := secured.Group("/admin", requireAdmin)
	admin.POST("/upload-csv", handlers.AdminUpload.UploadCSV)
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
	admin.POST("/account-roles", handlers.Directory.CreateAccountRole)
	admin.DELETE("/account-roles/:id", handlers.Directory.DeleteAccountRole)
}
