package server

import (
	"context"
	"net/http"

	"rentals/internal/middleware"
	"rentals/internal/modules/booking"
	"rentals/internal/modules/catalog"
	"rentals/internal/notify"
	"rentals/internal/pkg/jwt"
	"rentals/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type SweepRunner interface {
	RunOnce(ctx context.Context) (booking.SweepResult, error)
}

type Deps struct {
	JWT              *jwt.Service
	Catalog          *catalog.Handler
	Booking          *booking.Handler
	Notify           *notify.Handler
	Sweeper          SweepRunner
	CORSOrigins      []string
	InternalAPIToken string
	AccessLog        bool
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	if d.AccessLog {
		r.Use(middleware.RequestLogger())
	}
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(d.CORSOrigins))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"status": "ok"})
		})

		protected := api.Group("")
		protected.Use(middleware.JWTAuth(d.JWT))

		d.Catalog.RegisterRoutes(api, protected)
		d.Booking.RegisterRoutes(api, protected)
		if d.Notify != nil {
			d.Notify.RegisterRoutes(api)
		}

		if d.Sweeper != nil {
			internal := api.Group("/internal")
			internal.Use(middleware.InternalTokenAuth(d.InternalAPIToken))
			internal.POST("/lifecycle/sweep", func(c *gin.Context) {
				res, err := d.Sweeper.RunOnce(c.Request.Context())
				if err != nil {
					response.Internal(c, err, "Sweep failed")
					return
				}
				response.Success(c, http.StatusOK, res)
			})
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Route not found")
	})

	return r
}
