package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/climate-map-go/internal/config"
	"github.com/jengzang/climate-map-go/internal/handler"
	"github.com/jengzang/climate-map-go/internal/middleware"
)

// Handlers bundles the route handlers the router wires up.
type Handlers struct {
	Stations   *handler.StationHandler
	Series     *handler.SeriesHandler
	Sessions   *handler.SessionHandler
	Comparison *handler.ComparisonHandler
	Admin      *handler.AdminHandler
}

// SetupRouter builds the gin engine with all routes and middleware.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logger(), gin.Recovery())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Climate Map API is running",
		})
	})

	api := r.Group("/api/v1")
	{
		stations := api.Group("/stations")
		{
			stations.GET("", h.Stations.ListStations)
			stations.GET("/heatmap", h.Stations.Heatmap)
			stations.GET("/nearest", h.Stations.Nearest)
			stations.GET("/:id", h.Stations.GetStation)

			// Series loads fan out to the resource store; keep a lid on them.
			stations.GET("/:id/series/:kind",
				middleware.RateLimit(60, time.Minute), h.Series.GetSeries)
		}

		sessions := api.Group("/sessions")
		{
			sessions.POST("", h.Sessions.CreateSession)
			sessions.DELETE("/:sid", h.Sessions.DeleteSession)
			sessions.POST("/:sid/viewport", h.Sessions.SetViewport)
			sessions.POST("/:sid/mode", h.Sessions.SetMode)
			sessions.POST("/:sid/activate/:id", h.Sessions.ActivateStation)
			sessions.POST("/:sid/stations/:id/open", h.Sessions.OpenStation)

			sessions.GET("/:sid/comparison", h.Comparison.GetSelection)
			sessions.POST("/:sid/comparison", h.Comparison.AddStation)
			sessions.DELETE("/:sid/comparison", h.Comparison.Clear)
			sessions.DELETE("/:sid/comparison/:id", h.Comparison.RemoveStation)
			sessions.GET("/:sid/comparison/series", h.Comparison.GetSeries)
		}

		admin := api.Group("/admin", middleware.RequireAdmin(cfg.JWTSecret))
		{
			admin.POST("/catalog/reload", h.Admin.ReloadCatalog)
			admin.PATCH("/stations/:id/missing", h.Admin.SetMissing)
			admin.GET("/stations", h.Admin.ListStations)
			admin.GET("/sessions", h.Admin.Sessions)
		}
	}

	return r
}
