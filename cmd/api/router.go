package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grocery-backend/internal/infrastructure/database"
	"grocery-backend/internal/shared/middleware"
	"grocery-backend/internal/shared/response"
	"grocery-backend/pkg/container"
)

func newRouter(c *container.Container) *gin.Engine {
	if c.Config.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	r.GET("/health", func(ctx *gin.Context) {
		if err := database.HealthCheck(ctx.Request.Context(), c.Pool); err != nil {
			response.Error(ctx, http.StatusServiceUnavailable, "Unhealthy", err.Error())
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.RequireAuth(c.JWT)
	v1 := r.Group("/api/v1")

	products := v1.Group("/products")
	{
		products.GET("", c.ProductHandler.List)
		products.GET("/export", c.ProductHandler.Export)
		products.GET("/exists", c.ProductHandler.CheckName)
		products.GET("/:key", c.ProductHandler.Get)
		products.GET("/:key/prices", c.ProductHandler.GetAllPrices)

		products.POST("", auth, c.ProductHandler.Create)
		products.PATCH("/:key", auth, c.ProductHandler.Update)
		products.PATCH("/:key/hide", auth, c.ProductHandler.Hide)
		products.PATCH("/:key/show", auth, c.ProductHandler.Show)
		products.DELETE("/:key", auth, c.ProductHandler.Remove)
	}

	prices := v1.Group("/price-histories")
	{
		prices.GET("", c.PriceHistoryHandler.List)
		prices.GET("/:id", c.PriceHistoryHandler.Get)
		prices.GET("/product/:productId", c.PriceHistoryHandler.ListByProduct)
		prices.POST("", auth, c.PriceHistoryHandler.Create)
	}

	users := v1.Group("/users")
	{
		users.POST("/register", c.UserHandler.Register)
		users.POST("/login", c.UserHandler.Login)

		users.GET("/me", auth, c.UserHandler.Me)
		users.GET("", auth, c.UserHandler.List)
		users.GET("/:id", auth, c.UserHandler.Get)
		users.PATCH("/:id", auth, c.UserHandler.Update)
		users.DELETE("/:id", auth, c.UserHandler.Remove)
	}

	return r
}
