package handlers

import (
	"os"

	"order-service/internal/orders"
	"order-service/internal/stores/kafka"
	"order-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	o        *orders.Conf
	k        *kafka.Conf // nil when kafka is disabled
	validate *validator.Validate
}

func NewHandler(o *orders.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		o:        o,
		k:        k,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, o *orders.Conf, k *kafka.Conf) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	h := NewHandler(o, k)
	r.Use(middleware.Logger(), gin.Recovery())

	r.GET("/health", HealthCheck)
	v1 := r.Group(endpointPrefix)
	{
		v1.GET("", middleware.RequireUserID(), h.ListOrders)
		v1.POST("", middleware.RequireUserID(), h.CreateOrder)
		v1.GET("/:id", h.GetOrder)
		v1.PATCH("/:id/status", h.UpdateOrderStatus)
		v1.DELETE("/:id", h.CancelOrder)
	}
	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "healthy",
		"service": "order-service",
	})
}
