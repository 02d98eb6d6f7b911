package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"order-service/internal/orders"
	"order-service/internal/stores/kafka"
	"order-service/pkg/ctxmanage"
	"order-service/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type NewOrderRequest struct {
	Items []orders.NewOrderItem `json:"items" validate:"required,min=1,dive"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListOrders returns the caller's orders, newest first. The user-id header is
// guaranteed by middleware.
func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	userID := c.GetHeader("user-id")

	list, err := h.o.ListOrders(c.Request.Context(), userID)
	if err != nil {
		slog.Error("error fetching orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	order, err := h.o.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
			return
		}
		slog.Error("error fetching order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// CreateOrder validates the requested items against inventory and commits the
// order. The 201 response carries the pending order; stock settlement
// happens after the response, off the request goroutine.
func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	userID := c.GetHeader("user-id")

	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId),
			slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "Request body too large."})
		return
	}

	var req NewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "Order items are required"})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "Order items are required"})
		return
	}

	order, err := h.o.CreateOrder(c.Request.Context(), traceId, userID, req.Items)
	if err != nil {
		var vErr *orders.ValidationError
		if errors.As(err, &vErr) {
			slog.Error("order validation failed", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, vErr.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": vErr.Error()})
			return
		}
		slog.Error("error creating order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, userID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create order"})
		return
	}

	h.publishOrderCreated(traceId, order)

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": order})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false,
			"error": (&orders.StatusValueError{}).Error()})
		return
	}

	order, err := h.o.UpdateOrderStatus(c.Request.Context(), orderID, orders.Status(req.Status))
	if err != nil {
		var statusErr *orders.StatusValueError
		var transitionErr *orders.TransitionError
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
		case errors.As(err, &statusErr), errors.As(err, &transitionErr):
			slog.Error("status update rejected", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		default:
			slog.Error("error updating order status", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update order status"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	order, err := h.o.CancelOrder(c.Request.Context(), traceId, orderID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "error": "Order not found"})
		case errors.Is(err, orders.ErrNotPending):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "Only pending orders can be cancelled"})
		default:
			slog.Error("error cancelling order", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to cancel order"})
		}
		return
	}

	h.publishOrderCancelled(traceId, order)

	c.JSON(http.StatusOK, gin.H{"success": true, "data": order})
}

// publishOrderCreated emits the created event in the background. Event
// delivery is best effort and never affects the response.
func (h *Handler) publishOrderCreated(traceId string, order orders.Order) {
	if h.k == nil {
		return
	}
	go func() {
		jsonData, err := json.Marshal(kafka.OrderCreatedEvent{
			OrderId:     order.ID,
			UserId:      order.UserID,
			TotalAmount: order.TotalAmount,
			CreatedAt:   order.CreatedAt,
		})
		if err != nil {
			slog.Error("failed to marshal OrderCreatedEvent", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderCreated, []byte(order.ID), jsonData); err != nil {
			slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
		}
	}()
}

func (h *Handler) publishOrderCancelled(traceId string, order orders.Order) {
	if h.k == nil {
		return
	}
	go func() {
		jsonData, err := json.Marshal(kafka.OrderCancelledEvent{
			OrderId:     order.ID,
			UserId:      order.UserID,
			CancelledAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Error("failed to marshal OrderCancelledEvent", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderCancelled, []byte(order.ID), jsonData); err != nil {
			slog.Error("failed to produce message", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
		}
	}()
}
