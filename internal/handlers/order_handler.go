package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"github.com/sirupsen/logrus"
)

// OrderHandler отдаёт статус заказа странице отслеживания.
type OrderHandler struct {
	orderService services.OrderService
	logger       logrus.FieldLogger
}

func NewOrderHandler(orderService services.OrderService, logger logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger.WithField("component", "order_handler"),
	}
}

// GetStatus обрабатывает GET /api/orders/:id/status.
func (h *OrderHandler) GetStatus(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order id is required")
	}

	status, err := h.orderService.GetStatus(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		h.logger.WithError(err).WithField("order_id", id).Error("failed to get order status")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, status)
}
