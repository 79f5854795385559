package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/romanchykov-webdev/pizzeria/internal/auth"
	"github.com/romanchykov-webdev/pizzeria/internal/models"
	"github.com/romanchykov-webdev/pizzeria/internal/services"
	"github.com/sirupsen/logrus"
)

// AdminHandler обрабатывает запросы админ-панели.
type AdminHandler struct {
	userService  services.UserService
	orderService services.OrderService
	tokenTTL     time.Duration
	logger       logrus.FieldLogger
}

// NewAdminHandler создаёт новый экземпляр AdminHandler.
func NewAdminHandler(userService services.UserService, orderService services.OrderService, tokenTTL time.Duration, logger logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{
		userService:  userService,
		orderService: orderService,
		tokenTTL:     tokenTTL,
		logger:       logger.WithField("component", "admin_handler"),
	}
}

// Login обрабатывает POST /api/admin/login.
func (h *AdminHandler) Login(c echo.Context) error {
	var req models.LoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	user, token, err := h.userService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, services.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid login or password")
		}
		h.logger.WithError(err).Error("failed to login admin")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	h.setAuthToken(c, token)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user_id": user.ID,
		"login":   user.Login,
		"role":    user.Role,
		"token":   token,
	})
}

// ListOrders обрабатывает GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	filter := models.OrderFilter{Status: models.OrderStatus(c.QueryParam("status"))}

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		return err
	}

	orders, err := h.orderService.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to list orders")
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder обрабатывает GET /api/admin/orders/:id.
func (h *AdminHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.orderError(err, "failed to get order")
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteOrder обрабатывает DELETE /api/admin/orders/:id.
func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	if err := h.orderService.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return h.orderError(err, "failed to delete order")
	}

	h.logger.WithFields(logrus.Fields{
		"order_id": c.Param("id"),
		"admin":    c.Get(string(auth.UserLoginKey)),
	}).Info("order deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) orderError(err error, msg string) error {
	if errors.Is(err, services.ErrOrderNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	h.logger.WithError(err).Error(msg)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// setAuthToken устанавливает токен в cookie и заголовок ответа.
func (h *AdminHandler) setAuthToken(c echo.Context, token string) {
	ttl := h.tokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
	})

	c.Response().Header().Set("Authorization", "Bearer "+token)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}
