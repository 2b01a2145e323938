package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"payme-click-gateway/internal/dto"
	"payme-click-gateway/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Amount <= 0 || len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "missing amount or items")
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), req.Amount, req.Items)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.CreateOrderResponse{
		OrderID: order.OrderID,
		Amount:  order.Amount,
		Status:  order.Status,
	})
}

func (h *OrderHandler) OrderStatus(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), c.Param("orderID"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, order)
}
