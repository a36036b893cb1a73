package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"levelup-shop/internal/dto"
	"levelup-shop/internal/middleware"
	"levelup-shop/internal/model"
	"levelup-shop/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	view, err := h.orderService.CreateFromCart(ctx, customerID, req.ShippingAddress)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, view)
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	views, err := h.orderService.ListByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, views)
}

// List serves administrative listing, optionally filtered by state.
func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if state := c.QueryParam("state"); state != "" {
		views, err := h.orderService.ListByState(ctx, model.OrderState(state))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, views)
	}

	views, err := h.orderService.ListAll(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, views)
}

func (h *OrderHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	orderID, err := pathID(c, "orderID")
	if err != nil {
		return err
	}

	view, err := h.orderService.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if view.CustomerID != customerID {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	return c.JSON(http.StatusOK, view)
}

func (h *OrderHandler) ChangeState(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := pathID(c, "orderID")
	if err != nil {
		return err
	}

	var req dto.ChangeOrderStateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	view, err := h.orderService.ChangeState(ctx, orderID, req.State)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}
