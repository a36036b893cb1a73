package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"levelup-shop/internal/dto"
	"levelup-shop/internal/middleware"
	"levelup-shop/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	view, err := h.cartService.GetActiveCart(ctx, customerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	var req dto.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	view, err := h.cartService.AddItem(ctx, customerID, req.ProductID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	itemID, err := pathID(c, "itemID")
	if err != nil {
		return err
	}

	var req dto.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	view, err := h.cartService.UpdateItemQuantity(ctx, customerID, itemID, req.Quantity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	itemID, err := pathID(c, "itemID")
	if err != nil {
		return err
	}

	view, err := h.cartService.RemoveItem(ctx, customerID, itemID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	if err := h.cartService.Clear(ctx, customerID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
