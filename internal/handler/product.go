package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"levelup-shop/internal/dto"
	"levelup-shop/internal/service"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	view, err := h.productService.Create(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, view)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := pathID(c, "productID")
	if err != nil {
		return err
	}

	var req dto.ProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	view, err := h.productService.Update(ctx, productID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *ProductHandler) Deactivate(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := pathID(c, "productID")
	if err != nil {
		return err
	}

	if err := h.productService.Deactivate(ctx, productID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	if keyword := c.QueryParam("q"); keyword != "" {
		views, err := h.productService.Search(ctx, keyword)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, views)
	}

	views, err := h.productService.ListActive(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, views)
}

func (h *ProductHandler) ListAll(c echo.Context) error {
	ctx := c.Request().Context()

	views, err := h.productService.ListAll(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, views)
}

func (h *ProductHandler) GetByID(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := pathID(c, "productID")
	if err != nil {
		return err
	}

	view, err := h.productService.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *ProductHandler) GetByCode(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.productService.GetByCode(ctx, c.Param("code"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}

func (h *ProductHandler) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()

	productID, err := pathID(c, "productID")
	if err != nil {
		return err
	}

	var req dto.AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	view, err := h.productService.AdjustStock(ctx, productID, req.Delta)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, view)
}
