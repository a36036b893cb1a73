package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"levelup-shop/internal/dto"
	"levelup-shop/internal/middleware"
	"levelup-shop/internal/service"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) Initiate(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, err := middleware.CustomerID(c)
	if err != nil {
		return err
	}

	var req dto.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.paymentService.Initiate(ctx, req.OrderID, customerID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

// Confirm is the gateway's return endpoint. Webpay redirects the buyer here
// with token_ws in the query string, via GET or POST depending on the outcome.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.QueryParam("token_ws")
	if token == "" {
		token = c.FormValue("token_ws")
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token_ws")
	}

	result, err := h.paymentService.Confirm(ctx, token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	token := c.Param("token")

	result, err := h.paymentService.Status(ctx, token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
