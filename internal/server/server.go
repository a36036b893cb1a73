package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"levelup-shop/internal/apperr"
	"levelup-shop/internal/handler"
	"levelup-shop/internal/middleware"
	"levelup-shop/internal/service"
)

type Server struct {
	echo           *echo.Echo
	cartHandler    *handler.CartHandler
	orderHandler   *handler.OrderHandler
	paymentHandler *handler.PaymentHandler
	productHandler *handler.ProductHandler
}

func NewServer(
	cartService service.CartService,
	orderService service.OrderService,
	paymentService service.PaymentService,
	productService service.ProductService,
	jwtSecret string,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(requestLogger(logger))
	e.HTTPErrorHandler = errorHandler(logger)

	s := &Server{
		echo:           e,
		cartHandler:    handler.NewCartHandler(cartService),
		orderHandler:   handler.NewOrderHandler(orderService),
		paymentHandler: handler.NewPaymentHandler(paymentService),
		productHandler: handler.NewProductHandler(productService),
	}

	s.setupRoutes(jwtSecret)
	return s
}

func (s *Server) setupRoutes(jwtSecret string) {
	api := s.echo.Group("/api/v1")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- catalog --------
	api.GET("/products", s.productHandler.List)
	api.GET("/products/:productID", s.productHandler.GetByID)
	api.GET("/products/code/:code", s.productHandler.GetByCode)

	auth := middleware.Auth(jwtSecret)

	// -------- cart --------
	cart := api.Group("/cart", auth)
	cart.GET("", s.cartHandler.GetCart)
	cart.POST("/items", s.cartHandler.AddItem)
	cart.PUT("/items/:itemID", s.cartHandler.UpdateItem)
	cart.DELETE("/items/:itemID", s.cartHandler.RemoveItem)
	cart.DELETE("", s.cartHandler.Clear)

	// -------- orders --------
	orders := api.Group("/orders", auth)
	orders.POST("", s.orderHandler.Create)
	orders.GET("", s.orderHandler.ListMine)
	orders.GET("/:orderID", s.orderHandler.GetByID)

	admin := api.Group("/admin", auth)
	admin.GET("/orders", s.orderHandler.List)
	admin.PUT("/orders/:orderID/state", s.orderHandler.ChangeState)
	admin.POST("/products", s.productHandler.Create)
	admin.GET("/products", s.productHandler.ListAll)
	admin.PUT("/products/:productID", s.productHandler.Update)
	admin.DELETE("/products/:productID", s.productHandler.Deactivate)
	admin.PUT("/products/:productID/stock", s.productHandler.AdjustStock)

	// -------- payments --------
	payments := api.Group("/payments")
	payments.POST("/initiate", s.paymentHandler.Initiate, auth)
	payments.GET("/status/:token", s.paymentHandler.Status, auth)

	// gateway return endpoint; Webpay redirects here with token_ws
	payments.GET("/confirm", s.paymentHandler.Confirm)
	payments.POST("/confirm", s.paymentHandler.Confirm)
}

// errorHandler translates apperr kinds into HTTP statuses so services never
// deal in transport codes.
func errorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal server error"

		var httpErr *echo.HTTPError
		var appErr *apperr.Error
		switch {
		case errors.As(err, &httpErr):
			status = httpErr.Code
			msg = httpErr.Error()
			if m, ok := httpErr.Message.(string); ok {
				msg = m
			}
		case errors.As(err, &appErr):
			switch appErr.Kind {
			case apperr.KindNotFound:
				status = http.StatusNotFound
			case apperr.KindBadRequest:
				status = http.StatusBadRequest
			case apperr.KindInsufficientStock:
				status = http.StatusConflict
			case apperr.KindUnauthorized:
				status = http.StatusUnauthorized
			}
			msg = appErr.Error()
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		_ = c.JSON(status, map[string]string{"error": msg})
	}
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogMethod: true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
