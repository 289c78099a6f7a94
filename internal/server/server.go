package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"storefront-checkout/internal/handler"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/service"
)

type Server struct {
	echo            *echo.Echo
	orderHandler    *handler.OrderHandler
	shipmentHandler *handler.ShipmentHandler
	authSecret      string
}

func NewServer(
	checkoutService service.CheckoutService,
	shipmentService service.ShipmentService,
	authSecret string,
	logger *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:            e,
		orderHandler:    handler.NewOrderHandler(checkoutService),
		shipmentHandler: handler.NewShipmentHandler(shipmentService),
		authSecret:      authSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})

	api := s.echo.Group("/api", middleware.Auth(s.authSecret))

	// -------- orders / payments --------
	api.POST("/orders", s.orderHandler.CreateOrder)
	api.GET("/orders/:id", s.orderHandler.GetOrder)
	api.POST("/orders/:id/verify-payment", s.orderHandler.VerifyPayment)

	// -------- shipments --------
	shiprocket := api.Group("/shiprocket")
	shiprocket.POST("/create", s.shipmentHandler.CreateShipment)
	shiprocket.GET("/track/:awb", s.shipmentHandler.Track)
	// Without these a request with no AWB 404s before the handler runs.
	shiprocket.GET("/track", s.shipmentHandler.Track)
	shiprocket.GET("/track/", s.shipmentHandler.Track)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
