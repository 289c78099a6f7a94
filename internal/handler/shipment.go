package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/service"
)

type ShipmentHandler struct {
	shipmentService service.ShipmentService
}

func NewShipmentHandler(shipmentService service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{shipmentService: shipmentService}
}

func (h *ShipmentHandler) CreateShipment(c echo.Context) error {
	ctx := c.Request().Context()
	subjectID := middleware.SubjectID(c)

	var req dto.BookShipmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_argument", "message": "invalid request body"})
	}

	link, err := h.shipmentService.BookShipment(ctx, subjectID, req.OrderID, req.Overrides)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, dto.BookShipmentResponse{OK: true, Shiprocket: link})
}

func (h *ShipmentHandler) Track(c echo.Context) error {
	ctx := c.Request().Context()

	awb := c.Param("awb")
	if awb == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing_awb"})
	}

	payload, err := h.shipmentService.TrackShipment(ctx, awb)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, payload)
}
