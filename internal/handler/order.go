package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/service"
)

type OrderHandler struct {
	checkoutService service.CheckoutService
}

func NewOrderHandler(checkoutService service.CheckoutService) *OrderHandler {
	return &OrderHandler{checkoutService: checkoutService}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	subjectID := middleware.SubjectID(c)

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_argument", "message": "invalid request body"})
	}

	result, err := h.checkoutService.CreateOrder(ctx, subjectID, &req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *OrderHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()
	subjectID := middleware.SubjectID(c)
	orderID := c.Param("id")

	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_argument", "message": "invalid request body"})
	}

	if err := h.checkoutService.VerifyPayment(ctx, subjectID, orderID, &req); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	subjectID := middleware.SubjectID(c)

	order, err := h.checkoutService.GetOrder(ctx, subjectID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}
