package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/middleware"
	"storefront-checkout/internal/model"
)

type stubCheckoutService struct {
	createResp *dto.CreateOrderResponse
	createErr  error
	verifyErr  error
	order      *model.Order
	getErr     error
}

func (s *stubCheckoutService) CreateOrder(ctx context.Context, subjectID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.createResp, nil
}

func (s *stubCheckoutService) VerifyPayment(ctx context.Context, subjectID, orderID string, req *dto.VerifyPaymentRequest) error {
	return s.verifyErr
}

func (s *stubCheckoutService) GetOrder(ctx context.Context, subjectID, orderID string) (*model.Order, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.order, nil
}

func TestCreateOrderHandler_Created(t *testing.T) {
	e := echo.New()
	h := NewOrderHandler(&stubCheckoutService{createResp: &dto.CreateOrderResponse{
		OrderID:         "abc",
		OrderNumber:     "ORD-ABC12345",
		RazorpayOrderID: "order_gw1",
		Amount:          50000,
		Currency:        "INR",
		KeyID:           "rzp_key",
	}})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"total":500,"items":[{"productId":"p1"}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.SubjectKey, "u1")

	h.CreateOrder(c)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var resp dto.CreateOrderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RazorpayOrderID != "order_gw1" || resp.KeyID != "rzp_key" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateOrderHandler_InvalidBody(t *testing.T) {
	e := echo.New()
	h := NewOrderHandler(&stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h.CreateOrder(c)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestVerifyPaymentHandler_OK(t *testing.T) {
	e := echo.New()
	h := NewOrderHandler(&stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/abc/verify-payment",
		strings.NewReader(`{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"s"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set(middleware.SubjectKey, "u1")

	h.VerifyPayment(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &body)
	if !body["ok"] {
		t.Errorf("body = %s, want ok:true", rec.Body.String())
	}
}

func TestVerifyPaymentHandler_BadSignature(t *testing.T) {
	e := echo.New()
	h := NewOrderHandler(&stubCheckoutService{
		verifyErr: apperr.New(apperr.PermissionDenied, "Invalid payment signature"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/orders/abc/verify-payment",
		strings.NewReader(`{"razorpay_order_id":"o","razorpay_payment_id":"p","razorpay_signature":"bad"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set(middleware.SubjectKey, "u1")

	h.VerifyPayment(c)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["message"] != "Invalid payment signature" {
		t.Errorf("message = %v", body["message"])
	}
}
