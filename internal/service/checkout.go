package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/client"
	"storefront-checkout/internal/config"
	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

type CheckoutService interface {
	CreateOrder(ctx context.Context, subjectID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, subjectID, orderID string, req *dto.VerifyPaymentRequest) error
	GetOrder(ctx context.Context, subjectID, orderID string) (*model.Order, error)
}

type checkoutServiceImpl struct {
	orderRepo repository.OrderRepository
	gateway   client.RazorpayClient
	keyID     string
	keySecret string
	currency  string
	logger    *zap.Logger
	now       func() time.Time
}

func NewCheckoutService(
	orderRepo repository.OrderRepository,
	gateway client.RazorpayClient,
	gatewayCfg *config.Razorpay,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		orderRepo: orderRepo,
		gateway:   gateway,
		keyID:     gatewayCfg.KeyID,
		keySecret: gatewayCfg.KeySecret,
		currency:  gatewayCfg.Currency,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateOrder persists a pending order, derives the human order number and
// opens the gateway order. The client-supplied totals are taken as-is; this
// service does not recompute pricing. A failure after the first write leaves
// the order in creationStage drafted/gateway_opened for reconciliation.
func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, subjectID string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if subjectID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Sign in to place an order")
	}
	if math.IsNaN(req.Total) || math.IsInf(req.Total, 0) || req.Total <= 0 {
		return nil, apperr.New(apperr.InvalidArgument, "Invalid order total")
	}
	if len(req.Items) == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "Cart is empty")
	}
	if s.keyID == "" || s.keySecret == "" {
		return nil, apperr.New(apperr.FailedPrecondition, "Payment gateway is not configured")
	}

	order := &model.Order{
		UserID:           subjectID,
		Items:            req.NormalizedItems(),
		Subtotal:         req.Subtotal,
		Discount:         req.Discount,
		Shipping:         req.Shipping,
		Total:            req.Total,
		CustomerEmail:    strings.TrimSpace(req.CustomerEmail),
		ShippingAddress:  req.ShippingAddress.Normalized(),
		PaymentMethod:    model.PaymentMethodRazorpay,
		PaymentStatus:    model.PaymentStatusPending,
		Status:           model.StatusPending,
		AdminInstruction: "",
		CreationStage:    model.StageDrafted,
	}

	orderID, err := s.orderRepo.Create(ctx, order)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not create order", err)
	}

	orderNumber := deriveOrderNumber(orderID)
	if err := s.orderRepo.SetOrderNumber(ctx, orderID, orderNumber); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not assign order number", err)
	}

	// Marked before the gateway call so a crash in between is
	// distinguishable from an order whose gateway call never started.
	if err := s.orderRepo.Merge(ctx, orderID, map[string]interface{}{
		"creationStage": model.StageGatewayOpened,
	}); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not stage order", err)
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx,
		client.ToMinorUnits(req.Total),
		s.currency,
		orderID,
		map[string]string{
			"orderId":     orderID,
			"orderNumber": orderNumber,
		},
	)
	if err != nil {
		s.logger.Error("gateway order creation failed",
			zap.String("orderId", orderID), zap.Error(err))
		return nil, err
	}

	if err := s.orderRepo.SetGatewayLink(ctx, orderID, &model.RazorpayLink{
		OrderID:  gatewayOrder.ID,
		Amount:   gatewayOrder.Amount,
		Currency: gatewayOrder.Currency,
	}); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "could not link gateway order", err)
	}

	s.logger.Info("order created",
		zap.String("orderId", orderID),
		zap.String("orderNumber", orderNumber),
		zap.String("razorpayOrderId", gatewayOrder.ID),
		zap.Int64("amount", gatewayOrder.Amount))

	return &dto.CreateOrderResponse{
		OrderID:         orderID,
		OrderNumber:     orderNumber,
		RazorpayOrderID: gatewayOrder.ID,
		Amount:          gatewayOrder.Amount,
		Currency:        gatewayOrder.Currency,
		KeyID:           s.keyID,
	}, nil
}

// VerifyPayment recomputes the callback signature and, when it matches and
// the caller owns the order, transitions it to paid/Processing. The signature
// check runs before any read so a forged callback touches nothing.
func (s *checkoutServiceImpl) VerifyPayment(ctx context.Context, subjectID, orderID string, req *dto.VerifyPaymentRequest) error {
	if subjectID == "" {
		return apperr.New(apperr.Unauthenticated, "Sign in to verify a payment")
	}
	if orderID == "" || req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return apperr.New(apperr.InvalidArgument, "Missing payment details")
	}

	ok, err := client.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, s.keySecret)
	if err != nil {
		return apperr.Wrap(apperr.FailedPrecondition, "Payment gateway is not configured", err)
	}
	if !ok {
		return apperr.New(apperr.PermissionDenied, "Invalid payment signature")
	}

	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != subjectID {
		return apperr.New(apperr.PermissionDenied, "Not allowed")
	}

	if err := s.orderRepo.MarkPaid(ctx, orderID, req.RazorpayPaymentID, req.RazorpaySignature, s.now()); err != nil {
		return err
	}

	s.logger.Info("payment verified",
		zap.String("orderId", orderID),
		zap.String("razorpayPaymentId", req.RazorpayPaymentID))

	return nil
}

func (s *checkoutServiceImpl) GetOrder(ctx context.Context, subjectID, orderID string) (*model.Order, error) {
	if subjectID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Sign in to view orders")
	}
	if orderID == "" {
		return nil, apperr.New(apperr.InvalidArgument, "orderId is required")
	}

	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != subjectID {
		return nil, apperr.New(apperr.PermissionDenied, "Not allowed")
	}

	return order, nil
}

// deriveOrderNumber builds the human-facing code from the document id:
// ORD- plus the first 8 hex characters, upper-cased.
func deriveOrderNumber(orderID string) string {
	short := orderID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("ORD-%s", strings.ToUpper(short))
}
