package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/client"
	"storefront-checkout/internal/dto"
	"storefront-checkout/internal/model"
	"storefront-checkout/internal/repository"
)

// Placeholder parcel dimensions used when the caller does not override them.
const (
	defaultLength  = 10.0
	defaultBreadth = 10.0
	defaultHeight  = 5.0
	defaultWeight  = 0.5
)

// TokenSource hands out a live carrier bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type ShipmentService interface {
	BookShipment(ctx context.Context, subjectID, orderID string, overrides *dto.ShipmentOverrides) (*model.ShiprocketLink, error)
	TrackShipment(ctx context.Context, awb string) (map[string]interface{}, error)
}

type shipmentServiceImpl struct {
	orderRepo      repository.OrderRepository
	carrier        client.ShiprocketClient
	tokens         TokenSource
	pickupLocation string
	logger         *zap.Logger
	now            func() time.Time
}

func NewShipmentService(
	orderRepo repository.OrderRepository,
	carrier client.ShiprocketClient,
	tokens TokenSource,
	pickupLocation string,
	logger *zap.Logger,
) ShipmentService {
	return &shipmentServiceImpl{
		orderRepo:      orderRepo,
		carrier:        carrier,
		tokens:         tokens,
		pickupLocation: pickupLocation,
		logger:         logger,
		now:            time.Now,
	}
}

// BookShipment books a courier shipment for a paid order. Preconditions run
// in order, first failure wins; the carrier is only reached once the booking
// lease is held, so two concurrent calls cannot create two shipments.
func (s *shipmentServiceImpl) BookShipment(ctx context.Context, subjectID, orderID string, overrides *dto.ShipmentOverrides) (*model.ShiprocketLink, error) {
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
	if order.PaymentStatus != model.PaymentStatusPaid {
		return nil, apperr.New(apperr.FailedPrecondition,
			"Shiprocket order can be created only after payment is paid")
	}
	if order.Shiprocket != nil {
		return nil, apperr.New(apperr.FailedPrecondition, "Shipment already booked")
	}

	if overrides == nil {
		overrides = &dto.ShipmentOverrides{}
	}

	addr, missing := deriveAddress(&order.ShippingAddress, overrides)
	if len(missing) > 0 {
		return nil, apperr.New(apperr.InvalidArgument, "Missing address fields").WithDetails(missing)
	}

	if len(order.Items) == 0 {
		return nil, apperr.New(apperr.Internal, "Order has no items")
	}

	acquired, err := s.orderRepo.AcquireBookingLease(ctx, orderID, s.now())
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperr.New(apperr.FailedPrecondition, "Shipment booking already in progress")
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.releaseLease(ctx, orderID)
		return nil, err
	}

	payload := s.buildPayload(order, addr, overrides)

	result, err := s.carrier.CreateShipment(ctx, token, payload)
	if err != nil {
		s.releaseLease(ctx, orderID)
		s.logger.Error("carrier shipment creation failed",
			zap.String("orderId", orderID), zap.Error(err))
		return nil, err
	}

	link := &model.ShiprocketLink{
		OrderID:          result.OrderID,
		ShipmentID:       result.ShipmentID,
		AwbCode:          result.AwbCode,
		CourierCompanyID: result.CourierCompanyID,
		CourierName:      result.CourierName,
		Status:           "created",
		Raw:              result.Raw,
		CreatedAt:        s.now(),
	}

	if err := s.orderRepo.SetShipment(ctx, orderID, link); err != nil {
		return nil, err
	}

	s.logger.Info("shipment booked",
		zap.String("orderId", orderID),
		zap.Int64("shipmentId", link.ShipmentID),
		zap.String("awbCode", link.AwbCode))

	return link, nil
}

func (s *shipmentServiceImpl) TrackShipment(ctx context.Context, awb string) (map[string]interface{}, error) {
	if awb == "" {
		return nil, apperr.New(apperr.InvalidArgument, "missing_awb")
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	return s.carrier.Track(ctx, token, awb)
}

func (s *shipmentServiceImpl) releaseLease(ctx context.Context, orderID string) {
	if err := s.orderRepo.ReleaseBookingLease(ctx, orderID); err != nil {
		s.logger.Warn("could not release booking lease",
			zap.String("orderId", orderID), zap.Error(err))
	}
}

type deliveryAddress struct {
	address string
	city    string
	pincode string
	state   string
	phone   string
	country string
}

// deriveAddress resolves each delivery field from the override, falling back
// to the order's shipping address, and reports every field still empty after
// trimming.
func deriveAddress(sa *model.ShippingAddress, ov *dto.ShipmentOverrides) (*deliveryAddress, map[string]bool) {
	addr := &deliveryAddress{
		address: firstNonEmpty(ov.Address, sa.Address),
		city:    firstNonEmpty(ov.City, sa.City),
		pincode: firstNonEmpty(ov.Pincode, sa.PostalCode),
		state:   firstNonEmpty(ov.State, sa.State),
		phone:   firstNonEmpty(ov.Phone, sa.Phone),
		country: firstNonEmpty(ov.Country, "India"),
	}

	missing := map[string]bool{}
	if addr.address == "" {
		missing["address"] = true
	}
	if addr.city == "" {
		missing["city"] = true
	}
	if addr.pincode == "" {
		missing["pincode"] = true
	}
	if addr.state == "" {
		missing["state"] = true
	}
	if addr.phone == "" {
		missing["phone"] = true
	}
	if len(missing) > 0 {
		return nil, missing
	}

	return addr, nil
}

func (s *shipmentServiceImpl) buildPayload(order *model.Order, addr *deliveryAddress, ov *dto.ShipmentOverrides) *client.ShipmentPayload {
	customerName := strings.TrimSpace(order.ShippingAddress.FirstName + " " + order.ShippingAddress.LastName)
	if customerName == "" {
		customerName = "Customer"
	}

	carrierOrderID := order.OrderNumber
	if carrierOrderID == "" {
		// Order number may lag the creation write; the epoch fallback keeps
		// the carrier reference unique.
		carrierOrderID = fmt.Sprintf("ORD-%d", s.now().UnixMilli())
	}

	items := make([]client.ShipmentItem, 0, len(order.Items))
	for _, it := range order.Items {
		sku := firstNonEmpty(it.ProductID, it.Title, "sku")
		name := firstNonEmpty(it.Title, "Item")
		units := it.Quantity
		if units < 1 {
			units = 1
		}
		items = append(items, client.ShipmentItem{
			Name:         name,
			SKU:          sku,
			Units:        units,
			SellingPrice: it.Price,
		})
	}

	return &client.ShipmentPayload{
		OrderID:             carrierOrderID,
		OrderDate:           s.now().Format("2006-01-02 15:04:05"),
		PickupLocation:      s.pickupLocation,
		BillingCustomerName: customerName,
		BillingLastName:     strings.TrimSpace(order.ShippingAddress.LastName),
		BillingAddress:      addr.address,
		BillingCity:         addr.city,
		BillingPincode:      addr.pincode,
		BillingState:        addr.state,
		BillingCountry:      addr.country,
		BillingEmail:        order.CustomerEmail,
		BillingPhone:        addr.phone,
		ShippingIsBilling:   true,
		OrderItems:          items,
		// This flow never books COD; collection already happened through the
		// gateway.
		PaymentMethod: "Prepaid",
		SubTotal:      order.Total,
		Length:        positiveOr(ov.Length, defaultLength),
		Breadth:       positiveOr(ov.Breadth, defaultBreadth),
		Height:        positiveOr(ov.Height, defaultHeight),
		Weight:        positiveOr(ov.Weight, defaultWeight),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}
