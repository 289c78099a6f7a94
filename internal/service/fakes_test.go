package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/client"
	"storefront-checkout/internal/model"
)

// fakeOrderRepo applies the same merge semantics as the Mongo implementation
// against an in-memory map.
type fakeOrderRepo struct {
	orders map[string]*model.Order

	createErr error
	mergeErr  error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]*model.Order{}}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *model.Order) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID.Hex()] = order
	return order.ID.Hex(), nil
}

func (f *fakeOrderRepo) Get(ctx context.Context, id string) (*model.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	return order, nil
}

func (f *fakeOrderRepo) SetOrderNumber(ctx context.Context, id, orderNumber string) error {
	order, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	order.OrderNumber = orderNumber
	order.UpdatedAt = time.Now()
	return nil
}

func (f *fakeOrderRepo) SetGatewayLink(ctx context.Context, id string, link *model.RazorpayLink) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	order, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Razorpay == nil {
		order.Razorpay = &model.RazorpayLink{}
	}
	order.Razorpay.OrderID = link.OrderID
	order.Razorpay.Amount = link.Amount
	order.Razorpay.Currency = link.Currency
	order.CreationStage = model.StageLinked
	order.UpdatedAt = time.Now()
	return nil
}

func (f *fakeOrderRepo) MarkPaid(ctx context.Context, id, paymentID, signature string, verifiedAt time.Time) error {
	order, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Razorpay == nil {
		order.Razorpay = &model.RazorpayLink{}
	}
	order.PaymentStatus = model.PaymentStatusPaid
	order.Status = model.StatusProcessing
	order.Razorpay.PaymentID = paymentID
	order.Razorpay.Signature = signature
	order.Razorpay.VerifiedAt = &verifiedAt
	order.UpdatedAt = time.Now()
	return nil
}

func (f *fakeOrderRepo) SetShipment(ctx context.Context, id string, link *model.ShiprocketLink) error {
	order, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	order.Shiprocket = link
	order.Status = model.StatusProcessing
	order.ShipmentBookingAt = nil
	order.UpdatedAt = time.Now()
	return nil
}

func (f *fakeOrderRepo) AcquireBookingLease(ctx context.Context, id string, now time.Time) (bool, error) {
	order, err := f.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if order.Shiprocket != nil {
		return false, nil
	}
	if order.ShipmentBookingAt != nil && now.Sub(*order.ShipmentBookingAt) < 2*time.Minute {
		return false, nil
	}
	order.ShipmentBookingAt = &now
	return true, nil
}

func (f *fakeOrderRepo) ReleaseBookingLease(ctx context.Context, id string) error {
	order, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	order.ShipmentBookingAt = nil
	return nil
}

func (f *fakeOrderRepo) Merge(ctx context.Context, id string, fields map[string]interface{}) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	order, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	for k, v := range fields {
		switch k {
		case "orderNumber":
			order.OrderNumber = v.(string)
		case "creationStage":
			order.CreationStage = v.(string)
		default:
			return fmt.Errorf("fakeOrderRepo: unhandled merge key %q", k)
		}
	}
	order.UpdatedAt = time.Now()
	return nil
}

type gatewayCall struct {
	amountMinor int64
	currency    string
	receipt     string
	notes       map[string]string
}

type fakeGateway struct {
	calls []gatewayCall
	err   error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*client.GatewayOrder, error) {
	f.calls = append(f.calls, gatewayCall{amountMinor, currency, receipt, notes})
	if f.err != nil {
		return nil, f.err
	}
	return &client.GatewayOrder{
		ID:       "order_gw1",
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

type fakeShipper struct {
	payloads    []*client.ShipmentPayload
	result      *client.ShipmentResult
	createErr   error
	trackResult map[string]interface{}
}

func (f *fakeShipper) Login(ctx context.Context) (string, error) {
	return "sr-token", nil
}

func (f *fakeShipper) CreateShipment(ctx context.Context, token string, payload *client.ShipmentPayload) (*client.ShipmentResult, error) {
	f.payloads = append(f.payloads, payload)
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &client.ShipmentResult{
		OrderID:     411715,
		ShipmentID:  411501,
		AwbCode:     "AWB123",
		CourierName: "Delhivery",
		Status:      "NEW",
		Raw:         map[string]interface{}{"order_id": float64(411715)},
	}, nil
}

func (f *fakeShipper) Track(ctx context.Context, token, awb string) (map[string]interface{}, error) {
	if f.trackResult != nil {
		return f.trackResult, nil
	}
	return map[string]interface{}{"awb": awb}, nil
}

type fakeTokens struct {
	err error
}

func (f *fakeTokens) Token(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "sr-token", nil
}
