package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/model"
)

// bookingLeaseTTL bounds how long a crashed booking holds the lease before a
// retry may claim it.
const bookingLeaseTTL = 2 * time.Minute

// OrderRepository wraps the orders collection. Every mutation is a
// merge-write (partial $set) stamping updatedAt, never a wholesale replace,
// so unrelated concurrent field writes are not clobbered. No delete exists.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (string, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	SetOrderNumber(ctx context.Context, id, orderNumber string) error
	SetGatewayLink(ctx context.Context, id string, link *model.RazorpayLink) error
	MarkPaid(ctx context.Context, id, paymentID, signature string, verifiedAt time.Time) error
	SetShipment(ctx context.Context, id string, link *model.ShiprocketLink) error
	AcquireBookingLease(ctx context.Context, id string, now time.Time) (bool, error)
	ReleaseBookingLease(ctx context.Context, id string) error
	Merge(ctx context.Context, id string, fields map[string]interface{}) error
}

type orderRepoImpl struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &orderRepoImpl{
		collection: db.Collection("orders"),
		now:        time.Now,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) (string, error) {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := r.now()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	return order.ID.Hex(), nil
}

func (r *orderRepoImpl) Get(ctx context.Context, id string) (*model.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}

	var order model.Order
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	return &order, nil
}

func (r *orderRepoImpl) SetOrderNumber(ctx context.Context, id, orderNumber string) error {
	return r.Merge(ctx, id, map[string]interface{}{"orderNumber": orderNumber})
}

func (r *orderRepoImpl) SetGatewayLink(ctx context.Context, id string, link *model.RazorpayLink) error {
	return r.Merge(ctx, id, map[string]interface{}{
		"razorpay.orderId":  link.OrderID,
		"razorpay.amount":   link.Amount,
		"razorpay.currency": link.Currency,
		"creationStage":     model.StageLinked,
	})
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, id, paymentID, signature string, verifiedAt time.Time) error {
	// Dotted paths so the creation-time orderId/amount/currency survive.
	return r.Merge(ctx, id, map[string]interface{}{
		"paymentStatus":       model.PaymentStatusPaid,
		"status":              model.StatusProcessing,
		"razorpay.paymentId":  paymentID,
		"razorpay.signature":  signature,
		"razorpay.verifiedAt": verifiedAt,
	})
}

func (r *orderRepoImpl) SetShipment(ctx context.Context, id string, link *model.ShiprocketLink) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.New(apperr.NotFound, "order not found")
	}

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"shiprocket": link,
			"status":     model.StatusProcessing,
			"updatedAt":  r.now(),
		},
		"$unset": bson.M{"shipmentBookingAt": ""},
	})
	if err != nil {
		return fmt.Errorf("merge shipment: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "order not found")
	}
	return nil
}

// AcquireBookingLease claims the per-order booking slot with a conditional
// write: it only succeeds when no shiprocket block exists and no live lease
// is held. Returns false when another booking holds the slot.
func (r *orderRepoImpl) AcquireBookingLease(ctx context.Context, id string, now time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, apperr.New(apperr.NotFound, "order not found")
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{
			"_id":        oid,
			"shiprocket": bson.M{"$exists": false},
			"$or": bson.A{
				bson.M{"shipmentBookingAt": bson.M{"$exists": false}},
				bson.M{"shipmentBookingAt": bson.M{"$lt": now.Add(-bookingLeaseTTL)}},
			},
		},
		bson.M{"$set": bson.M{"shipmentBookingAt": now, "updatedAt": r.now()}},
	)
	if err != nil {
		return false, fmt.Errorf("acquire booking lease: %w", err)
	}

	return res.MatchedCount > 0, nil
}

func (r *orderRepoImpl) ReleaseBookingLease(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.New(apperr.NotFound, "order not found")
	}

	_, err = r.collection.UpdateByID(ctx, oid, bson.M{
		"$unset": bson.M{"shipmentBookingAt": ""},
		"$set":   bson.M{"updatedAt": r.now()},
	})
	if err != nil {
		return fmt.Errorf("release booking lease: %w", err)
	}
	return nil
}

func (r *orderRepoImpl) Merge(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.New(apperr.NotFound, "order not found")
	}

	set := bson.M{"updatedAt": r.now()}
	for k, v := range fields {
		set[k] = v
	}

	res, err := r.collection.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("merge order: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "order not found")
	}
	return nil
}
