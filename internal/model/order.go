package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"

	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"

	// Creation stages let a reconciliation job spot orders stranded between
	// the first write and the gateway linkage write.
	StageDrafted       = "drafted"
	StageGatewayOpened = "gateway_opened"
	StageLinked        = "linked"

	PaymentMethodRazorpay = "razorpay"
)

type OrderItem struct {
	ProductID string  `bson:"productId" json:"productId"`
	Title     string  `bson:"title" json:"title"`
	Price     float64 `bson:"price" json:"price"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	Image     string  `bson:"image" json:"image"`
}

type ShippingAddress struct {
	FirstName      string `bson:"firstName" json:"firstName"`
	LastName       string `bson:"lastName" json:"lastName"`
	Address        string `bson:"address" json:"address"`
	City           string `bson:"city" json:"city"`
	State          string `bson:"state,omitempty" json:"state,omitempty"`
	PostalCode     string `bson:"postalCode" json:"postalCode"`
	Phone          string `bson:"phone,omitempty" json:"phone,omitempty"`
	SavedAddressID string `bson:"savedAddressId,omitempty" json:"savedAddressId,omitempty"`
}

// RazorpayLink is the gateway linkage block. It is written in two merges:
// orderId/amount/currency at creation time, paymentId/signature/verifiedAt at
// verification time. The union accumulates; the block is never replaced
// wholesale.
type RazorpayLink struct {
	OrderID    string     `bson:"orderId,omitempty" json:"orderId,omitempty"`
	Amount     int64      `bson:"amount,omitempty" json:"amount,omitempty"` // minor units
	Currency   string     `bson:"currency,omitempty" json:"currency,omitempty"`
	PaymentID  string     `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Signature  string     `bson:"signature,omitempty" json:"signature,omitempty"`
	VerifiedAt *time.Time `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
}

// ShiprocketLink is the carrier linkage block, written once at booking time.
type ShiprocketLink struct {
	OrderID          int64     `bson:"orderId" json:"orderId"`
	ShipmentID       int64     `bson:"shipmentId" json:"shipmentId"`
	AwbCode          string    `bson:"awbCode" json:"awbCode"`
	CourierCompanyID int64     `bson:"courierCompanyId" json:"courierCompanyId"`
	CourierName      string    `bson:"courierName" json:"courierName"`
	Status           string    `bson:"status" json:"status"`
	Raw              bson.M    `bson:"raw" json:"raw"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"userId"`
	OrderNumber string             `bson:"orderNumber,omitempty" json:"orderNumber"`

	Items    []OrderItem `bson:"items" json:"items"`
	Subtotal float64     `bson:"subtotal" json:"subtotal"`
	Discount float64     `bson:"discount" json:"discount"`
	Shipping float64     `bson:"shipping" json:"shipping"`
	Total    float64     `bson:"total" json:"total"`

	CustomerEmail    string          `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	ShippingAddress  ShippingAddress `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod    string          `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus    string          `bson:"paymentStatus" json:"paymentStatus"`
	Status           string          `bson:"status" json:"status"`
	AdminInstruction string          `bson:"adminInstruction" json:"adminInstruction"`
	CreationStage    string          `bson:"creationStage" json:"creationStage"`

	Razorpay   *RazorpayLink   `bson:"razorpay,omitempty" json:"razorpay,omitempty"`
	Shiprocket *ShiprocketLink `bson:"shiprocket,omitempty" json:"shiprocket,omitempty"`

	// ShipmentBookingAt is the booking lease: set while a carrier call is in
	// flight so a concurrent booking cannot create a second shipment.
	ShipmentBookingAt *time.Time `bson:"shipmentBookingAt,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
