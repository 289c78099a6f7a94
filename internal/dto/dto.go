// Package dto defines the request/response shapes of the HTTP boundary.
// Normalization happens here, once, before any business logic runs: strings
// are trimmed, missing titles/images default to empty, quantities clamp to
// whole units.
package dto

import (
	"strings"

	"storefront-checkout/internal/model"
)

type CreateOrderItem struct {
	ProductID string  `json:"productId"`
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
}

type AddressInput struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Address        string `json:"address"`
	City           string `json:"city"`
	State          string `json:"state"`
	PostalCode     string `json:"postalCode"`
	Phone          string `json:"phone"`
	SavedAddressID string `json:"savedAddressId"`
}

type CreateOrderRequest struct {
	Total           float64           `json:"total"`
	Subtotal        float64           `json:"subtotal"`
	Discount        float64           `json:"discount"`
	Shipping        float64           `json:"shipping"`
	Items           []CreateOrderItem `json:"items"`
	ShippingAddress AddressInput      `json:"shippingAddress"`
	CustomerEmail   string            `json:"customerEmail"`
}

type CreateOrderResponse struct {
	OrderID         string `json:"orderId"`
	OrderNumber     string `json:"orderNumber"`
	RazorpayOrderID string `json:"razorpayOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"keyId"`
}

// VerifyPaymentRequest carries the fields Razorpay's checkout hands back to
// the storefront after a payment attempt. Field names are the gateway's.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// ShipmentOverrides let the caller fill address gaps and override the
// placeholder parcel dimensions at booking time.
type ShipmentOverrides struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	State   string `json:"state"`
	Country string `json:"country"`
	Phone   string `json:"phone"`

	Length  float64 `json:"length"`
	Breadth float64 `json:"breadth"`
	Height  float64 `json:"height"`
	Weight  float64 `json:"weight"`
}

type BookShipmentRequest struct {
	OrderID   string             `json:"orderId"`
	Overrides *ShipmentOverrides `json:"overrides"`
}

type BookShipmentResponse struct {
	OK         bool                  `json:"ok"`
	Shiprocket *model.ShiprocketLink `json:"shiprocket"`
}

// Items converts the request line items into order document items. The
// productId falls back to the loose id field some storefront builds send.
func (r *CreateOrderRequest) NormalizedItems() []model.OrderItem {
	items := make([]model.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		productID := strings.TrimSpace(it.ProductID)
		if productID == "" {
			productID = strings.TrimSpace(it.ID)
		}
		qty := it.Quantity
		if qty < 0 {
			qty = 0
		}
		items = append(items, model.OrderItem{
			ProductID: productID,
			Title:     strings.TrimSpace(it.Title),
			Price:     it.Price,
			Quantity:  qty,
			Image:     strings.TrimSpace(it.Image),
		})
	}
	return items
}

func (a *AddressInput) Normalized() model.ShippingAddress {
	return model.ShippingAddress{
		FirstName:      strings.TrimSpace(a.FirstName),
		LastName:       strings.TrimSpace(a.LastName),
		Address:        strings.TrimSpace(a.Address),
		City:           strings.TrimSpace(a.City),
		State:          strings.TrimSpace(a.State),
		PostalCode:     strings.TrimSpace(a.PostalCode),
		Phone:          strings.TrimSpace(a.Phone),
		SavedAddressID: strings.TrimSpace(a.SavedAddressID),
	}
}
