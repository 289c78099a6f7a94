package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront-checkout/internal/apperr"
	"storefront-checkout/internal/config"
)

type ShiprocketClient interface {
	Login(ctx context.Context) (string, error)
	CreateShipment(ctx context.Context, token string, payload *ShipmentPayload) (*ShipmentResult, error)
	Track(ctx context.Context, token, awb string) (map[string]interface{}, error)
}

type ShipmentItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
}

// ShipmentPayload is Shiprocket's "create adhoc order" body. Field names are
// the carrier's.
type ShipmentPayload struct {
	OrderID             string         `json:"order_id"`
	OrderDate           string         `json:"order_date"`
	PickupLocation      string         `json:"pickup_location"`
	BillingCustomerName string         `json:"billing_customer_name"`
	BillingLastName     string         `json:"billing_last_name"`
	BillingAddress      string         `json:"billing_address"`
	BillingCity         string         `json:"billing_city"`
	BillingPincode      string         `json:"billing_pincode"`
	BillingState        string         `json:"billing_state"`
	BillingCountry      string         `json:"billing_country"`
	BillingEmail        string         `json:"billing_email"`
	BillingPhone        string         `json:"billing_phone"`
	ShippingIsBilling   bool           `json:"shipping_is_billing"`
	OrderItems          []ShipmentItem `json:"order_items"`
	PaymentMethod       string         `json:"payment_method"`
	SubTotal            float64        `json:"sub_total"`
	Length              float64        `json:"length"`
	Breadth             float64        `json:"breadth"`
	Height              float64        `json:"height"`
	Weight              float64        `json:"weight"`
}

type ShipmentResult struct {
	OrderID          int64
	ShipmentID       int64
	AwbCode          string
	CourierCompanyID int64
	CourierName      string
	Status           string
	// Raw is the carrier's full response, persisted alongside the parsed
	// fields for later debugging.
	Raw map[string]interface{}
}

type shiprocketClientImpl struct {
	httpClient *http.Client
	baseURL    string
	email      string
	password   string
}

func NewShiprocketClient(cfg *config.Shiprocket) ShiprocketClient {
	return &shiprocketClientImpl{
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		baseURL:  cfg.BaseURL,
		email:    cfg.Email,
		password: cfg.Password,
	}
}

func (c *shiprocketClientImpl) Login(ctx context.Context) (string, error) {
	if c.email == "" || c.password == "" {
		return "", apperr.New(apperr.FailedPrecondition, "shiprocket credentials are not configured")
	}

	body, err := json.Marshal(map[string]string{
		"email":    c.email,
		"password": c.password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/external/auth/login", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.Upstream, "shiprocket login", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", apperr.NewUpstream(resp.StatusCode, string(b), "shiprocket login failed")
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if result.Token == "" {
		return "", apperr.New(apperr.Upstream, "shiprocket login returned no token")
	}

	return result.Token, nil
}

func (c *shiprocketClientImpl) CreateShipment(ctx context.Context, token string, payload *ShipmentPayload) (*ShipmentResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal shipment payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/external/orders/create/adhoc", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "shiprocket create shipment", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read shiprocket response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperr.NewUpstream(resp.StatusCode, string(respBody), "shiprocket create shipment failed")
	}

	// Shiprocket is loose with types (ids arrive as numbers or strings, awb
	// may be null), so parse out of a generic map instead of a rigid struct.
	var raw map[string]interface{}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("decode shiprocket response: %w", err)
	}

	return &ShipmentResult{
		OrderID:          intField(raw, "order_id"),
		ShipmentID:       intField(raw, "shipment_id"),
		AwbCode:          stringField(raw, "awb_code"),
		CourierCompanyID: intField(raw, "courier_company_id"),
		CourierName:      stringField(raw, "courier_name"),
		Status:           stringField(raw, "status"),
		Raw:              raw,
	}, nil
}

func (c *shiprocketClientImpl) Track(ctx context.Context, token, awb string) (map[string]interface{}, error) {
	trackURL := c.baseURL + "/v1/external/courier/track/awb/" + url.PathEscape(awb)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.Upstream, "shiprocket track", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, apperr.NewUpstream(resp.StatusCode, string(b), "shiprocket track failed")
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode track response: %w", err)
	}

	return result, nil
}

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func intField(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	default:
		return 0
	}
}
