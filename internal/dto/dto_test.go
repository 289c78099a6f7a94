package dto

import "testing"

func TestNormalizedItems(t *testing.T) {
	req := &CreateOrderRequest{
		Items: []CreateOrderItem{
			{ProductID: "  p1 ", Title: " Mug ", Price: 500, Quantity: 1, Image: " img.png "},
			{ID: "p2", Title: "Bowl", Price: 200, Quantity: -3},
		},
	}

	items := req.NormalizedItems()

	if items[0].ProductID != "p1" || items[0].Title != "Mug" || items[0].Image != "img.png" {
		t.Errorf("trimming failed: %+v", items[0])
	}
	if items[1].ProductID != "p2" {
		t.Errorf("productId fallback to id failed: %q", items[1].ProductID)
	}
	if items[1].Quantity != 0 {
		t.Errorf("negative quantity should clamp to 0, got %d", items[1].Quantity)
	}
}

func TestAddressNormalized(t *testing.T) {
	in := AddressInput{
		FirstName:  " Asha ",
		City:       " Bengaluru",
		PostalCode: "560001 ",
	}

	got := in.Normalized()
	if got.FirstName != "Asha" || got.City != "Bengaluru" || got.PostalCode != "560001" {
		t.Errorf("trimming failed: %+v", got)
	}
}
