// Package testutil provides fixtures shared by the integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/domain/shared"
)

// TestAccount is the seller account used by fixtures
const TestAccount marketplace.Account = "shop-a"

// OrderItemOption customises a fixture order item
type OrderItemOption func(*marketplace.OrderItem)

// WithAccount sets the owning account
func WithAccount(account marketplace.Account) OrderItemOption {
	return func(i *marketplace.OrderItem) {
		i.Account = account
	}
}

// WithEAN sets the product identifier
func WithEAN(ean string) OrderItemOption {
	return func(i *marketplace.OrderItem) {
		i.EAN = ean
	}
}

// WithPrice sets quantity and unit price
func WithPrice(quantity int, unitPrice string) OrderItemOption {
	return func(i *marketplace.OrderItem) {
		i.Quantity = quantity
		i.UnitPrice = decimal.RequireFromString(unitPrice)
	}
}

// NewOrderItem returns a valid, unfulfilled order item
func NewOrderItem(orderID, orderItemID string, opts ...OrderItemOption) marketplace.OrderItem {
	placed := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	delivery := placed.AddDate(0, 0, 2)
	item := marketplace.OrderItem{
		BaseEntity:    shared.NewBaseEntity(),
		OrderItemID:   orderItemID,
		OrderID:       orderID,
		Account:       TestAccount,
		OrderPlacedAt: &placed,
		Shipping: marketplace.ShippingAddress{
			Address: marketplace.Address{
				FirstName:   "Jan",
				Surname:     "Jansen",
				StreetName:  "Dorpsstraat",
				HouseNumber: "1",
				ZipCode:     "1234AB",
				City:        "Utrecht",
				CountryCode: "NL",
			},
			Email: "jan@example.com",
		},
		Billing: marketplace.BillingAddress{
			Address: marketplace.Address{FirstName: "Jan", Surname: "Jansen", City: "Utrecht", CountryCode: "NL"},
		},
		EAN:        "8712345678906",
		OfferID:    "offer-" + orderItemID,
		Title:      "Espresso cup",
		Quantity:   2,
		UnitPrice:  decimal.RequireFromString("12.50"),
		Commission: decimal.RequireFromString("1.85"),
		Fulfilment: marketplace.Fulfilment{
			Method:             "FBR",
			LatestDeliveryDate: &delivery,
		},
		ImageURL:    "https://media.example/8712345678906.jpg",
		ProcessedAt: placed,
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
