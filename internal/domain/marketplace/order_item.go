package marketplace

import (
	"fmt"
	"strings"
	"time"

	"github.com/shipdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// FulfilledStatus marks whether an order item has been fulfilled.
// The zero value means pending.
type FulfilledStatus string

const (
	FulfilledPending FulfilledStatus = ""
	FulfilledDone    FulfilledStatus = "fulfilled"
)

// IsFulfilled reports whether the status is terminal
func (s FulfilledStatus) IsFulfilled() bool {
	return s == FulfilledDone
}

// Address holds the fields shared by shipping and billing addresses
type Address struct {
	Salutation           string
	FirstName            string
	Surname              string
	StreetName           string
	HouseNumber          string
	HouseNumberExtension string
	ZipCode              string
	City                 string
	CountryCode          string
}

// FullName joins the non-empty name parts
func (a Address) FullName() string {
	return joinNonEmpty(" ", a.FirstName, a.Surname)
}

// Street returns street, house number and extension on one line
func (a Address) Street() string {
	return joinNonEmpty(" ", a.StreetName, a.HouseNumber+a.HouseNumberExtension)
}

// SingleLine renders the address for display on labels and scan screens
func (a Address) SingleLine() string {
	return joinNonEmpty(", ", a.Street(), joinNonEmpty(" ", a.ZipCode, a.City), a.CountryCode)
}

// ShippingAddress is the delivery address, which also carries contact email and locale
type ShippingAddress struct {
	Address
	Email    string
	Language string
}

// BillingAddress is the invoice address, which may carry a company name
type BillingAddress struct {
	Address
	Company string
	Email   string
}

// Fulfilment holds the delivery metadata of one line item
type Fulfilment struct {
	Method             string
	DistributionParty  string
	TimeFrameType      string
	LatestDeliveryDate *time.Time
	ExactDeliveryDate  *time.Time
	ExpiryDate         *time.Time
}

// OrderItem is one line item of one marketplace order.
// OrderItemID is globally unique and is the only upsert key: many items share an OrderID.
type OrderItem struct {
	shared.BaseEntity

	OrderItemID   string
	OrderID       string
	Account       Account
	OrderPlacedAt *time.Time

	Shipping ShippingAddress
	Billing  BillingAddress

	EAN        string
	OfferID    string
	Reference  string
	Title      string
	Quantity   int
	UnitPrice  decimal.Decimal
	Commission decimal.Decimal

	Fulfilment            Fulfilment
	CancellationRequested bool

	ImageURL    string
	Fulfilled   FulfilledStatus
	ProcessedAt time.Time
}

// Validate checks the identifying fields
func (i *OrderItem) Validate() error {
	if strings.TrimSpace(i.OrderItemID) == "" {
		return fmt.Errorf("%w: order item id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(i.OrderID) == "" {
		return fmt.Errorf("%w: order id is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(i.EAN) == "" {
		return fmt.Errorf("%w: ean is required", ErrInvalidArgument)
	}
	if i.Account.IsBlank() {
		return fmt.Errorf("%w: account is required", ErrInvalidArgument)
	}
	if i.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidArgument)
	}
	return nil
}

// LineTotal returns quantity times unit price
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// MarkFulfilled moves the item to fulfilled. It never moves back to pending.
func (i *OrderItem) MarkFulfilled(at time.Time) {
	if i.Fulfilled.IsFulfilled() {
		return
	}
	i.Fulfilled = FulfilledDone
	i.UpdatedAt = at
}

// RefreshFrom copies the fields the re-sync job is allowed to update from a freshly
// mapped item. Identifying fields and the fulfilled marker are left untouched.
func (i *OrderItem) RefreshFrom(fresh *OrderItem) {
	i.Title = fresh.Title
	i.Quantity = fresh.Quantity
	i.UnitPrice = fresh.UnitPrice
	i.Commission = fresh.Commission
	i.Fulfilment = fresh.Fulfilment
	i.CancellationRequested = fresh.CancellationRequested
	if fresh.ImageURL != "" {
		i.ImageURL = fresh.ImageURL
	}
	i.ProcessedAt = fresh.ProcessedAt
}

// TotalValue sums quantity times unit price across items
func TotalValue(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for idx := range items {
		total = total.Add(items[idx].LineTotal())
	}
	return total
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
