package marketplace

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/domain/shared"
)

// dateLayouts are tried in order when parsing upstream dates
var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// MapLineItem maps one upstream line item of order into an OrderItem.
// A line item without a product EAN yields ErrMappingSkipped. Missing or unparsable
// dates stay nil, a missing quantity defaults to 1 and missing amounts default to zero.
func MapLineItem(
	item *marketplace.PlatformOrderItem,
	order *marketplace.PlatformOrder,
	account marketplace.Account,
	imageURL string,
	processedAt time.Time,
) (*marketplace.OrderItem, error) {
	if item == nil || order == nil {
		return nil, fmt.Errorf("%w: order and line item are required", marketplace.ErrInvalidArgument)
	}
	ean := lineItemEAN(item)
	if ean == "" {
		return nil, fmt.Errorf("%w: order %s item %s has no ean", marketplace.ErrMappingSkipped, order.OrderID, item.OrderItemID)
	}

	mapped := &marketplace.OrderItem{
		BaseEntity:    shared.NewBaseEntity(),
		OrderItemID:   item.OrderItemID,
		OrderID:       order.OrderID,
		Account:       account,
		OrderPlacedAt: parseDate(order.OrderPlacedDateTime),
		Shipping:      mapShipping(order.ShipmentDetails),
		Billing:       mapBilling(order.BillingDetails),
		EAN:           ean,
		Quantity:      1,
		UnitPrice:     decimal.Zero,
		Commission:    decimal.Zero,
		ImageURL:      imageURL,
		Fulfilled:     marketplace.FulfilledPending,
		ProcessedAt:   processedAt.UTC(),
	}

	if p := item.Product; p != nil {
		mapped.Title = str(p.Title)
	}
	if o := item.Offer; o != nil {
		mapped.OfferID = str(o.OfferID)
		mapped.Reference = str(o.Reference)
	}
	if item.Quantity != nil {
		mapped.Quantity = *item.Quantity
	}
	if item.UnitPrice != nil {
		mapped.UnitPrice = *item.UnitPrice
	}
	if item.Commission != nil {
		mapped.Commission = *item.Commission
	}
	if item.CancellationRequest != nil {
		mapped.CancellationRequested = *item.CancellationRequest
	}
	if f := item.Fulfilment; f != nil {
		mapped.Fulfilment = marketplace.Fulfilment{
			Method:             str(f.Method),
			DistributionParty:  str(f.DistributionParty),
			TimeFrameType:      str(f.TimeFrameType),
			LatestDeliveryDate: parseDate(f.LatestDeliveryDate),
			ExactDeliveryDate:  parseDate(f.ExactDeliveryDate),
			ExpiryDate:         parseDate(f.ExpiryDate),
		}
	}

	if err := mapped.Validate(); err != nil {
		return nil, err
	}
	return mapped, nil
}

func lineItemEAN(item *marketplace.PlatformOrderItem) string {
	if item.Product == nil {
		return ""
	}
	return str(item.Product.EAN)
}

func mapAddress(a *marketplace.PlatformAddress) marketplace.Address {
	return marketplace.Address{
		Salutation:           str(a.Salutation),
		FirstName:            str(a.FirstName),
		Surname:              str(a.Surname),
		StreetName:           str(a.StreetName),
		HouseNumber:          str(a.HouseNumber),
		HouseNumberExtension: str(a.HouseNumberExtension),
		ZipCode:              str(a.ZipCode),
		City:                 str(a.City),
		CountryCode:          strings.ToUpper(str(a.CountryCode)),
	}
}

func mapShipping(a *marketplace.PlatformAddress) marketplace.ShippingAddress {
	if a == nil {
		return marketplace.ShippingAddress{}
	}
	return marketplace.ShippingAddress{
		Address:  mapAddress(a),
		Email:    str(a.Email),
		Language: str(a.Language),
	}
}

func mapBilling(a *marketplace.PlatformAddress) marketplace.BillingAddress {
	if a == nil {
		return marketplace.BillingAddress{}
	}
	return marketplace.BillingAddress{
		Address: mapAddress(a),
		Company: str(a.Company),
		Email:   str(a.Email),
	}
}

// parseDate parses an optional upstream date into UTC. Unknown layouts yield nil.
func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
