package marketplace

import "github.com/shopspring/decimal"

// The Platform* types are the upstream payload shapes as decoded from the marketplace API.
// Every optional field is a pointer so that "absent" is distinguishable from a zero value.
// The HTTP client validates them before they reach the mapper: an order is checked on its
// header only and every line item on its own, so one bad line never rejects its siblings.

// PlatformOrderSummary is one entry of the paged order index
type PlatformOrderSummary struct {
	OrderID             string  `json:"orderId" validate:"required"`
	OrderPlacedDateTime *string `json:"orderPlacedDateTime,omitempty"`
}

// PlatformAddress is a shipping or billing address block
type PlatformAddress struct {
	Salutation           *string `json:"salutation,omitempty"`
	FirstName            *string `json:"firstName,omitempty"`
	Surname              *string `json:"surname,omitempty"`
	StreetName           *string `json:"streetName,omitempty"`
	HouseNumber          *string `json:"houseNumber,omitempty"`
	HouseNumberExtension *string `json:"houseNumberExtension,omitempty"`
	ZipCode              *string `json:"zipCode,omitempty"`
	City                 *string `json:"city,omitempty"`
	CountryCode          *string `json:"countryCode,omitempty"`
	Email                *string `json:"email,omitempty"`
	Language             *string `json:"language,omitempty"`
	Company              *string `json:"company,omitempty"`
}

// PlatformFulfilment is the fulfilment block of a line item
type PlatformFulfilment struct {
	Method             *string `json:"method,omitempty"`
	DistributionParty  *string `json:"distributionParty,omitempty"`
	LatestDeliveryDate *string `json:"latestDeliveryDate,omitempty"`
	ExactDeliveryDate  *string `json:"exactDeliveryDate,omitempty"`
	ExpiryDate         *string `json:"expiryDate,omitempty"`
	TimeFrameType      *string `json:"timeFrameType,omitempty"`
}

// PlatformOffer identifies the seller offer a line item was sold under
type PlatformOffer struct {
	OfferID   *string `json:"offerId,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

// PlatformProduct identifies the product of a line item
type PlatformProduct struct {
	EAN   *string `json:"ean,omitempty"`
	Title *string `json:"title,omitempty"`
}

// PlatformOrderItem is one line item of an order detail payload
type PlatformOrderItem struct {
	OrderItemID         string              `json:"orderItemId" validate:"required"`
	CancellationRequest *bool               `json:"cancellationRequest,omitempty"`
	Fulfilment          *PlatformFulfilment `json:"fulfilment,omitempty"`
	Offer               *PlatformOffer      `json:"offer,omitempty"`
	Product             *PlatformProduct    `json:"product,omitempty"`
	Quantity            *int                `json:"quantity,omitempty" validate:"omitempty,min=0"`
	QuantityShipped     *int                `json:"quantityShipped,omitempty" validate:"omitempty,min=0"`
	QuantityCancelled   *int                `json:"quantityCancelled,omitempty" validate:"omitempty,min=0"`
	UnitPrice           *decimal.Decimal    `json:"unitPrice,omitempty"`
	Commission          *decimal.Decimal    `json:"commission,omitempty"`
}

// PlatformOrder is the full detail payload of one order
type PlatformOrder struct {
	OrderID             string              `json:"orderId" validate:"required"`
	OrderPlacedDateTime *string             `json:"orderPlacedDateTime,omitempty"`
	ShipmentDetails     *PlatformAddress    `json:"shipmentDetails,omitempty"`
	BillingDetails      *PlatformAddress    `json:"billingDetails,omitempty"`
	OrderItems          []PlatformOrderItem `json:"orderItems"`
}

// PlatformAssetVariant is one rendition of a product image
type PlatformAssetVariant struct {
	Size     *string `json:"size,omitempty"`
	Width    *int    `json:"width,omitempty"`
	Height   *int    `json:"height,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
	URL      *string `json:"url,omitempty"`
}

// PlatformAsset is one catalog asset with its variants
type PlatformAsset struct {
	Usage    *string                `json:"usage,omitempty"`
	Order    *int                   `json:"order,omitempty"`
	Variants []PlatformAssetVariant `json:"variants"`
}

// PlatformShipmentSummary is one entry of the paged shipment index
type PlatformShipmentSummary struct {
	ShipmentID       string  `json:"shipmentId" validate:"required"`
	ShipmentDateTime *string `json:"shipmentDateTime,omitempty"`
	Order            *struct {
		OrderID string `json:"orderId"`
	} `json:"order,omitempty"`
}

// OrderID returns the business order id the shipment belongs to, or "" when absent
func (s *PlatformShipmentSummary) OrderID() string {
	if s.Order == nil {
		return ""
	}
	return s.Order.OrderID
}

// PlatformTransport is the carrier block of a shipment detail
type PlatformTransport struct {
	TransportID     *string `json:"transportId,omitempty"`
	TransporterCode *string `json:"transporterCode,omitempty"`
	TrackAndTrace   *string `json:"trackAndTrace,omitempty"`
}

// PlatformShipment is the detail payload of one shipment
type PlatformShipment struct {
	ShipmentID string             `json:"shipmentId" validate:"required"`
	Transport  *PlatformTransport `json:"transport,omitempty"`
}

// Barcode returns the carrier tracking barcode, or "" when the shipment carries none
func (s *PlatformShipment) Barcode() string {
	if s.Transport == nil || s.Transport.TrackAndTrace == nil {
		return ""
	}
	return *s.Transport.TrackAndTrace
}
