package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

// Stored values of the cancellation flag
const (
	cancellationTrue  = "true"
	cancellationFalse = "false"
)

// ShippingAddressColumns is embedded with the shipping_ prefix
type ShippingAddressColumns struct {
	Salutation           string `gorm:"type:varchar(20)"`
	FirstName            string `gorm:"type:varchar(100)"`
	Surname              string `gorm:"type:varchar(100)"`
	StreetName           string `gorm:"type:varchar(200)"`
	HouseNumber          string `gorm:"type:varchar(20)"`
	HouseNumberExtension string `gorm:"type:varchar(20)"`
	ZipCode              string `gorm:"type:varchar(20)"`
	City                 string `gorm:"type:varchar(100)"`
	CountryCode          string `gorm:"type:varchar(2)"`
	Email                string `gorm:"type:varchar(200)"`
	Language             string `gorm:"type:varchar(10)"`
}

// BillingAddressColumns is embedded with the billing_ prefix
type BillingAddressColumns struct {
	Salutation           string `gorm:"type:varchar(20)"`
	FirstName            string `gorm:"type:varchar(100)"`
	Surname              string `gorm:"type:varchar(100)"`
	StreetName           string `gorm:"type:varchar(200)"`
	HouseNumber          string `gorm:"type:varchar(20)"`
	HouseNumberExtension string `gorm:"type:varchar(20)"`
	ZipCode              string `gorm:"type:varchar(20)"`
	City                 string `gorm:"type:varchar(100)"`
	CountryCode          string `gorm:"type:varchar(2)"`
	Company              string `gorm:"type:varchar(200)"`
	Email                string `gorm:"type:varchar(200)"`
}

// OrderItemModel is the persistence model for marketplace order items
type OrderItemModel struct {
	BaseModel
	OrderItemID string `gorm:"type:varchar(64);not null;uniqueIndex"`
	OrderID     string `gorm:"type:varchar(64);not null;index"`
	Account     string `gorm:"type:varchar(100);not null;index"`

	OrderPlacedAt *time.Time

	Shipping ShippingAddressColumns `gorm:"embedded;embeddedPrefix:shipping_"`
	Billing  BillingAddressColumns  `gorm:"embedded;embeddedPrefix:billing_"`

	EAN        string          `gorm:"column:ean;type:varchar(32);not null;index"`
	OfferID    string          `gorm:"type:varchar(64)"`
	Reference  string          `gorm:"type:varchar(200)"`
	Title      string          `gorm:"type:varchar(500)"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Commission decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	FulfilmentMethod  string `gorm:"type:varchar(20)"`
	DistributionParty string `gorm:"type:varchar(20)"`
	TimeFrameType     string `gorm:"type:varchar(20)"`

	LatestDeliveryDate *time.Time
	ExactDeliveryDate  *time.Time
	ExpiryDate         *time.Time

	// CancellationRequest holds "true" or "false"
	CancellationRequest string `gorm:"type:varchar(5);not null"`

	ImageURL    string    `gorm:"type:text"`
	Fulfilled   string    `gorm:"type:varchar(20);not null"`
	ProcessedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem
func (m *OrderItemModel) ToDomain() *marketplace.OrderItem {
	cancelled, _ := strconv.ParseBool(m.CancellationRequest)
	return &marketplace.OrderItem{
		BaseEntity:    m.BaseModel.ToDomain(),
		OrderItemID:   m.OrderItemID,
		OrderID:       m.OrderID,
		Account:       marketplace.Account(m.Account),
		OrderPlacedAt: m.OrderPlacedAt,
		Shipping: marketplace.ShippingAddress{
			Address: marketplace.Address{
				Salutation:           m.Shipping.Salutation,
				FirstName:            m.Shipping.FirstName,
				Surname:              m.Shipping.Surname,
				StreetName:           m.Shipping.StreetName,
				HouseNumber:          m.Shipping.HouseNumber,
				HouseNumberExtension: m.Shipping.HouseNumberExtension,
				ZipCode:              m.Shipping.ZipCode,
				City:                 m.Shipping.City,
				CountryCode:          m.Shipping.CountryCode,
			},
			Email:    m.Shipping.Email,
			Language: m.Shipping.Language,
		},
		Billing: marketplace.BillingAddress{
			Address: marketplace.Address{
				Salutation:           m.Billing.Salutation,
				FirstName:            m.Billing.FirstName,
				Surname:              m.Billing.Surname,
				StreetName:           m.Billing.StreetName,
				HouseNumber:          m.Billing.HouseNumber,
				HouseNumberExtension: m.Billing.HouseNumberExtension,
				ZipCode:              m.Billing.ZipCode,
				City:                 m.Billing.City,
				CountryCode:          m.Billing.CountryCode,
			},
			Company: m.Billing.Company,
			Email:   m.Billing.Email,
		},
		EAN:        m.EAN,
		OfferID:    m.OfferID,
		Reference:  m.Reference,
		Title:      m.Title,
		Quantity:   m.Quantity,
		UnitPrice:  m.UnitPrice,
		Commission: m.Commission,
		Fulfilment: marketplace.Fulfilment{
			Method:             m.FulfilmentMethod,
			DistributionParty:  m.DistributionParty,
			TimeFrameType:      m.TimeFrameType,
			LatestDeliveryDate: utcPtr(m.LatestDeliveryDate),
			ExactDeliveryDate:  utcPtr(m.ExactDeliveryDate),
			ExpiryDate:         utcPtr(m.ExpiryDate),
		},
		CancellationRequested: cancelled,
		ImageURL:              m.ImageURL,
		Fulfilled:             marketplace.FulfilledStatus(m.Fulfilled),
		ProcessedAt:           m.ProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain OrderItem
func (m *OrderItemModel) FromDomain(i *marketplace.OrderItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.OrderItemID = i.OrderItemID
	m.OrderID = i.OrderID
	m.Account = i.Account.String()
	m.OrderPlacedAt = i.OrderPlacedAt
	m.Shipping = ShippingAddressColumns{
		Salutation:           i.Shipping.Salutation,
		FirstName:            i.Shipping.FirstName,
		Surname:              i.Shipping.Surname,
		StreetName:           i.Shipping.StreetName,
		HouseNumber:          i.Shipping.HouseNumber,
		HouseNumberExtension: i.Shipping.HouseNumberExtension,
		ZipCode:              i.Shipping.ZipCode,
		City:                 i.Shipping.City,
		CountryCode:          i.Shipping.CountryCode,
		Email:                i.Shipping.Email,
		Language:             i.Shipping.Language,
	}
	m.Billing = BillingAddressColumns{
		Salutation:           i.Billing.Salutation,
		FirstName:            i.Billing.FirstName,
		Surname:              i.Billing.Surname,
		StreetName:           i.Billing.StreetName,
		HouseNumber:          i.Billing.HouseNumber,
		HouseNumberExtension: i.Billing.HouseNumberExtension,
		ZipCode:              i.Billing.ZipCode,
		City:                 i.Billing.City,
		CountryCode:          i.Billing.CountryCode,
		Company:              i.Billing.Company,
		Email:                i.Billing.Email,
	}
	m.EAN = i.EAN
	m.OfferID = i.OfferID
	m.Reference = i.Reference
	m.Title = i.Title
	m.Quantity = i.Quantity
	m.UnitPrice = i.UnitPrice
	m.Commission = i.Commission
	m.FulfilmentMethod = i.Fulfilment.Method
	m.DistributionParty = i.Fulfilment.DistributionParty
	m.TimeFrameType = i.Fulfilment.TimeFrameType
	m.LatestDeliveryDate = i.Fulfilment.LatestDeliveryDate
	m.ExactDeliveryDate = i.Fulfilment.ExactDeliveryDate
	m.ExpiryDate = i.Fulfilment.ExpiryDate
	m.CancellationRequest = FormatCancellation(i.CancellationRequested)
	m.ImageURL = i.ImageURL
	m.Fulfilled = string(i.Fulfilled)
	m.ProcessedAt = i.ProcessedAt
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem
func OrderItemModelFromDomain(i *marketplace.OrderItem) *OrderItemModel {
	m := &OrderItemModel{}
	m.FromDomain(i)
	return m
}

// FormatCancellation renders the cancellation flag as stored
func FormatCancellation(cancelled bool) string {
	if cancelled {
		return cancellationTrue
	}
	return cancellationFalse
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// LabelModel is the persistence model for shipping labels
type LabelModel struct {
	BaseModel
	OrderItemID      string  `gorm:"type:varchar(64);not null;uniqueIndex"`
	OrderID          string  `gorm:"type:varchar(64);not null;index"`
	RecipientName    string  `gorm:"type:varchar(200)"`
	RecipientAddress string  `gorm:"type:varchar(500)"`
	Barcode          *string `gorm:"type:varchar(64);index"`
}

// TableName returns the table name for GORM
func (LabelModel) TableName() string {
	return "labels"
}

// ToDomain converts the persistence model to a domain Label
func (m *LabelModel) ToDomain() *marketplace.Label {
	return &marketplace.Label{
		BaseEntity:       m.BaseModel.ToDomain(),
		OrderItemID:      m.OrderItemID,
		OrderID:          m.OrderID,
		RecipientName:    m.RecipientName,
		RecipientAddress: m.RecipientAddress,
		Barcode:          m.Barcode,
	}
}

// LabelModelFromDomain creates a persistence model from a domain Label
func LabelModelFromDomain(l *marketplace.Label) *LabelModel {
	m := &LabelModel{
		OrderItemID:      l.OrderItemID,
		OrderID:          l.OrderID,
		RecipientName:    l.RecipientName,
		RecipientAddress: l.RecipientAddress,
		Barcode:          l.Barcode,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}

// ProductImageModel is the persistence model for resolved product images
type ProductImageModel struct {
	BaseModel
	EAN      string `gorm:"column:ean;type:varchar(32);not null;uniqueIndex"`
	ImageURL string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (ProductImageModel) TableName() string {
	return "product_images"
}

// ToDomain converts the persistence model to a domain ProductImage
func (m *ProductImageModel) ToDomain() *marketplace.ProductImage {
	return &marketplace.ProductImage{
		EAN:       m.EAN,
		ImageURL:  m.ImageURL,
		UpdatedAt: m.UpdatedAt,
	}
}

// ScanEventModel is the persistence model for the latest scan of an order item
type ScanEventModel struct {
	BaseModel
	OrderItemID string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Barcode     string    `gorm:"type:varchar(64);not null"`
	ScannedAt   time.Time `gorm:"not null"`
	ScannedBy   string    `gorm:"type:varchar(100);not null"`
	Status      string    `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ScanEventModel) TableName() string {
	return "scan_events"
}

// ToDomain converts the persistence model to a domain ScanEvent
func (m *ScanEventModel) ToDomain() *marketplace.ScanEvent {
	return &marketplace.ScanEvent{
		BaseEntity:  m.BaseModel.ToDomain(),
		OrderItemID: m.OrderItemID,
		Barcode:     m.Barcode,
		ScannedAt:   m.ScannedAt,
		ScannedBy:   m.ScannedBy,
		Status:      marketplace.ScanStatus(m.Status),
	}
}

// ScanEventModelFromDomain creates a persistence model from a domain ScanEvent
func ScanEventModelFromDomain(e *marketplace.ScanEvent) *ScanEventModel {
	m := &ScanEventModel{
		OrderItemID: e.OrderItemID,
		Barcode:     e.Barcode,
		ScannedAt:   e.ScannedAt,
		ScannedBy:   e.ScannedBy,
		Status:      string(e.Status),
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}
