package marketplace

import (
	"fmt"
	"strings"
	"time"

	"github.com/shipdesk/backend/internal/domain/shared"
)

// Label is the shipping label of one order item.
// There is at most one label per OrderItemID. Barcode is nil until a shipment is confirmed
// upstream or entered by an operator.
type Label struct {
	shared.BaseEntity

	OrderItemID      string
	OrderID          string
	RecipientName    string
	RecipientAddress string
	Barcode          *string
}

// NewLabelForItem builds a label for an item, deriving the display fields from its shipping address
func NewLabelForItem(item *OrderItem, barcode string) (*Label, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: order item is required", ErrInvalidArgument)
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", ErrInvalidArgument)
	}
	return &Label{
		BaseEntity:       shared.NewBaseEntity(),
		OrderItemID:      item.OrderItemID,
		OrderID:          item.OrderID,
		RecipientName:    item.Shipping.FullName(),
		RecipientAddress: item.Shipping.SingleLine(),
		Barcode:          &barcode,
	}, nil
}

// HasBarcode reports whether a tracking barcode is attached
func (l *Label) HasBarcode() bool {
	return l.Barcode != nil && *l.Barcode != ""
}

// ProductImage caches the resolved image of a product. EAN is the key and the URL is
// overwritten when a fresher one is resolved.
type ProductImage struct {
	EAN       string
	ImageURL  string
	UpdatedAt time.Time
}

// ScanStatus is the state recorded with a scan
type ScanStatus string

const (
	ScanStatusScanned ScanStatus = "SCANNED"
)

// ScanEvent records the latest physical scan of an order item's label.
// A rescan updates the existing row: there is at most one event per OrderItemID.
type ScanEvent struct {
	shared.BaseEntity

	OrderItemID string
	Barcode     string
	ScannedAt   time.Time
	ScannedBy   string
	Status      ScanStatus
}

// NewScanEvent creates the first scan of an item
func NewScanEvent(orderItemID, barcode, scannedBy string, at time.Time) *ScanEvent {
	return &ScanEvent{
		BaseEntity:  shared.NewBaseEntity(),
		OrderItemID: orderItemID,
		Barcode:     barcode,
		ScannedAt:   at,
		ScannedBy:   scannedBy,
		Status:      ScanStatusScanned,
	}
}

// Rescan updates the event in place. The new timestamp is kept strictly after the previous one.
func (e *ScanEvent) Rescan(barcode, scannedBy string, at time.Time) {
	if !at.After(e.ScannedAt) {
		at = e.ScannedAt.Add(time.Microsecond)
	}
	e.Barcode = barcode
	e.ScannedBy = scannedBy
	e.ScannedAt = at
	e.Status = ScanStatusScanned
	e.UpdatedAt = at
}
