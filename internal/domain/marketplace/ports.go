package marketplace

import "context"

// TokenIssuer obtains a bearer token for an account from the marketplace auth API
type TokenIssuer interface {
	IssueToken(ctx context.Context, account Account) (string, error)
}

// OrderSource is the marketplace order API
type OrderSource interface {
	// ListOrders returns one page of the order index. An empty page is not an error.
	ListOrders(ctx context.Context, token string, page int) ([]PlatformOrderSummary, error)
	// GetOrder returns the full detail of one order
	GetOrder(ctx context.Context, token string, orderID string) (*PlatformOrder, error)
}

// CatalogSource is the marketplace catalog asset API
type CatalogSource interface {
	GetProductAssets(ctx context.Context, token string, ean string) ([]PlatformAsset, error)
}

// ShipmentSource is the marketplace shipment confirmation API
type ShipmentSource interface {
	// ListShipments returns one page of the shipment index. An empty page is not an error.
	ListShipments(ctx context.Context, token string, page int) ([]PlatformShipmentSummary, error)
	// GetShipment returns the detail of one shipment, including its transport barcode
	GetShipment(ctx context.Context, token string, shipmentID string) (*PlatformShipment, error)
}

// ValueCache is an expiring string cache. Implementations must be safe for concurrent use.
// Concurrent writes to the same key are last-write-wins.
type ValueCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Has(ctx context.Context, key string) bool
}
