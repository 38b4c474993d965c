package marketplace

import "context"

// OrderItemRepository persists order items keyed by OrderItemID
type OrderItemRepository interface {
	// FindByOrderID returns every stored item of a business order, oldest first
	FindByOrderID(ctx context.Context, orderID string) ([]OrderItem, error)
	// FindByOrderItemID returns ErrNotFound when the item is not stored
	FindByOrderItemID(ctx context.Context, orderItemID string) (*OrderItem, error)
	// FindByOrderIDs returns the stored items of the given orders for an account
	FindByOrderIDs(ctx context.Context, account Account, orderIDs []string) ([]OrderItem, error)
	// FindWithoutBarcode returns up to limit items of the account that have no label barcode yet
	FindWithoutBarcode(ctx context.Context, account Account, limit int) ([]OrderItem, error)
	// CreateBatch inserts items in one transaction. Items whose OrderItemID already exists are left unchanged.
	CreateBatch(ctx context.Context, items []OrderItem) error
	// UpdateSyncedFields refreshes the re-syncable fields of an already stored item
	UpdateSyncedFields(ctx context.Context, item *OrderItem) error
	// MarkFulfilled sets the fulfilled marker. It never clears it.
	MarkFulfilled(ctx context.Context, orderItemID string) error
}

// LabelRepository persists shipping labels keyed by OrderItemID
type LabelRepository interface {
	// FindByBarcode returns ErrNotFound when no label carries the barcode
	FindByBarcode(ctx context.Context, barcode string) (*Label, error)
	// Upsert creates the label or updates barcode and display fields of the existing one
	Upsert(ctx context.Context, label *Label) error
}

// ProductImageRepository persists resolved product images keyed by EAN
type ProductImageRepository interface {
	// FindByEAN returns ErrNotFound when no image is stored
	FindByEAN(ctx context.Context, ean string) (*ProductImage, error)
	Upsert(ctx context.Context, image *ProductImage) error
}

// ScanEventRepository persists the latest scan per order item
type ScanEventRepository interface {
	// FindByOrderItemID returns ErrNotFound when the item was never scanned
	FindByOrderItemID(ctx context.Context, orderItemID string) (*ScanEvent, error)
	// Upsert creates the event or overwrites timestamp, actor and barcode of the existing one
	Upsert(ctx context.Context, event *ScanEvent) error
}
