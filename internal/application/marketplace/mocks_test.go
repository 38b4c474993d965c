package marketplace

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/cache"
)

// MockTokenIssuer is a mock implementation of marketplace.TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) IssueToken(ctx context.Context, account marketplace.Account) (string, error) {
	args := m.Called(ctx, account)
	return args.String(0), args.Error(1)
}

// MockOrderSource is a mock implementation of marketplace.OrderSource
type MockOrderSource struct {
	mock.Mock
}

func (m *MockOrderSource) ListOrders(ctx context.Context, token string, page int) ([]marketplace.PlatformOrderSummary, error) {
	args := m.Called(ctx, token, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.PlatformOrderSummary), args.Error(1)
}

func (m *MockOrderSource) GetOrder(ctx context.Context, token string, orderID string) (*marketplace.PlatformOrder, error) {
	args := m.Called(ctx, token, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.PlatformOrder), args.Error(1)
}

// MockCatalogSource is a mock implementation of marketplace.CatalogSource
type MockCatalogSource struct {
	mock.Mock
}

func (m *MockCatalogSource) GetProductAssets(ctx context.Context, token string, ean string) ([]marketplace.PlatformAsset, error) {
	args := m.Called(ctx, token, ean)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.PlatformAsset), args.Error(1)
}

// MockShipmentSource is a mock implementation of marketplace.ShipmentSource
type MockShipmentSource struct {
	mock.Mock
}

func (m *MockShipmentSource) ListShipments(ctx context.Context, token string, page int) ([]marketplace.PlatformShipmentSummary, error) {
	args := m.Called(ctx, token, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.PlatformShipmentSummary), args.Error(1)
}

func (m *MockShipmentSource) GetShipment(ctx context.Context, token string, shipmentID string) (*marketplace.PlatformShipment, error) {
	args := m.Called(ctx, token, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.PlatformShipment), args.Error(1)
}

// memoryOrderItems is an in-memory marketplace.OrderItemRepository
type memoryOrderItems struct {
	mu          sync.Mutex
	items       map[string]marketplace.OrderItem
	labels      *memoryLabels
	createCalls int
	createErr   error
	findErr     error
}

func newMemoryOrderItems(labels *memoryLabels) *memoryOrderItems {
	return &memoryOrderItems{items: make(map[string]marketplace.OrderItem), labels: labels}
}

func (r *memoryOrderItems) put(items ...marketplace.OrderItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[item.OrderItemID] = item
	}
}

func (r *memoryOrderItems) get(orderItemID string) (marketplace.OrderItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[orderItemID]
	return item, ok
}

func (r *memoryOrderItems) sorted(keep func(marketplace.OrderItem) bool) []marketplace.OrderItem {
	out := make([]marketplace.OrderItem, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderItemID < out[j].OrderItemID })
	return out
}

func (r *memoryOrderItems) FindByOrderID(_ context.Context, orderID string) ([]marketplace.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.sorted(func(i marketplace.OrderItem) bool { return i.OrderID == orderID }), nil
}

func (r *memoryOrderItems) FindByOrderItemID(_ context.Context, orderItemID string) (*marketplace.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[orderItemID]
	if !ok {
		return nil, fmt.Errorf("%w: order item %s", marketplace.ErrNotFound, orderItemID)
	}
	return &item, nil
}

func (r *memoryOrderItems) FindByOrderIDs(_ context.Context, account marketplace.Account, orderIDs []string) ([]marketplace.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[string]bool, len(orderIDs))
	for _, id := range orderIDs {
		wanted[id] = true
	}
	return r.sorted(func(i marketplace.OrderItem) bool { return i.Account == account && wanted[i.OrderID] }), nil
}

func (r *memoryOrderItems) FindWithoutBarcode(_ context.Context, account marketplace.Account, limit int) ([]marketplace.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	out := r.sorted(func(i marketplace.OrderItem) bool {
		if i.Account != account {
			return false
		}
		if r.labels == nil {
			return true
		}
		label, ok := r.labels.get(i.OrderItemID)
		return !ok || !label.HasBarcode()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryOrderItems) CreateBatch(_ context.Context, items []marketplace.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.createErr != nil {
		return r.createErr
	}
	for _, item := range items {
		if _, exists := r.items[item.OrderItemID]; !exists {
			r.items[item.OrderItemID] = item
		}
	}
	return nil
}

func (r *memoryOrderItems) UpdateSyncedFields(_ context.Context, item *marketplace.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[item.OrderItemID]
	if !ok {
		return fmt.Errorf("%w: order item %s", marketplace.ErrNotFound, item.OrderItemID)
	}
	stored.RefreshFrom(item)
	r.items[item.OrderItemID] = stored
	return nil
}

func (r *memoryOrderItems) MarkFulfilled(_ context.Context, orderItemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[orderItemID]
	if !ok {
		return fmt.Errorf("%w: order item %s", marketplace.ErrNotFound, orderItemID)
	}
	stored.MarkFulfilled(time.Now())
	r.items[orderItemID] = stored
	return nil
}

// memoryLabels is an in-memory marketplace.LabelRepository
type memoryLabels struct {
	mu        sync.Mutex
	labels    map[string]marketplace.Label
	upsertErr error
}

func newMemoryLabels() *memoryLabels {
	return &memoryLabels{labels: make(map[string]marketplace.Label)}
}

func (r *memoryLabels) get(orderItemID string) (marketplace.Label, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	label, ok := r.labels[orderItemID]
	return label, ok
}

func (r *memoryLabels) FindByBarcode(_ context.Context, barcode string) (*marketplace.Label, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, label := range r.labels {
		if label.HasBarcode() && *label.Barcode == barcode {
			return &label, nil
		}
	}
	return nil, fmt.Errorf("%w: no label with barcode %s", marketplace.ErrNotFound, barcode)
}

func (r *memoryLabels) Upsert(_ context.Context, label *marketplace.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if existing, ok := r.labels[label.OrderItemID]; ok {
		label.ID = existing.ID
	}
	r.labels[label.OrderItemID] = *label
	return nil
}

// memoryImages is an in-memory marketplace.ProductImageRepository
type memoryImages struct {
	mu      sync.Mutex
	images  map[string]marketplace.ProductImage
	upserts int
}

func newMemoryImages() *memoryImages {
	return &memoryImages{images: make(map[string]marketplace.ProductImage)}
}

func (r *memoryImages) FindByEAN(_ context.Context, ean string) (*marketplace.ProductImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[ean]
	if !ok {
		return nil, fmt.Errorf("%w: no image for %s", marketplace.ErrNotFound, ean)
	}
	return &img, nil
}

func (r *memoryImages) Upsert(_ context.Context, image *marketplace.ProductImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	r.images[image.EAN] = *image
	return nil
}

// memoryScans is an in-memory marketplace.ScanEventRepository
type memoryScans struct {
	mu     sync.Mutex
	events map[string]marketplace.ScanEvent
}

func newMemoryScans() *memoryScans {
	return &memoryScans{events: make(map[string]marketplace.ScanEvent)}
}

func (r *memoryScans) FindByOrderItemID(_ context.Context, orderItemID string) (*marketplace.ScanEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event, ok := r.events[orderItemID]
	if !ok {
		return nil, fmt.Errorf("%w: never scanned", marketplace.ErrNotFound)
	}
	return &event, nil
}

func (r *memoryScans) Upsert(_ context.Context, event *marketplace.ScanEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.OrderItemID] = *event
	return nil
}

// recordingMetrics counts calls for assertions
type recordingMetrics struct {
	mu             sync.Mutex
	failures       map[string]int
	ordersFetched  int
	itemsPersisted int
	labelsUpdated  int
	scans          []bool
	reconciles     int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{failures: make(map[string]int)}
}

func (m *recordingMetrics) RecordOrdersFetched(_ context.Context, _ marketplace.Account, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ordersFetched += n
}

func (m *recordingMetrics) RecordItemsPersisted(_ context.Context, _ marketplace.Account, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemsPersisted += n
}

func (m *recordingMetrics) RecordUpstreamFailure(_ context.Context, operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[operation]++
}

func (m *recordingMetrics) RecordLabelsUpdated(_ context.Context, _ marketplace.Account, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labelsUpdated += n
}

func (m *recordingMetrics) RecordScan(_ context.Context, rescan bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans = append(m.scans, rescan)
}

func (m *recordingMetrics) RecordReconcileDuration(context.Context, marketplace.Account, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconciles++
}

func (m *recordingMetrics) failureCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[op]
}

func newTestCache() *cache.TieredCache {
	return cache.NewTieredCache("test", cache.NewTTLCache[string](time.Minute))
}

// harness wires the services on mocks and in-memory stores
type harness struct {
	issuer    *MockTokenIssuer
	orders    *MockOrderSource
	catalog   *MockCatalogSource
	shipments *MockShipmentSource

	items  *memoryOrderItems
	labels *memoryLabels
	images *memoryImages
	scans  *memoryScans

	metrics *recordingMetrics

	tokens   *TokenProvider
	resolver *ImageResolver
	fetcher  *OrderFetcher
}

func newHarness() *harness {
	h := &harness{
		issuer:    new(MockTokenIssuer),
		orders:    new(MockOrderSource),
		catalog:   new(MockCatalogSource),
		shipments: new(MockShipmentSource),
		labels:    newMemoryLabels(),
		images:    newMemoryImages(),
		scans:     newMemoryScans(),
		metrics:   newRecordingMetrics(),
	}
	h.items = newMemoryOrderItems(h.labels)
	log := zap.NewNop()
	h.tokens = NewTokenProvider(h.issuer, newTestCache(), h.metrics, log)
	h.resolver = NewImageResolver(h.tokens, h.catalog, h.images, newTestCache(),
		WithPlaceholder("/placeholder.png"),
		WithImageMetrics(h.metrics),
		WithImageLogger(log),
	)
	h.fetcher = NewOrderFetcher(h.tokens, h.orders, h.resolver, h.items,
		WithItemConcurrency(4),
		WithFetcherMetrics(h.metrics),
		WithFetcherLogger(log),
	)
	return h
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func platformOrder(orderID string, lines ...marketplace.PlatformOrderItem) *marketplace.PlatformOrder {
	return &marketplace.PlatformOrder{
		OrderID:             orderID,
		OrderPlacedDateTime: strPtr("2026-03-10T09:30:00+01:00"),
		ShipmentDetails: &marketplace.PlatformAddress{
			FirstName:   strPtr("Jan"),
			Surname:     strPtr("Jansen"),
			StreetName:  strPtr("Dorpsstraat"),
			HouseNumber: strPtr("1"),
			ZipCode:     strPtr("1234AB"),
			City:        strPtr("Utrecht"),
			CountryCode: strPtr("NL"),
		},
		OrderItems: lines,
	}
}

func platformLine(orderItemID, ean string) marketplace.PlatformOrderItem {
	line := marketplace.PlatformOrderItem{
		OrderItemID: orderItemID,
		Quantity:    intPtr(1),
	}
	if ean != "" {
		line.Product = &marketplace.PlatformProduct{EAN: strPtr(ean), Title: strPtr("Product " + ean)}
	}
	return line
}

func assetWithVariants(urls ...string) []marketplace.PlatformAsset {
	variants := make([]marketplace.PlatformAssetVariant, len(urls))
	for i, u := range urls {
		variants[i] = marketplace.PlatformAssetVariant{URL: strPtr(u)}
	}
	return []marketplace.PlatformAsset{{Usage: strPtr("PRIMARY"), Variants: variants}}
}
