package marketplace

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
)

// UnknownScanner is recorded when a scan carries no operator
const UnknownScanner = "unknown"

// ScanRegistrar records a physical scan of a label barcode and returns the whole order
// for the operator to verify
type ScanRegistrar struct {
	labels  marketplace.LabelRepository
	items   marketplace.OrderItemRepository
	scans   marketplace.ScanEventRepository
	images  *ImageResolver
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewScanRegistrar creates a ScanRegistrar
func NewScanRegistrar(
	labels marketplace.LabelRepository,
	items marketplace.OrderItemRepository,
	scans marketplace.ScanEventRepository,
	images *ImageResolver,
	metrics Metrics,
	log *zap.Logger,
) *ScanRegistrar {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ScanRegistrar{
		labels:  labels,
		items:   items,
		scans:   scans,
		images:  images,
		metrics: metrics,
		logger:  log,
		now:     time.Now,
	}
}

// RegisterScan records a scan of barcode by scannedBy. It fails with ErrNotFound when no
// label carries the barcode or the labelled item is no longer stored. Images are read
// from cache and store only.
func (s *ScanRegistrar) RegisterScan(ctx context.Context, barcode, scannedBy string) (*marketplace.ScanResult, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("%w: barcode is required", marketplace.ErrInvalidArgument)
	}
	scannedBy = strings.TrimSpace(scannedBy)
	if scannedBy == "" {
		scannedBy = UnknownScanner
	}

	label, err := s.labels.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	item, err := s.items.FindByOrderItemID(ctx, label.OrderItemID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.items.FindByOrderID(ctx, item.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items of order %s: %w", item.OrderID, err)
	}
	if len(siblings) == 0 {
		siblings = []marketplace.OrderItem{*item}
	}

	scanItems := make([]marketplace.ScanItem, len(siblings))
	for i := range siblings {
		scanItems[i] = marketplace.ScanItem{
			OrderItem:    siblings[i],
			DisplayImage: s.displayImage(ctx, &siblings[i]),
		}
	}

	at := s.now()
	event, err := s.scans.FindByOrderItemID(ctx, item.OrderItemID)
	rescan := false
	switch {
	case err == nil:
		rescan = true
		event.Rescan(barcode, scannedBy, at)
	case errors.Is(err, marketplace.ErrNotFound):
		event = marketplace.NewScanEvent(item.OrderItemID, barcode, scannedBy, at)
	default:
		return nil, fmt.Errorf("failed to load scan of order item %s: %w", item.OrderItemID, err)
	}

	if err := s.scans.Upsert(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to store scan of order item %s: %w", item.OrderItemID, err)
	}
	s.metrics.RecordScan(ctx, rescan)

	logger.WithLogger(ctx, s.logger).Info("Label scanned",
		zap.String("barcode", barcode),
		zap.String("order_id", item.OrderID),
		zap.String("order_item_id", item.OrderItemID),
		zap.String("scanned_by", scannedBy),
		zap.Bool("rescan", rescan),
	)

	return &marketplace.ScanResult{
		Scan:     *event,
		IsRescan: rescan,
		Order:    *item,
		Items:    scanItems,
		Total:    marketplace.TotalValue(siblings),
	}, nil
}

func (s *ScanRegistrar) displayImage(ctx context.Context, item *marketplace.OrderItem) string {
	url := s.images.Cached(ctx, item.EAN)
	if url == s.images.Placeholder() && item.ImageURL != "" {
		return item.ImageURL
	}
	return url
}
