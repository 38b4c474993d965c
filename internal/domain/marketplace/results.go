package marketplace

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderDetails pairs an order id from the order index with its mapped items.
// Details is empty, never nil, when the order could not be fetched.
type OrderDetails struct {
	OrderID string      `json:"order_id"`
	Details []OrderItem `json:"details"`
}

// AccountReconcileResult summarises one account's shipment reconciliation pass
type AccountReconcileResult struct {
	Account          Account `json:"account"`
	Success          bool    `json:"success"`
	NothingToDo      bool    `json:"nothing_to_do"`
	Message          string  `json:"message"`
	OrdersConsidered int     `json:"orders_considered"`
	ShipmentsFound   int     `json:"shipments_found"`
	Matched          int     `json:"matched"`
	Updated          int     `json:"updated"`
}

// ReconcileSummary aggregates the per-account results of a reconciliation run
type ReconcileSummary struct {
	Success     bool                     `json:"success"`
	Message     string                   `json:"message"`
	Accounts    []AccountReconcileResult `json:"accounts"`
	TotalOrders int                      `json:"total_orders"`
	Matched     int                      `json:"matched"`
	Updated     int                      `json:"updated"`
	StartedAt   time.Time                `json:"started_at"`
	FinishedAt  time.Time                `json:"finished_at"`
}

// NewReconcileSummary aggregates account results. The run succeeds only when every account did.
func NewReconcileSummary(results []AccountReconcileResult, startedAt, finishedAt time.Time) *ReconcileSummary {
	s := &ReconcileSummary{
		Success:    true,
		Accounts:   results,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	failed := 0
	for _, r := range results {
		s.TotalOrders += r.OrdersConsidered
		s.Matched += r.Matched
		s.Updated += r.Updated
		if !r.Success {
			failed++
		}
	}
	s.Success = failed == 0
	s.Message = fmt.Sprintf("reconciled %d account(s): %d failed, %d label(s) updated", len(results), failed, s.Updated)
	return s
}

// ScanItem is one item of the scanned order with its display image
type ScanItem struct {
	OrderItem
	DisplayImage string `json:"display_image"`
}

// ScanResult is the context returned to the operator after a scan
type ScanResult struct {
	Scan     ScanEvent       `json:"scan"`
	IsRescan bool            `json:"is_rescan"`
	Order    OrderItem       `json:"order"`
	Items    []ScanItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

// SyncStatus represents the outcome of a re-sync run
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusPartial SyncStatus = "PARTIAL"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// SyncFailure records one order that could not be re-synced
type SyncFailure struct {
	OrderID      string `json:"order_id"`
	ErrorMessage string `json:"error_message"`
}

// SyncResult summarises a re-sync run of one account
type SyncResult struct {
	Account      Account       `json:"account"`
	Status       SyncStatus    `json:"status"`
	TotalCount   int           `json:"total_count"`
	CreatedCount int           `json:"created_count"`
	UpdatedCount int           `json:"updated_count"`
	FailedCount  int           `json:"failed_count"`
	FailedItems  []SyncFailure `json:"failed_items,omitempty"`
	Message      string        `json:"message,omitempty"`
	SyncedAt     time.Time     `json:"synced_at"`
}

// Finish derives the status from the counts
func (r *SyncResult) Finish(at time.Time) {
	r.SyncedAt = at
	switch {
	case r.FailedCount == 0:
		r.Status = SyncStatusSuccess
	case r.FailedCount >= r.TotalCount:
		r.Status = SyncStatusFailed
	default:
		r.Status = SyncStatusPartial
	}
}
