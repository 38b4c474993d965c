package dto

// ListOrdersQuery selects one page of an account's open orders
type ListOrdersQuery struct {
	Account string `form:"account" binding:"required,account"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
}

// OrderDetailQuery names the account an order belongs to
type OrderDetailQuery struct {
	Account string `form:"account" binding:"required,account"`
}

// SyncRequest triggers a re-sync. A blank account re-syncs every configured account.
type SyncRequest struct {
	Account string `json:"account" binding:"omitempty,account"`
}

// ReconcileOrdersRequest reconciles shipment labels for specific orders of one account
type ReconcileOrdersRequest struct {
	Account  string   `json:"account" binding:"required,account"`
	OrderIDs []string `json:"order_ids" binding:"required,min=1,max=100,dive,required"`
}

// ScanRequest registers a label scan at the packing station
type ScanRequest struct {
	Barcode   string `json:"barcode" binding:"required,max=64"`
	ScannedBy string `json:"scanned_by" binding:"omitempty,max=100"`
}

// TaskEnqueuedResponse is returned when work was handed to the background queue
type TaskEnqueuedResponse struct {
	TaskID   string `json:"task_id"`
	Queued   bool   `json:"queued"`
	Account  string `json:"account"`
	OrderIDs int    `json:"order_ids"`
}
