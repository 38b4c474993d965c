package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
	"github.com/shipdesk/backend/internal/infrastructure/queue"
	"github.com/shipdesk/backend/internal/interfaces/http/dto"
)

// OrderLister lists one page of an account's open orders with their items
type OrderLister interface {
	ListOrdersPage(ctx context.Context, page int, account marketplace.Account) ([]marketplace.OrderDetails, error)
}

// OrderFetcher fetches and maps a single order
type OrderFetcher interface {
	FetchOrderDetail(ctx context.Context, orderID string, account marketplace.Account) ([]marketplace.OrderItem, error)
}

// OrderResyncer re-syncs stored order items from the marketplace
type OrderResyncer interface {
	ResyncAll(ctx context.Context) []*marketplace.SyncResult
	ResyncAccount(ctx context.Context, account marketplace.Account) *marketplace.SyncResult
}

// ShipmentReconciler attaches shipment barcodes to stored order items
type ShipmentReconciler interface {
	ReconcileAll(ctx context.Context) *marketplace.ReconcileSummary
	ReconcileOrders(ctx context.Context, orderIDs []string, account marketplace.Account) (*marketplace.AccountReconcileResult, error)
}

// ReconcileQueue hands targeted reconciliations to the background worker
type ReconcileQueue interface {
	Enabled() bool
	EnqueueReconcileOrders(ctx context.Context, payload queue.ReconcileOrdersPayload, opts ...asynq.Option) (string, error)
}

// MarketplaceHandler serves the marketplace order, sync and reconcile endpoints
type MarketplaceHandler struct {
	BaseHandler
	lister     OrderLister
	fetcher    OrderFetcher
	resyncer   OrderResyncer
	reconciler ShipmentReconciler
	queue      ReconcileQueue
	accounts   map[marketplace.Account]struct{}
}

// NewMarketplaceHandler creates a MarketplaceHandler. Requests naming an account
// outside accounts are rejected; an empty list accepts any account. tasks may be nil.
func NewMarketplaceHandler(
	lister OrderLister,
	fetcher OrderFetcher,
	resyncer OrderResyncer,
	reconciler ShipmentReconciler,
	tasks ReconcileQueue,
	accounts []marketplace.Account,
) *MarketplaceHandler {
	known := make(map[marketplace.Account]struct{}, len(accounts))
	for _, a := range accounts {
		known[a] = struct{}{}
	}
	return &MarketplaceHandler{
		lister:     lister,
		fetcher:    fetcher,
		resyncer:   resyncer,
		reconciler: reconciler,
		queue:      tasks,
		accounts:   known,
	}
}

// RegisterRoutes mounts the handler under rg
func (h *MarketplaceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/marketplace")
	g.GET("/orders", h.ListOrders)
	g.GET("/orders/:orderId", h.GetOrder)
	g.POST("/sync", h.Sync)
	g.POST("/reconcile", h.ReconcileAll)
	g.POST("/reconcile/orders", h.ReconcileOrders)
}

// checkAccount rejects accounts that are not configured and writes the response
func (h *MarketplaceHandler) checkAccount(c *gin.Context, account string) bool {
	if len(h.accounts) == 0 {
		return true
	}
	if _, ok := h.accounts[marketplace.Account(account)]; ok {
		return true
	}
	h.NotFound(c, "unknown marketplace account: "+account)
	return false
}

// ListOrders handles GET /marketplace/orders?account=&page=
//
// @ID           listMarketplaceOrders
// @Summary      List open orders
// @Description  Lists one page of the account's open orders, each with its mapped and stored items
// @Tags         marketplace
// @Produce      json
// @Param        account query string true  "Marketplace account"
// @Param        page    query int    false "Page number, starting at 1"
// @Success      200 {object} dto.Response{data=[]marketplace.OrderDetails}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /marketplace/orders [get]
func (h *MarketplaceHandler) ListOrders(c *gin.Context) {
	var query dto.ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.checkAccount(c, query.Account) {
		return
	}
	page := max(query.Page, 1)

	orders, err := h.lister.ListOrdersPage(c.Request.Context(), page, marketplace.Account(query.Account))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, orders, page, len(orders))
}

// GetOrder handles GET /marketplace/orders/:orderId?account=
//
// @ID           getMarketplaceOrder
// @Summary      Fetch one order
// @Description  Fetches the order from the marketplace and returns its stored items, inserting them on first sight
// @Tags         marketplace
// @Produce      json
// @Param        orderId path  string true "Marketplace order id"
// @Param        account query string true "Marketplace account"
// @Success      200 {object} dto.Response{data=marketplace.OrderDetails}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /marketplace/orders/{orderId} [get]
func (h *MarketplaceHandler) GetOrder(c *gin.Context) {
	var query dto.OrderDetailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.checkAccount(c, query.Account) {
		return
	}

	orderID := c.Param("orderId")
	items, err := h.fetcher.FetchOrderDetail(c.Request.Context(), orderID, marketplace.Account(query.Account))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, marketplace.OrderDetails{OrderID: orderID, Details: items})
}

// Sync handles POST /marketplace/sync. A blank account re-syncs every account.
//
// @ID           syncMarketplaceOrders
// @Summary      Re-sync stored orders
// @Description  Re-fetches open orders and refreshes the stored items of one account, or of every account when none is given
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        request body dto.SyncRequest false "Account to sync"
// @Success      200 {object} dto.Response{data=[]marketplace.SyncResult}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /marketplace/sync [post]
func (h *MarketplaceHandler) Sync(c *gin.Context) {
	var req dto.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.Account == "" {
		h.Success(c, h.resyncer.ResyncAll(ctx))
		return
	}
	if !h.checkAccount(c, req.Account) {
		return
	}
	h.Success(c, []*marketplace.SyncResult{h.resyncer.ResyncAccount(ctx, marketplace.Account(req.Account))})
}

// ReconcileAll handles POST /marketplace/reconcile
//
// @ID           reconcileMarketplaceShipments
// @Summary      Reconcile shipments
// @Description  Attaches shipment barcodes to stored items awaiting one, across every configured account
// @Tags         marketplace
// @Produce      json
// @Success      200 {object} dto.Response{data=marketplace.ReconcileSummary}
// @Router       /marketplace/reconcile [post]
func (h *MarketplaceHandler) ReconcileAll(c *gin.Context) {
	h.Success(c, h.reconciler.ReconcileAll(c.Request.Context()))
}

// ReconcileOrders handles POST /marketplace/reconcile/orders. With the queue enabled
// the work is enqueued and 202 returned; otherwise, or when enqueueing fails, it runs inline.
//
// @ID           reconcileMarketplaceOrders
// @Summary      Reconcile selected orders
// @Description  Reconciles shipments for the given orders of one account
// @Tags         marketplace
// @Accept       json
// @Produce      json
// @Param        request body dto.ReconcileOrdersRequest true "Orders to reconcile"
// @Success      200 {object} dto.Response{data=marketplace.AccountReconcileResult}
// @Success      202 {object} dto.Response{data=dto.TaskEnqueuedResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /marketplace/reconcile/orders [post]
func (h *MarketplaceHandler) ReconcileOrders(c *gin.Context) {
	var req dto.ReconcileOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if !h.checkAccount(c, req.Account) {
		return
	}

	ctx := c.Request.Context()
	if h.queue != nil && h.queue.Enabled() {
		taskID, err := h.queue.EnqueueReconcileOrders(ctx, queue.ReconcileOrdersPayload{
			Account:  req.Account,
			OrderIDs: req.OrderIDs,
		})
		if err == nil {
			h.Accepted(c, dto.TaskEnqueuedResponse{
				TaskID:   taskID,
				Queued:   true,
				Account:  req.Account,
				OrderIDs: len(req.OrderIDs),
			})
			return
		}
		logger.L(ctx).Warn("Queue unavailable, reconciling inline",
			zap.String("account", req.Account),
			zap.Error(err),
		)
	}

	result, err := h.reconciler.ReconcileOrders(ctx, req.OrderIDs, marketplace.Account(req.Account))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
