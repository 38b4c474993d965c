package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/queue"
	"github.com/shipdesk/backend/internal/interfaces/http/dto"
	"github.com/shipdesk/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type MockOrderLister struct {
	mock.Mock
}

func (m *MockOrderLister) ListOrdersPage(ctx context.Context, page int, account marketplace.Account) ([]marketplace.OrderDetails, error) {
	args := m.Called(ctx, page, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.OrderDetails), args.Error(1)
}

type MockOrderFetcher struct {
	mock.Mock
}

func (m *MockOrderFetcher) FetchOrderDetail(ctx context.Context, orderID string, account marketplace.Account) ([]marketplace.OrderItem, error) {
	args := m.Called(ctx, orderID, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]marketplace.OrderItem), args.Error(1)
}

type MockOrderResyncer struct {
	mock.Mock
}

func (m *MockOrderResyncer) ResyncAll(ctx context.Context) []*marketplace.SyncResult {
	args := m.Called(ctx)
	return args.Get(0).([]*marketplace.SyncResult)
}

func (m *MockOrderResyncer) ResyncAccount(ctx context.Context, account marketplace.Account) *marketplace.SyncResult {
	args := m.Called(ctx, account)
	return args.Get(0).(*marketplace.SyncResult)
}

type MockShipmentReconciler struct {
	mock.Mock
}

func (m *MockShipmentReconciler) ReconcileAll(ctx context.Context) *marketplace.ReconcileSummary {
	args := m.Called(ctx)
	return args.Get(0).(*marketplace.ReconcileSummary)
}

func (m *MockShipmentReconciler) ReconcileOrders(ctx context.Context, orderIDs []string, account marketplace.Account) (*marketplace.AccountReconcileResult, error) {
	args := m.Called(ctx, orderIDs, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.AccountReconcileResult), args.Error(1)
}

type MockReconcileQueue struct {
	mock.Mock
}

func (m *MockReconcileQueue) Enabled() bool {
	return m.Called().Bool(0)
}

func (m *MockReconcileQueue) EnqueueReconcileOrders(ctx context.Context, payload queue.ReconcileOrdersPayload, opts ...asynq.Option) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

type MockScanRegistrar struct {
	mock.Mock
}

func (m *MockScanRegistrar) RegisterScan(ctx context.Context, barcode, scannedBy string) (*marketplace.ScanResult, error) {
	args := m.Called(ctx, barcode, scannedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*marketplace.ScanResult), args.Error(1)
}

// routeRegistrar is implemented by every handler that mounts its own routes
type routeRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

func newTestEngine(handlers ...routeRegistrar) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w, resp
}
