package marketplace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

func newTestLister(h *harness) *OrderLister {
	return NewOrderLister(h.tokens, h.orders, h.fetcher, 2, h.metrics, zap.NewNop())
}

func TestOrderLister_ListOrdersPage(t *testing.T) {
	h := newHarness()
	lister := newTestLister(h)
	ctx := context.Background()

	h.issuer.On("IssueToken", mock.Anything, marketplace.Account("shop-a")).Return("tok", nil)
	h.orders.On("ListOrders", mock.Anything, "tok", 2).Return([]marketplace.PlatformOrderSummary{
		{OrderID: "A1"},
		{OrderID: "A2"},
		{OrderID: "A3"},
	}, nil)
	h.orders.On("GetOrder", mock.Anything, "tok", "A1").Return(platformOrder("A1", platformLine("I1", "871")), nil)
	h.orders.On("GetOrder", mock.Anything, "tok", "A2").Return(nil, errors.New("HTTP 500"))
	h.orders.On("GetOrder", mock.Anything, "tok", "A3").Return(platformOrder("A3",
		platformLine("I3", "873"),
		platformLine("I4", "874"),
	), nil)
	h.catalog.On("GetProductAssets", mock.Anything, "tok", mock.Anything).Return(assetWithVariants("img"), nil)

	page, err := lister.ListOrdersPage(ctx, 2, "shop-a")
	require.NoError(t, err)
	require.Len(t, page, 3)

	assert.Equal(t, "A1", page[0].OrderID)
	assert.Len(t, page[0].Details, 1)
	assert.Equal(t, "A2", page[1].OrderID)
	assert.NotNil(t, page[1].Details)
	assert.Empty(t, page[1].Details)
	assert.Equal(t, "A3", page[2].OrderID)
	assert.Len(t, page[2].Details, 2)
}

func TestOrderLister_ListOrdersPage_NormalisesPage(t *testing.T) {
	h := newHarness()
	lister := newTestLister(h)
	h.issuer.On("IssueToken", mock.Anything, mock.Anything).Return("tok", nil)
	h.orders.On("ListOrders", mock.Anything, "tok", 1).Return([]marketplace.PlatformOrderSummary{}, nil)

	page, err := lister.ListOrdersPage(context.Background(), 0, "shop-a")
	require.NoError(t, err)
	assert.NotNil(t, page)
	assert.Empty(t, page)
	h.orders.AssertCalled(t, "ListOrders", mock.Anything, "tok", 1)
}

func TestOrderLister_ListOrdersPage_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("blank account", func(t *testing.T) {
		h := newHarness()
		_, err := newTestLister(h).ListOrdersPage(ctx, 1, " ")
		assert.ErrorIs(t, err, marketplace.ErrInvalidArgument)
	})

	t.Run("auth failure", func(t *testing.T) {
		h := newHarness()
		h.issuer.On("IssueToken", mock.Anything, mock.Anything).Return("", errors.New("denied"))

		_, err := newTestLister(h).ListOrdersPage(ctx, 1, "shop-a")
		assert.ErrorIs(t, err, marketplace.ErrUpstreamAuthFailure)
		h.orders.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("list failure keeps upstream detail", func(t *testing.T) {
		h := newHarness()
		h.issuer.On("IssueToken", mock.Anything, mock.Anything).Return("tok", nil)
		h.orders.On("ListOrders", mock.Anything, "tok", 1).Return(nil, errors.New("HTTP 503 Service Unavailable"))

		_, err := newTestLister(h).ListOrdersPage(ctx, 1, "shop-a")
		assert.ErrorIs(t, err, marketplace.ErrUpstreamListFailure)
		assert.Contains(t, err.Error(), "HTTP 503 Service Unavailable")
		assert.Equal(t, 1, h.metrics.failureCount(OpListOrders))
	})
}
