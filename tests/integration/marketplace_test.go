package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	marketplaceapp "github.com/shipdesk/backend/internal/application/marketplace"
	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/cache"
	"github.com/shipdesk/backend/internal/infrastructure/persistence"
	"github.com/shipdesk/backend/tests/testutil"
)

func TestOrderItemRepository_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	repo := persistence.NewGormOrderItemRepository(tdb.DB)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	first := testutil.NewOrderItem("ord-1", "item-1")
	second := testutil.NewOrderItem("ord-1", "item-2", testutil.WithPrice(1, "5.00"))
	require.NoError(t, repo.CreateBatch(ctx, []marketplace.OrderItem{first, second}))

	t.Run("existing items are left unchanged by a second batch", func(t *testing.T) {
		changed := testutil.NewOrderItem("ord-1", "item-1")
		changed.Title = "Changed title"
		require.NoError(t, repo.CreateBatch(ctx, []marketplace.OrderItem{changed}))

		stored, err := repo.FindByOrderItemID(ctx, "item-1")
		require.NoError(t, err)
		assert.Equal(t, first.Title, stored.Title)
		assert.True(t, first.UnitPrice.Equal(stored.UnitPrice))
	})

	t.Run("items of one order are returned together", func(t *testing.T) {
		items, err := repo.FindByOrderID(ctx, "ord-1")
		require.NoError(t, err)
		assert.Len(t, items, 2)

		total := marketplace.TotalValue(items)
		assert.Equal(t, "30", total.String())
	})

	t.Run("fulfilled marker is set once", func(t *testing.T) {
		require.NoError(t, repo.MarkFulfilled(ctx, "item-2"))
		require.NoError(t, repo.MarkFulfilled(ctx, "item-2"))

		stored, err := repo.FindByOrderItemID(ctx, "item-2")
		require.NoError(t, err)
		assert.True(t, stored.Fulfilled.IsFulfilled())
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		_, err := repo.FindByOrderItemID(ctx, "missing")
		assert.ErrorIs(t, err, marketplace.ErrNotFound)
	})
}

func TestLabelRepository_Postgres_UpsertByOrderItem(t *testing.T) {
	tdb := NewTestDB(t)
	items := persistence.NewGormOrderItemRepository(tdb.DB)
	labels := persistence.NewGormLabelRepository(tdb.DB)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	item := testutil.NewOrderItem("ord-7", "item-7")
	require.NoError(t, items.CreateBatch(ctx, []marketplace.OrderItem{item}))

	withoutBarcode, err := items.FindWithoutBarcode(ctx, testutil.TestAccount, 10)
	require.NoError(t, err)
	require.Len(t, withoutBarcode, 1)

	label, err := marketplace.NewLabelForItem(&item, "3SABC0001")
	require.NoError(t, err)
	require.NoError(t, labels.Upsert(ctx, label))

	relabel, err := marketplace.NewLabelForItem(&item, "3SABC0002")
	require.NoError(t, err)
	require.NoError(t, labels.Upsert(ctx, relabel))

	stored, err := labels.FindByBarcode(ctx, "3SABC0002")
	require.NoError(t, err)
	require.True(t, stored.HasBarcode())
	assert.Equal(t, "3SABC0002", *stored.Barcode)
	assert.Equal(t, "item-7", stored.OrderItemID)
	assert.Equal(t, "Jan Jansen", stored.RecipientName)

	_, err = labels.FindByBarcode(ctx, "3SABC0001")
	assert.ErrorIs(t, err, marketplace.ErrNotFound)

	withoutBarcode, err = items.FindWithoutBarcode(ctx, testutil.TestAccount, 10)
	require.NoError(t, err)
	assert.Empty(t, withoutBarcode)
}

func TestScanRegistrar_Postgres(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := testutil.ContextWithTimeout(t, 30*time.Second)

	itemRepo := persistence.NewGormOrderItemRepository(tdb.DB)
	labelRepo := persistence.NewGormLabelRepository(tdb.DB)
	imageRepo := persistence.NewGormProductImageRepository(tdb.DB)
	scanRepo := persistence.NewGormScanEventRepository(tdb.DB)

	item := testutil.NewOrderItem("ord-9", "item-9")
	sibling := testutil.NewOrderItem("ord-9", "item-10", testutil.WithEAN("8712345678913"), testutil.WithPrice(1, "4.00"))
	require.NoError(t, itemRepo.CreateBatch(ctx, []marketplace.OrderItem{item, sibling}))
	label, err := marketplace.NewLabelForItem(&item, "3SXYZ0009")
	require.NoError(t, err)
	require.NoError(t, labelRepo.Upsert(ctx, label))
	require.NoError(t, imageRepo.Upsert(ctx, &marketplace.ProductImage{
		EAN:       "8712345678913",
		ImageURL:  "https://media.example/stored.jpg",
		UpdatedAt: time.Now(),
	}))

	imageCache := cache.NewTieredCache("image", cache.NewTTLCache[string](time.Minute))
	images := marketplaceapp.NewImageResolver(nil, nil, imageRepo, imageCache)
	registrar := marketplaceapp.NewScanRegistrar(labelRepo, itemRepo, scanRepo, images, nil, zap.NewNop())

	first, err := registrar.RegisterScan(ctx, "3SXYZ0009", "packer-1")
	require.NoError(t, err)
	assert.False(t, first.IsRescan)
	assert.Equal(t, "item-9", first.Order.OrderItemID)
	assert.Len(t, first.Items, 2)
	assert.Equal(t, "29", first.Total.String())

	displayed := map[string]string{}
	for _, si := range first.Items {
		displayed[si.OrderItemID] = si.DisplayImage
	}
	assert.Equal(t, "https://media.example/stored.jpg", displayed["item-10"])

	again, err := registrar.RegisterScan(ctx, "3SXYZ0009", "")
	require.NoError(t, err)
	assert.True(t, again.IsRescan)
	assert.Equal(t, marketplaceapp.UnknownScanner, again.Scan.ScannedBy)
	assert.True(t, again.Scan.ScannedAt.After(first.Scan.ScannedAt))

	_, err = registrar.RegisterScan(ctx, "unknown-barcode", "packer-1")
	assert.ErrorIs(t, err, marketplace.ErrNotFound)
}
