package marketplace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

func TestImageResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("blank ean returns placeholder", func(t *testing.T) {
		h := newHarness()
		assert.Equal(t, "/placeholder.png", h.resolver.Resolve(ctx, " ", "shop-a"))
		h.catalog.AssertNotCalled(t, "GetProductAssets", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second variant is preferred, stored and cached", func(t *testing.T) {
		h := newHarness()
		h.issuer.On("IssueToken", mock.Anything, marketplace.Account("shop-a")).Return("tok", nil)
		h.catalog.On("GetProductAssets", mock.Anything, "tok", "871").
			Return(assetWithVariants("https://cdn/small.jpg", "https://cdn/medium.jpg"), nil).Once()

		assert.Equal(t, "https://cdn/medium.jpg", h.resolver.Resolve(ctx, "871", "shop-a"))
		assert.Equal(t, "https://cdn/medium.jpg", h.resolver.Resolve(ctx, "871", "shop-a"))

		h.catalog.AssertNumberOfCalls(t, "GetProductAssets", 1)
		stored, err := h.images.FindByEAN(ctx, "871")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/medium.jpg", stored.ImageURL)
	})

	t.Run("single variant falls back to index zero", func(t *testing.T) {
		h := newHarness()
		h.issuer.On("IssueToken", mock.Anything, mock.Anything).Return("tok", nil)
		h.catalog.On("GetProductAssets", mock.Anything, "tok", "872").
			Return(assetWithVariants("https://cdn/only.jpg"), nil)

		assert.Equal(t, "https://cdn/only.jpg", h.resolver.Resolve(ctx, "872", "shop-a"))
	})

	t.Run("stored image is used without upstream call", func(t *testing.T) {
		h := newHarness()
		require.NoError(t, h.images.Upsert(ctx, &marketplace.ProductImage{EAN: "873", ImageURL: "https://cdn/stored.jpg"}))

		assert.Equal(t, "https://cdn/stored.jpg", h.resolver.Resolve(ctx, "873", "shop-a"))
		h.issuer.AssertNotCalled(t, "IssueToken", mock.Anything, mock.Anything)
	})

	t.Run("upstream failure yields placeholder", func(t *testing.T) {
		h := newHarness()
		h.issuer.On("IssueToken", mock.Anything, mock.Anything).Return("tok", nil)
		h.catalog.On("GetProductAssets", mock.Anything, "tok", "874").
			Return(nil, errors.New("boom"))

		assert.Equal(t, "/placeholder.png", h.resolver.Resolve(ctx, "874", "shop-a"))
		assert.Equal(t, 1, h.metrics.failureCount(OpProductAssets))
		assert.Equal(t, 0, h.images.upserts)
	})

	t.Run("token failure yields placeholder", func(t *testing.T) {
		h := newHarness()
		h.issuer.On("IssueToken", mock.Anything, mock.Anything).Return("", errors.New("denied"))

		assert.Equal(t, "/placeholder.png", h.resolver.Resolve(ctx, "875", "shop-a"))
		h.catalog.AssertNotCalled(t, "GetProductAssets", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("asset without variants yields placeholder", func(t *testing.T) {
		h := newHarness()
		h.issuer.On("IssueToken", mock.Anything, mock.Anything).Return("tok", nil)
		h.catalog.On("GetProductAssets", mock.Anything, "tok", "876").
			Return([]marketplace.PlatformAsset{{Variants: nil}}, nil)

		assert.Equal(t, "/placeholder.png", h.resolver.Resolve(ctx, "876", "shop-a"))
	})
}

func TestImageResolver_Cached(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	require.NoError(t, h.images.Upsert(ctx, &marketplace.ProductImage{EAN: "871", ImageURL: "https://cdn/a.jpg"}))

	assert.Equal(t, "https://cdn/a.jpg", h.resolver.Cached(ctx, "871"))
	assert.Equal(t, "/placeholder.png", h.resolver.Cached(ctx, "999"))
	assert.Equal(t, "/placeholder.png", h.resolver.Cached(ctx, ""))

	h.issuer.AssertNotCalled(t, "IssueToken", mock.Anything, mock.Anything)
	h.catalog.AssertNotCalled(t, "GetProductAssets", mock.Anything, mock.Anything, mock.Anything)
}

func TestPickVariantURL(t *testing.T) {
	tests := []struct {
		name   string
		assets []marketplace.PlatformAsset
		want   string
	}{
		{"no assets", nil, ""},
		{"two variants", assetWithVariants("a", "b"), "b"},
		{"three variants", assetWithVariants("a", "b", "c"), "b"},
		{"one variant", assetWithVariants("a"), "a"},
		{"blank preferred url", assetWithVariants("a", "  "), ""},
		{
			"first asset empty",
			append([]marketplace.PlatformAsset{{}}, assetWithVariants("x", "y")...),
			"y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickVariantURL(tt.assets))
		})
	}
}
