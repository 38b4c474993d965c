package marketplace

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
)

const (
	imageKeyPrefix = "image:"

	// preferredVariant is the asset rendition shown on labels and scan screens.
	// Assets with a single rendition fall back to index 0.
	preferredVariant = 1
)

// DefaultPlaceholderImage is shown when no product image can be resolved
const DefaultPlaceholderImage = "/static/img/no-image.png"

// ImageResolver resolves a product's display image by EAN.
// Lookups go cache, then store, then the catalog API. It never returns an error:
// every failure degrades to the placeholder image.
type ImageResolver struct {
	tokens      *TokenProvider
	catalog     marketplace.CatalogSource
	images      marketplace.ProductImageRepository
	cache       marketplace.ValueCache
	placeholder string
	metrics     Metrics
	logger      *zap.Logger
}

// ImageResolverOption configures an ImageResolver
type ImageResolverOption func(*ImageResolver)

// WithPlaceholder overrides the placeholder image URL
func WithPlaceholder(url string) ImageResolverOption {
	return func(r *ImageResolver) {
		if url != "" {
			r.placeholder = url
		}
	}
}

// WithImageMetrics sets the metrics recorder
func WithImageMetrics(m Metrics) ImageResolverOption {
	return func(r *ImageResolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithImageLogger sets the logger
func WithImageLogger(l *zap.Logger) ImageResolverOption {
	return func(r *ImageResolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewImageResolver creates an ImageResolver
func NewImageResolver(
	tokens *TokenProvider,
	catalog marketplace.CatalogSource,
	images marketplace.ProductImageRepository,
	cache marketplace.ValueCache,
	opts ...ImageResolverOption,
) *ImageResolver {
	r := &ImageResolver{
		tokens:      tokens,
		catalog:     catalog,
		images:      images,
		cache:       cache,
		placeholder: DefaultPlaceholderImage,
		metrics:     NopMetrics{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Placeholder returns the image used when nothing can be resolved
func (r *ImageResolver) Placeholder() string {
	return r.placeholder
}

// Resolve returns the image URL of a product, asking the catalog API with the
// account's token when neither cache nor store know it
func (r *ImageResolver) Resolve(ctx context.Context, ean string, account marketplace.Account) string {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return r.placeholder
	}
	if url, ok := r.lookup(ctx, ean); ok {
		return url
	}

	log := logger.WithLogger(ctx, r.logger).With(
		zap.String("ean", ean),
		zap.String("account", account.String()),
	)

	token, err := r.tokens.GetToken(ctx, account)
	if err != nil {
		log.Warn("Image lookup skipped, no access token", zap.Error(err))
		return r.placeholder
	}

	assets, err := r.catalog.GetProductAssets(ctx, token.Token, ean)
	if err != nil {
		r.metrics.RecordUpstreamFailure(ctx, OpProductAssets)
		log.Warn("Failed to fetch product assets", zap.Error(err))
		return r.placeholder
	}

	url := pickVariantURL(assets)
	if url == "" {
		log.Debug("Product has no usable image variant")
		return r.placeholder
	}

	if err := r.images.Upsert(ctx, &marketplace.ProductImage{
		EAN:       ean,
		ImageURL:  url,
		UpdatedAt: time.Now(),
	}); err != nil {
		log.Warn("Failed to store product image", zap.Error(err))
	}
	r.cache.Set(ctx, imageKeyPrefix+ean, url)
	return url
}

// Cached returns the image URL known to cache or store, never calling upstream
func (r *ImageResolver) Cached(ctx context.Context, ean string) string {
	ean = strings.TrimSpace(ean)
	if ean == "" {
		return r.placeholder
	}
	if url, ok := r.lookup(ctx, ean); ok {
		return url
	}
	return r.placeholder
}

// lookup checks the cache, then the store. A store hit is written back to the cache.
func (r *ImageResolver) lookup(ctx context.Context, ean string) (string, bool) {
	key := imageKeyPrefix + ean
	if url, ok := r.cache.Get(ctx, key); ok {
		return url, true
	}

	stored, err := r.images.FindByEAN(ctx, ean)
	if err != nil {
		if !errors.Is(err, marketplace.ErrNotFound) {
			logger.WithLogger(ctx, r.logger).Warn("Failed to read stored product image",
				zap.String("ean", ean),
				zap.Error(err),
			)
		}
		return "", false
	}
	if stored.ImageURL == "" {
		return "", false
	}
	r.cache.Set(ctx, key, stored.ImageURL)
	return stored.ImageURL, true
}

// pickVariantURL takes the preferred rendition of the first asset that has one
func pickVariantURL(assets []marketplace.PlatformAsset) string {
	for _, asset := range assets {
		variants := asset.Variants
		if len(variants) == 0 {
			continue
		}
		idx := preferredVariant
		if idx >= len(variants) {
			idx = 0
		}
		if u := variants[idx].URL; u != nil && strings.TrimSpace(*u) != "" {
			return strings.TrimSpace(*u)
		}
	}
	return ""
}
