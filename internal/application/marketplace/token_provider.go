package marketplace

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shipdesk/backend/internal/domain/marketplace"
	"github.com/shipdesk/backend/internal/infrastructure/logger"
)

const tokenKeyPrefix = "token:"

// TokenProvider returns a bearer token per account, issuing a new one only when the
// cached token has expired
type TokenProvider struct {
	issuer  marketplace.TokenIssuer
	cache   marketplace.ValueCache
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewTokenProvider creates a TokenProvider. The cache TTL decides how long a token is reused.
func NewTokenProvider(issuer marketplace.TokenIssuer, cache marketplace.ValueCache, metrics Metrics, log *zap.Logger) *TokenProvider {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenProvider{
		issuer:  issuer,
		cache:   cache,
		metrics: metrics,
		logger:  log,
		now:     time.Now,
	}
}

// GetToken returns the account's token from cache or the auth API.
// Failures of the auth API are wrapped in ErrUpstreamAuthFailure and never retried here.
func (p *TokenProvider) GetToken(ctx context.Context, account marketplace.Account) (*marketplace.AccessToken, error) {
	if account.IsBlank() {
		return nil, fmt.Errorf("%w: account is required", marketplace.ErrInvalidArgument)
	}

	key := tokenKeyPrefix + account.String()
	if token, ok := p.cache.Get(ctx, key); ok {
		return &marketplace.AccessToken{Token: token, Account: account}, nil
	}

	token, err := p.issuer.IssueToken(ctx, account)
	if err != nil {
		p.metrics.RecordUpstreamFailure(ctx, OpIssueToken)
		logger.WithLogger(ctx, p.logger).Warn("Failed to issue access token",
			zap.String("account", account.String()),
			zap.Error(err),
		)
		return nil, withSentinel(marketplace.ErrUpstreamAuthFailure, err)
	}

	p.cache.Set(ctx, key, token)
	return &marketplace.AccessToken{
		Token:     token,
		Account:   account,
		FetchedAt: p.now(),
	}, nil
}
