package ecommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

// maxMarketplaceResponseSize limits the response body size to prevent memory exhaustion
const maxMarketplaceResponseSize = 10 * 1024 * 1024 // 10MB max response

// MarketplaceClient talks to the marketplace auth and retailer APIs.
// It is safe for concurrent use.
type MarketplaceClient struct {
	config     *MarketplaceConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	validate   *validator.Validate
	logger     *zap.Logger
}

// MarketplaceClientOption configures a MarketplaceClient
type MarketplaceClientOption func(*MarketplaceClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) MarketplaceClientOption {
	return func(c *MarketplaceClient) {
		c.httpClient = client
	}
}

// WithClientLogger sets the logger used for dropped payload entries
func WithClientLogger(logger *zap.Logger) MarketplaceClientOption {
	return func(c *MarketplaceClient) {
		c.logger = logger
	}
}

// NewMarketplaceClient creates a new client with the given configuration
func NewMarketplaceClient(config *MarketplaceConfig, opts ...MarketplaceClientOption) (*MarketplaceClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &MarketplaceClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		validate: validator.New(),
		logger:   zap.NewNop(),
	}
	if config.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.RateLimitBurst)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var (
	_ marketplace.TokenIssuer    = (*MarketplaceClient)(nil)
	_ marketplace.OrderSource    = (*MarketplaceClient)(nil)
	_ marketplace.CatalogSource  = (*MarketplaceClient)(nil)
	_ marketplace.ShipmentSource = (*MarketplaceClient)(nil)
)

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

// IssueToken requests a bearer token for the account
func (c *MarketplaceClient) IssueToken(ctx context.Context, account marketplace.Account) (string, error) {
	payload, err := json.Marshal(tokenRequest{Account: account.String()})
	if err != nil {
		return "", fmt.Errorf("%w: failed to marshal token request: %v", marketplace.ErrUpstreamAuthFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.AuthURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", marketplace.ErrUpstreamAuthFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if creds, ok := c.config.Credentials[account]; ok && creds.ClientID != "" {
		req.SetBasicAuth(creds.ClientID, creds.ClientSecret)
	}

	resp, err := c.do(req)
	if err != nil {
		return "", transportError(marketplace.ErrUpstreamAuthFailure, "token", err)
	}
	if !resp.ok() {
		return "", fmt.Errorf("%w: account %s: %s", marketplace.ErrUpstreamAuthFailure, account, resp.errorMessage())
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.body, &tok); err != nil {
		return "", fmt.Errorf("%w: failed to parse token response: %v", marketplace.ErrUpstreamAuthFailure, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: account %s: response carried no access token", marketplace.ErrUpstreamAuthFailure, account)
	}
	return tok.AccessToken, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// ListOrders returns one page of the open order index
func (c *MarketplaceClient) ListOrders(ctx context.Context, token string, page int) ([]marketplace.PlatformOrderSummary, error) {
	resp, err := c.get(ctx, token, "/orders", pageQuery(page))
	if err != nil {
		return nil, transportError(marketplace.ErrUpstreamListFailure, "GET /orders", err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: GET /orders page %d: %s", marketplace.ErrUpstreamListFailure, page, resp.errorMessage())
	}

	var list orderListResponse
	if err := resp.decode(&list); err != nil {
		return nil, fmt.Errorf("%w: GET /orders: %v", marketplace.ErrUpstreamListFailure, err)
	}

	orders := make([]marketplace.PlatformOrderSummary, 0, len(list.Orders))
	for _, o := range list.Orders {
		if err := c.validate.Struct(o); err != nil {
			c.logger.Warn("Dropping invalid order index entry",
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// GetOrder returns the full detail of one order
func (c *MarketplaceClient) GetOrder(ctx context.Context, token string, orderID string) (*marketplace.PlatformOrder, error) {
	path := "/orders/" + url.PathEscape(orderID)
	resp, err := c.get(ctx, token, path, nil)
	if err != nil {
		return nil, transportError(marketplace.ErrUpstreamFetchFailure, "GET "+path, err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: GET %s: %s", marketplace.ErrUpstreamFetchFailure, path, resp.errorMessage())
	}

	var order marketplace.PlatformOrder
	if err := resp.decode(&order); err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", marketplace.ErrUpstreamFetchFailure, path, err)
	}
	if err := c.validate.Struct(&order); err != nil {
		return nil, fmt.Errorf("%w: GET %s: invalid payload: %v", marketplace.ErrUpstreamFetchFailure, path, err)
	}

	items := make([]marketplace.PlatformOrderItem, 0, len(order.OrderItems))
	for i := range order.OrderItems {
		if err := c.validate.Struct(&order.OrderItems[i]); err != nil {
			c.logger.Warn("Dropping invalid order line item",
				zap.String("order_id", order.OrderID),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}
		items = append(items, order.OrderItems[i])
	}
	order.OrderItems = items
	return &order, nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

// GetProductAssets returns the primary image assets of a product
func (c *MarketplaceClient) GetProductAssets(ctx context.Context, token string, ean string) ([]marketplace.PlatformAsset, error) {
	path := "/content/catalog-products/" + url.PathEscape(ean) + "/assets"
	resp, err := c.get(ctx, token, path, url.Values{"usage": []string{"PRIMARY"}})
	if err != nil {
		return nil, transportError(marketplace.ErrUpstreamFetchFailure, "GET "+path, err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: GET %s: %s", marketplace.ErrUpstreamFetchFailure, path, resp.errorMessage())
	}

	var assets assetsResponse
	if err := resp.decode(&assets); err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", marketplace.ErrUpstreamFetchFailure, path, err)
	}
	for i := range assets.Assets {
		for j := range assets.Assets[i].Variants {
			if v := assets.Assets[i].Variants[j].URL; v != nil {
				abs := absoluteURL(c.config.APIBaseURL, *v)
				assets.Assets[i].Variants[j].URL = &abs
			}
		}
	}
	return assets.Assets, nil
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// ListShipments returns one page of the shipment index
func (c *MarketplaceClient) ListShipments(ctx context.Context, token string, page int) ([]marketplace.PlatformShipmentSummary, error) {
	resp, err := c.get(ctx, token, "/shipments", pageQuery(page))
	if err != nil {
		return nil, transportError(marketplace.ErrUpstreamListFailure, "GET /shipments", err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: GET /shipments page %d: %s", marketplace.ErrUpstreamListFailure, page, resp.errorMessage())
	}

	var list shipmentListResponse
	if err := resp.decode(&list); err != nil {
		return nil, fmt.Errorf("%w: GET /shipments: %v", marketplace.ErrUpstreamListFailure, err)
	}

	shipments := make([]marketplace.PlatformShipmentSummary, 0, len(list.Shipments))
	for _, s := range list.Shipments {
		if err := c.validate.Struct(s); err != nil {
			c.logger.Warn("Dropping invalid shipment index entry",
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}

// GetShipment returns the detail of one shipment
func (c *MarketplaceClient) GetShipment(ctx context.Context, token string, shipmentID string) (*marketplace.PlatformShipment, error) {
	path := "/shipments/" + url.PathEscape(shipmentID)
	resp, err := c.get(ctx, token, path, nil)
	if err != nil {
		return nil, transportError(marketplace.ErrUpstreamFetchFailure, "GET "+path, err)
	}
	if !resp.ok() {
		return nil, fmt.Errorf("%w: GET %s: %s", marketplace.ErrUpstreamFetchFailure, path, resp.errorMessage())
	}

	var shipment marketplace.PlatformShipment
	if err := resp.decode(&shipment); err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", marketplace.ErrUpstreamFetchFailure, path, err)
	}
	if err := c.validate.Struct(&shipment); err != nil {
		return nil, fmt.Errorf("%w: GET %s: invalid payload: %v", marketplace.ErrUpstreamFetchFailure, path, err)
	}
	return &shipment, nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

// rawResponse is a fully read upstream response
type rawResponse struct {
	statusCode int
	status     string
	body       []byte
}

func (r *rawResponse) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

func (r *rawResponse) decode(v any) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// errorMessage extracts the upstream problem detail, falling back to the status line
func (r *rawResponse) errorMessage() string {
	var problem problemResponse
	if err := json.Unmarshal(r.body, &problem); err == nil {
		if msg := problem.Message(); msg != "" {
			return msg
		}
	}
	if r.status != "" {
		return "HTTP " + r.status
	}
	return "HTTP " + strconv.Itoa(r.statusCode) + " " + http.StatusText(r.statusCode)
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func (c *MarketplaceClient) get(ctx context.Context, token, path string, query url.Values) (*rawResponse, error) {
	endpoint := c.config.APIBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", c.config.AcceptHeader)
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req)
}

func (c *MarketplaceClient) do(req *http.Request) (*rawResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMarketplaceResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &rawResponse{
		statusCode: resp.StatusCode,
		status:     resp.Status,
		body:       body,
	}, nil
}

// transportError wraps a failed round trip in the operation's sentinel.
// Timeouts additionally match ErrUpstreamTimeout.
func transportError(sentinel error, op string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %w: %s: %v", marketplace.ErrUpstreamTimeout, sentinel, op, err)
	}
	return fmt.Errorf("%w: %s: %v", sentinel, op, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// absoluteURL resolves host-relative asset URLs against the API base
func absoluteURL(base, raw string) string {
	if raw == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	u, err := url.Parse(base)
	if err != nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.ResolveReference(ref).String()
}
