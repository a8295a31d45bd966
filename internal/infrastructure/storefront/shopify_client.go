package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/distribution"
)

const (
	defaultAPIVersion       = "2024-10"
	defaultRequestTimeout   = 20 * time.Second
	defaultMaxResponseBytes = 4 * 1024 * 1024
)

// ClientOptions configures a ShopifyClient
type ClientOptions struct {
	// APIVersion is the Admin API version path segment
	APIVersion string
	// RequestTimeout bounds each HTTP request
	RequestTimeout time.Duration
	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes int64
	// BaseURL overrides the https://{shop-domain} base, used by tests
	BaseURL string
	// Logger receives non-fatal adapter warnings
	Logger *zap.Logger
}

func (o *ClientOptions) applyDefaults() {
	if o.APIVersion == "" {
		o.APIVersion = defaultAPIVersion
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = defaultRequestTimeout
	}
	if o.MaxResponseBytes <= 0 {
		o.MaxResponseBytes = defaultMaxResponseBytes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// ShopifyClient implements distribution.StorefrontClient against the Shopify
// Admin REST API. One client per destination; the access token comes from the
// destination's credential blob.
type ShopifyClient struct {
	baseURL          string
	accessToken      string
	httpClient       *http.Client
	maxResponseBytes int64
	logger           *zap.Logger
}

// NewShopifyClient creates a client for one shop
func NewShopifyClient(shopDomain, accessToken string, opts ClientOptions) (*ShopifyClient, error) {
	if shopDomain == "" {
		return nil, fmt.Errorf("storefront: shop domain is required")
	}
	if accessToken == "" {
		return nil, fmt.Errorf("storefront: access token is required")
	}
	opts.applyDefaults()

	base := opts.BaseURL
	if base == "" {
		base = "https://" + shopDomain
	}

	return &ShopifyClient{
		baseURL:          fmt.Sprintf("%s/admin/api/%s", base, opts.APIVersion),
		accessToken:      accessToken,
		httpClient:       &http.Client{Timeout: opts.RequestTimeout},
		maxResponseBytes: opts.MaxResponseBytes,
		logger:           opts.Logger,
	}, nil
}

// CreateProduct creates the product and returns its remote id. Collection
// attachment is best effort: the product exists either way, and failing the
// whole job over a collect would orphan the remote product.
func (c *ShopifyClient) CreateProduct(ctx context.Context, payload distribution.ProductPayload) (distribution.RemoteRef, error) {
	body := shopifyProductRequest{Product: toShopifyProduct(payload, 0)}

	var resp shopifyProductResponse
	if err := c.doJSON(ctx, http.MethodPost, "/products.json", body, &resp); err != nil {
		return "", err
	}
	if resp.Product.ID == 0 {
		return "", distribution.ErrRemoteInvalidResponse
	}

	ref := distribution.RemoteRef(strconv.FormatInt(resp.Product.ID, 10))
	c.attachCollections(ctx, resp.Product.ID, payload.CollectionIDs)
	return ref, nil
}

// UpdateProduct replaces the remote product's attributes in place. Shopify
// keeps the id stable across updates.
func (c *ShopifyClient) UpdateProduct(ctx context.Context, ref distribution.RemoteRef, payload distribution.ProductPayload) (distribution.RemoteRef, error) {
	id, err := parseRef(ref)
	if err != nil {
		return "", err
	}

	body := shopifyProductRequest{Product: toShopifyProduct(payload, id)}

	var resp shopifyProductResponse
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/products/%d.json", id), body, &resp); err != nil {
		return "", err
	}

	c.attachCollections(ctx, id, payload.CollectionIDs)
	return ref, nil
}

// DeleteProduct removes the product from the shop
func (c *ShopifyClient) DeleteProduct(ctx context.Context, ref distribution.RemoteRef) error {
	id, err := parseRef(ref)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/products/%d.json", id), nil, nil)
}

// ReadInventory returns the shop's current quantity per SKU for the product
func (c *ShopifyClient) ReadInventory(ctx context.Context, ref distribution.RemoteRef) (map[string]int64, error) {
	remote, err := c.fetchProduct(ctx, ref)
	if err != nil {
		return nil, err
	}

	levels := make(map[string]int64, len(remote.Variants))
	for _, variant := range remote.Variants {
		levels[variant.SKU] = variant.InventoryQuantity
	}
	return levels, nil
}

// WriteInventory pushes committed levels. Shopify addresses inventory by
// inventory item, so the remote product is fetched once to map each level's
// SKU onto its inventory_item_id.
func (c *ShopifyClient) WriteInventory(ctx context.Context, ref distribution.RemoteRef, levels []distribution.InventoryLevel) error {
	if len(levels) == 0 {
		return nil
	}

	remote, err := c.fetchProduct(ctx, ref)
	if err != nil {
		return err
	}

	itemBySKU := make(map[string]int64, len(remote.Variants))
	for _, variant := range remote.Variants {
		itemBySKU[variant.SKU] = variant.InventoryItemID
	}

	for _, level := range levels {
		itemID, ok := itemBySKU[level.SKU]
		if !ok {
			return fmt.Errorf("%w: no remote variant for sku %q", distribution.ErrRemoteInvalidResponse, level.SKU)
		}
		body := shopifyInventorySetRequest{
			LocationID:      level.LocationID,
			InventoryItemID: itemID,
			Available:       level.Available,
		}
		if err := c.doJSON(ctx, http.MethodPost, "/inventory_levels/set.json", body, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *ShopifyClient) fetchProduct(ctx context.Context, ref distribution.RemoteRef) (*shopifyProduct, error) {
	id, err := parseRef(ref)
	if err != nil {
		return nil, err
	}

	var resp shopifyProductResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/products/%d.json", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Product, nil
}

func (c *ShopifyClient) attachCollections(ctx context.Context, productID int64, collectionIDs []string) {
	for _, collectionID := range collectionIDs {
		body := shopifyCollectRequest{Collect: shopifyCollect{
			ProductID:    productID,
			CollectionID: collectionID,
		}}
		if err := c.doJSON(ctx, http.MethodPost, "/collects.json", body, nil); err != nil {
			c.logger.Warn("collection attach failed",
				zap.Int64("product_id", productID),
				zap.String("collection_id", collectionID),
				zap.Error(err),
			)
		}
	}
}

// doJSON performs one request and decodes the response into out when out is
// non-nil. HTTP status classes map onto the distribution sentinels so callers
// never see raw status codes.
func (c *ShopifyClient) doJSON(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("storefront: encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("storefront: build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", distribution.ErrRemoteRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", distribution.ErrRemoteRequestFailed, err)
	}

	if resp.StatusCode >= 400 {
		return c.statusError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", distribution.ErrRemoteInvalidResponse, err)
		}
	}
	return nil
}

func (c *ShopifyClient) statusError(status int, body []byte) error {
	detail := ""
	var errResp shopifyErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Errors != nil {
		detail = fmt.Sprintf(": %v", errResp.Errors)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d%s", distribution.ErrRemoteAuthFailed, status, detail)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: HTTP %d%s", distribution.ErrRemoteProductNotFound, status, detail)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d%s", distribution.ErrRemoteRateLimited, status, detail)
	default:
		return fmt.Errorf("%w: HTTP %d%s", distribution.ErrRemoteRequestFailed, status, detail)
	}
}

func toShopifyProduct(payload distribution.ProductPayload, id int64) shopifyProduct {
	product := shopifyProduct{
		ID:          id,
		Title:       payload.Title,
		BodyHTML:    payload.BodyHTML,
		Vendor:      payload.Vendor,
		ProductType: payload.ProductType,
		Tags:        payload.Tags,
		Variants:    make([]shopifyVariant, 0, len(payload.Variants)),
	}
	for _, variant := range payload.Variants {
		sv := shopifyVariant{
			Title:    variant.Title,
			SKU:      variant.SKU,
			Price:    formatPrice(variant.Price),
			Position: variant.Position,
		}
		if !variant.CompareAtPrice.IsZero() {
			sv.CompareAtPrice = formatPrice(variant.CompareAtPrice)
		}
		product.Variants = append(product.Variants, sv)
	}
	return product
}

func parseRef(ref distribution.RemoteRef) (int64, error) {
	id, err := strconv.ParseInt(string(ref), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed remote ref %q", distribution.ErrRemoteInvalidResponse, ref)
	}
	return id, nil
}

var _ distribution.StorefrontClient = (*ShopifyClient)(nil)
