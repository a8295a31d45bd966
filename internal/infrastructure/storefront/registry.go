package storefront

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/infrastructure/config"
)

// credentials is the shape of the destination's opaque credential blob as
// written by the connect flow
type credentials struct {
	AccessToken string `json:"access_token"`
}

// Registry implements distribution.ClientRegistry for Shopify-backed
// destinations. Clients are cached per destination id; a destination edit
// bumps its UpdatedAt, which is not tracked here, so the cache entry is keyed
// on credentials too.
type Registry struct {
	cfg    config.StorefrontConfig
	logger *zap.Logger

	mu      sync.Mutex
	clients map[uuid.UUID]cachedClient
}

type cachedClient struct {
	client      *ShopifyClient
	credentials string
}

// NewRegistry creates a client registry using the given adapter settings
func NewRegistry(cfg config.StorefrontConfig, logger *zap.Logger) *Registry {
	return &Registry{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[uuid.UUID]cachedClient),
	}
}

// ClientFor returns the client for a destination, building and caching it on
// first use. Disconnected destinations are rejected here so no job ever
// reaches a dead shop.
func (r *Registry) ClientFor(destination *distribution.Destination) (distribution.StorefrontClient, error) {
	if destination == nil {
		return nil, distribution.ErrDestinationNotFound
	}
	if !destination.Active {
		return nil, fmt.Errorf("%w: %s", distribution.ErrDestinationDisconnected, destination.ShopDomain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.clients[destination.ID]; ok && cached.credentials == destination.Credentials {
		return cached.client, nil
	}

	var creds credentials
	if err := json.Unmarshal([]byte(destination.Credentials), &creds); err != nil {
		return nil, fmt.Errorf("%w: malformed credentials for %s", distribution.ErrNoClientForDestination, destination.ShopDomain)
	}

	client, err := NewShopifyClient(destination.ShopDomain, creds.AccessToken, ClientOptions{
		APIVersion:       r.cfg.APIVersion,
		RequestTimeout:   r.cfg.RequestTimeout,
		MaxResponseBytes: r.cfg.MaxResponseBytes,
		Logger:           r.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", distribution.ErrNoClientForDestination, err)
	}

	r.clients[destination.ID] = cachedClient{client: client, credentials: destination.Credentials}
	return client, nil
}

var _ distribution.ClientRegistry = (*Registry)(nil)
