package blockchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/castpass/castpass/internal/application/payment/ledger"
	"github.com/castpass/castpass/internal/domain/payment"
	vo "github.com/castpass/castpass/internal/domain/payment/valueobjects"
	"github.com/castpass/castpass/internal/shared/logger"
)

// NetworkRouter routes ledger queries to the client registered for the
// requested network
type NetworkRouter struct {
	mu      sync.RWMutex // Protects clients for concurrent access
	clients map[vo.Network]ledger.Client
	logger  logger.Interface
}

func NewNetworkRouter(logger logger.Interface) *NetworkRouter {
	return &NetworkRouter{
		clients: make(map[vo.Network]ledger.Client),
		logger:  logger,
	}
}

// NewEtherscanRouter registers an EtherscanClient for every network in cfg.
// All clients share one throttle; the rate limit applies per API key.
func NewEtherscanRouter(cfg *payment.Config, opts EtherscanOptions, minInterval time.Duration, logger logger.Interface) *NetworkRouter {
	router := NewNetworkRouter(logger)
	th := NewThrottle(minInterval)
	for _, params := range cfg.Networks() {
		router.Register(params.Network, NewEtherscanClient(params, cfg.APIKey(), opts, th, logger))
	}
	if cfg.APIKey() == "" {
		logger.Warnw("ledger API key not configured, requests may be rejected or heavily rate limited")
	}
	return router
}

// Ensure NetworkRouter implements ledger.Client
var _ ledger.Client = (*NetworkRouter)(nil)

// Register sets or replaces the client for network
func (r *NetworkRouter) Register(network vo.Network, client ledger.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[network] = client
}

func (r *NetworkRouter) ListNativeTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error) {
	client, err := r.client(network)
	if err != nil {
		return nil, err
	}
	return client.ListNativeTransfers(ctx, network, address)
}

func (r *NetworkRouter) ListTokenTransfers(ctx context.Context, network vo.Network, address string) ([]payment.Transaction, error) {
	client, err := r.client(network)
	if err != nil {
		return nil, err
	}
	return client.ListTokenTransfers(ctx, network, address)
}

func (r *NetworkRouter) client(network vo.Network) (ledger.Client, error) {
	r.mu.RLock()
	client, ok := r.clients[network]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnsupportedNetwork, network)
	}
	return client, nil
}
