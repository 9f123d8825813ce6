package orders

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cleanline/opsdesk/internal/platform/cache"
	"github.com/cleanline/opsdesk/internal/pricing"
)

// sharedLoadTimeout bounds a coalesced backend fetch, which outlives any
// single caller's context.
const sharedLoadTimeout = 30 * time.Second

// CachedClient fronts an order backend with a versioned Redis cache and
// coalesces concurrent fetches of the same order.
type CachedClient struct {
	backend pricing.OrderBackend
	cache   *cache.Versioned
	group   singleflight.Group
	logger  *slog.Logger
}

// NewCachedClient wraps backend. A nil cache fetches straight through.
func NewCachedClient(backend pricing.OrderBackend, c *cache.Versioned, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{backend: backend, cache: c, logger: logger}
}

// FetchOrder returns a cached order or loads it from the backend.
func (c *CachedClient) FetchOrder(ctx context.Context, orderID string, customerGroupID int) (pricing.Order, error) {
	group := strconv.Itoa(customerGroupID)
	key, err := c.cache.BuildKey(ctx, orderID, group)
	if err != nil {
		c.logger.Warn("order cache unavailable", slog.String("order_id", orderID), slog.Any("error", err))
		return c.backend.FetchOrder(ctx, orderID, customerGroupID)
	}

	resultChan := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		var order pricing.Order
		err := c.cache.FetchJSON(loadCtx, key, &order, func(ctx context.Context) (any, error) {
			return c.backend.FetchOrder(ctx, orderID, customerGroupID)
		})
		return order, err
	})
	select {
	case <-ctx.Done():
		return pricing.Order{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return pricing.Order{}, res.Err
		}
		return res.Val.(pricing.Order), nil
	}
}

// SavePrice stores the price and invalidates cached orders.
func (c *CachedClient) SavePrice(ctx context.Context, update pricing.PriceUpdate) error {
	if err := c.backend.SavePrice(ctx, update); err != nil {
		return err
	}
	c.Invalidate(ctx)
	return nil
}

// Invalidate drops every cached order.
func (c *CachedClient) Invalidate(ctx context.Context) {
	ver, err := c.cache.Bump(ctx)
	if err != nil {
		c.logger.Warn("order cache invalidation failed", slog.Any("error", err))
		return
	}
	c.logger.Debug("order cache invalidated", slog.Int64("version", ver))
}
