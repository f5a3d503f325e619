package cache

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const receiptTTL = 30 * 24 * time.Hour

// ReceiptCache is an optional Redis fast path mapping order id -> receipt so a
// retried client can get its original receipt back without a database round
// trip. Every method is a no-op when Redis is not configured, and Redis
// outages never fail a request.
type ReceiptCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewReceiptCache connects using REDIS_ADDR / REDIS_PASS / REDIS_DB. When
// REDIS_ADDR is unset or the ping fails, the cache is disabled rather than
// blocking startup.
func NewReceiptCache(logger *zap.Logger) *ReceiptCache {
	c := &ReceiptCache{logger: logger}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return c
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbn, err := strconv.Atoi(dbStr); err == nil {
			opts.DB = dbn
		}
	}
	rc := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.Warn("redis ping failed, receipt cache disabled", zap.Error(err))
		}
		return c
	}
	c.client = rc
	return c
}

func (c *ReceiptCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Store caches the receipt for an order id, best effort.
func (c *ReceiptCache) Store(ctx context.Context, orderID string, receipt interface{}) {
	if !c.Enabled() {
		return
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, receiptKey(orderID), raw, receiptTTL).Err(); err != nil && c.logger != nil {
		c.logger.Warn("receipt cache write failed", zap.String("order_id", orderID), zap.Error(err))
	}
}

// Get loads a cached receipt into out, reporting whether one was found.
func (c *ReceiptCache) Get(ctx context.Context, orderID string, out interface{}) bool {
	if !c.Enabled() {
		return false
	}
	raw, err := c.client.Get(ctx, receiptKey(orderID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (c *ReceiptCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func receiptKey(orderID string) string {
	return "receipt:" + orderID
}
