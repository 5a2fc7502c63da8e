package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"freight/internal/domain"
)

// InvoiceCacheTTL bounds staleness of cached invoice reads. Invoices are
// immutable once written, so the TTL only limits memory, not correctness.
const InvoiceCacheTTL = 10 * time.Minute

const invoiceCachePrefix = "cache:invoice:"

// CacheStore handles invoice caching in Redis for the public invoice view.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// GetInvoice retrieves a cached invoice by booking ID. A cache miss returns
// (nil, nil).
func (s *CacheStore) GetInvoice(ctx context.Context, bookingID string) (*domain.Invoice, error) {
	key := invoiceCachePrefix + bookingID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var inv domain.Invoice
	if err := json.Unmarshal(data, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// SetInvoice stores an invoice in cache.
func (s *CacheStore) SetInvoice(ctx context.Context, inv *domain.Invoice) error {
	key := invoiceCachePrefix + inv.BookingID
	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, InvoiceCacheTTL).Err()
}

// InvalidateInvoice removes a cached invoice.
func (s *CacheStore) InvalidateInvoice(ctx context.Context, bookingID string) error {
	key := invoiceCachePrefix + bookingID
	return s.client.Del(ctx, key).Err()
}
