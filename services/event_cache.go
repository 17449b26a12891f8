// services/event_cache.go
package services

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"checkpoint-rewards/blockchain"
	"checkpoint-rewards/models"
	"checkpoint-rewards/observability"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/pkg/logger"
)

const DefaultEventCacheTTL = 5 * time.Minute

// CheckInSource fetches CheckIn logs; *blockchain.Client satisfies it. A nil
// source makes every fetch fail with CONFIG_ERROR.
type CheckInSource interface {
	FilterCheckIns(ctx context.Context, q blockchain.CheckInQuery) ([]models.CheckInEvent, error)
}

// EventFetchOptions narrow a fetch. Nil blocks mean earliest / latest.
type EventFetchOptions struct {
	ForceRefresh bool
	FromBlock    *big.Int
	ToBlock      *big.Int
	User         *common.Address
}

type CacheStatus struct {
	IsCached    bool       `json:"isCached"`
	LastUpdated *time.Time `json:"lastUpdated"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	EventCount  int        `json:"eventCount"`
}

type cacheEntry struct {
	events      []models.CheckInEvent
	lastUpdated time.Time
	expiresAt   time.Time
}

// EventCache keeps the most recent CheckIn event scan for a fixed TTL.
//
// It holds a single slot: a warm entry is returned for any options, so a
// filtered fetch can be served an unfiltered result (and vice versa) until the
// entry expires or ForceRefresh is set.
type EventCache struct {
	source   CheckInSource
	contract common.Address
	ttl      time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics

	mu    sync.RWMutex
	entry *cacheEntry
}

type EventCacheOption func(*EventCache)

func WithEventCacheClock(c clockwork.Clock) EventCacheOption {
	return func(ec *EventCache) { ec.clock = c }
}

func WithEventCacheTTL(ttl time.Duration) EventCacheOption {
	return func(ec *EventCache) {
		if ttl > 0 {
			ec.ttl = ttl
		}
	}
}

func WithEventCacheMetrics(m *observability.Metrics) EventCacheOption {
	return func(ec *EventCache) { ec.metrics = m }
}

func NewEventCache(source CheckInSource, contract common.Address, opts ...EventCacheOption) *EventCache {
	ec := &EventCache{
		source:   source,
		contract: contract,
		ttl:      DefaultEventCacheTTL,
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(ec)
	}
	return ec
}

// Fetch returns cached events while the entry is fresh, otherwise scans the
// chain and replaces the entry. The returned slice is shared; callers must not
// modify it.
func (ec *EventCache) Fetch(ctx context.Context, opts EventFetchOptions) ([]models.CheckInEvent, error) {
	if ec.source == nil {
		return nil, apperrors.New(apperrors.CodeConfig, "RPC not configured", nil)
	}
	if !opts.ForceRefresh {
		ec.mu.RLock()
		entry := ec.entry
		ec.mu.RUnlock()
		if entry != nil && ec.clock.Now().Before(entry.expiresAt) {
			ec.metrics.ObserveEventCache("hit", len(entry.events))
			return entry.events, nil
		}
	}

	events, err := ec.source.FilterCheckIns(ctx, blockchain.CheckInQuery{
		Contract:  ec.contract,
		FromBlock: opts.FromBlock,
		ToBlock:   opts.ToBlock,
		User:      opts.User,
	})
	if err != nil {
		ec.metrics.ObserveEventCache("error", -1)
		logger.WithFields(logrus.Fields{"contract": ec.contract.Hex()}).
			WithError(err).Error("failed to fetch CheckIn events")
		return nil, err
	}

	now := ec.clock.Now()
	ec.mu.Lock()
	ec.entry = &cacheEntry{
		events:      events,
		lastUpdated: now,
		expiresAt:   now.Add(ec.ttl),
	}
	ec.mu.Unlock()

	result := "miss"
	if opts.ForceRefresh {
		result = "refresh"
	}
	ec.metrics.ObserveEventCache(result, len(events))
	logger.WithFields(logrus.Fields{"events": len(events), "refresh": opts.ForceRefresh}).
		Debug("event cache repopulated")
	return events, nil
}

// Invalidate drops the cached entry unconditionally.
func (ec *EventCache) Invalidate() {
	ec.mu.Lock()
	ec.entry = nil
	ec.mu.Unlock()
	ec.metrics.ObserveEventCache("invalidate", 0)
}

// Status reports the slot as it is now. An expired entry still counts as
// cached until something replaces or invalidates it.
func (ec *EventCache) Status() CacheStatus {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	if ec.entry == nil {
		return CacheStatus{}
	}
	last := ec.entry.lastUpdated
	exp := ec.entry.expiresAt
	return CacheStatus{
		IsCached:    true,
		LastUpdated: &last,
		ExpiresAt:   &exp,
		EventCount:  len(ec.entry.events),
	}
}

// Fresh reports whether a fetch right now would be served from the cache.
func (ec *EventCache) Fresh() bool {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.entry != nil && ec.clock.Now().Before(ec.entry.expiresAt)
}
