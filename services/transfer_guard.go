// services/transfer_guard.go
package services

import (
	"strings"
	"sync"

	"checkpoint-rewards/pkg/apperrors"
)

// TransferGuard allows at most one in-flight transfer per source address
// within this process. A second request for a busy address is rejected, not queued.
type TransferGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewTransferGuard() *TransferGuard {
	return &TransferGuard{inFlight: make(map[string]struct{})}
}

func lockKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Run executes fn while holding the lock for address. The lock is released
// when fn returns, whether it succeeded or not.
func (g *TransferGuard) Run(address string, fn func() (*TransferResult, error)) (*TransferResult, error) {
	key := lockKey(address)

	g.mu.Lock()
	if _, busy := g.inFlight[key]; busy {
		g.mu.Unlock()
		return nil, apperrors.New(apperrors.CodeRateLimited, "Transfer already in progress for this address", nil)
	}
	g.inFlight[key] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}()

	return fn()
}

// InFlight reports whether a transfer for address is currently running.
func (g *TransferGuard) InFlight(address string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inFlight[lockKey(address)]
	return busy
}
