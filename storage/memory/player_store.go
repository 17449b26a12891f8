package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"checkpoint-rewards/models"
	"checkpoint-rewards/storage"
)

// PlayerStore is an in-memory implementation of storage.PlayerStore.
type PlayerStore struct {
	mu     sync.RWMutex
	data   map[int64]*models.Player
	nextID int64
}

// NewPlayerStore creates a new in-memory player store.
func NewPlayerStore() *PlayerStore {
	return &PlayerStore{
		data: make(map[int64]*models.Player),
	}
}

func (s *PlayerStore) Create(_ context.Context, p *models.Player) error {
	if p == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.walletTaken(p, 0) {
		return storage.ErrDuplicateKey
	}

	s.nextID++
	now := time.Now().UTC()
	stored := clonePlayer(p)
	stored.ID = s.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.data[stored.ID] = stored

	p.ID = stored.ID
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *PlayerStore) GetByID(_ context.Context, id int64) (*models.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clonePlayer(p), nil
}

func (s *PlayerStore) GetByWallet(_ context.Context, chain models.Chain, address string) (*models.Player, error) {
	if address == "" || !chain.Valid() {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedIDs() {
		p := s.data[id]
		if p.WalletFor(chain) == address {
			return clonePlayer(p), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *PlayerStore) GetByEmail(_ context.Context, email string) (*models.Player, error) {
	if email == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.sortedIDs() {
		p := s.data[id]
		if p.Email != nil && strings.EqualFold(*p.Email, email) {
			return clonePlayer(p), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *PlayerStore) ListByEmails(_ context.Context, emails []string) ([]*models.Player, error) {
	want := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		want[strings.ToLower(e)] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.Player
	for _, id := range s.sortedIDs() {
		p := s.data[id]
		if p.Email == nil {
			continue
		}
		if _, ok := want[strings.ToLower(*p.Email)]; ok {
			result = append(result, clonePlayer(p))
		}
	}
	return result, nil
}

func (s *PlayerStore) Update(_ context.Context, id int64, u storage.PlayerUpdate) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	next := clonePlayer(existing)
	applyPlayerUpdate(next, u)
	if s.walletTaken(next, id) {
		return nil, storage.ErrDuplicateKey
	}
	next.UpdatedAt = time.Now().UTC()
	s.data[id] = next
	return clonePlayer(next), nil
}

func (s *PlayerStore) AddPoints(_ context.Context, id int64, delta int64) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.TotalPoints += delta
	p.UpdatedAt = time.Now().UTC()
	return clonePlayer(p), nil
}

// walletTaken must be called with the lock held.
func (s *PlayerStore) walletTaken(p *models.Player, self int64) bool {
	for id, other := range s.data {
		if id == self {
			continue
		}
		for _, chain := range models.AllChains {
			w := p.WalletFor(chain)
			if w != "" && other.WalletFor(chain) == w {
				return true
			}
		}
	}
	return false
}

func (s *PlayerStore) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func applyPlayerUpdate(p *models.Player, u storage.PlayerUpdate) {
	if u.WalletAddress != nil {
		p.WalletAddress = copyString(u.WalletAddress)
	}
	if u.SolanaWalletAddress != nil {
		p.SolanaWalletAddress = copyString(u.SolanaWalletAddress)
	}
	if u.StellarWalletAddress != nil {
		p.StellarWalletAddress = copyString(u.StellarWalletAddress)
	}
	if u.StellarWalletID != nil {
		p.StellarWalletID = copyString(u.StellarWalletID)
	}
	if u.Email != nil {
		p.Email = copyString(u.Email)
	}
	if u.Username != nil {
		p.Username = copyString(u.Username)
	}
}

func clonePlayer(p *models.Player) *models.Player {
	c := *p
	c.WalletAddress = copyString(p.WalletAddress)
	c.SolanaWalletAddress = copyString(p.SolanaWalletAddress)
	c.StellarWalletAddress = copyString(p.StellarWalletAddress)
	c.StellarWalletID = copyString(p.StellarWalletID)
	c.Email = copyString(p.Email)
	c.Username = copyString(p.Username)
	return &c
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
