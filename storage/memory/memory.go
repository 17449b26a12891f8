// Package memory holds in-memory store implementations used by tests and by
// the server when database.use_memory is set.
package memory

import "checkpoint-rewards/storage"

// NewStores wires a fresh set of in-memory stores.
func NewStores() storage.Stores {
	return storage.Stores{
		Players:      NewPlayerStore(),
		Activities:   NewActivityStore(),
		Checkpoints:  NewCheckpointStore(),
		EventRewards: NewEventRewardStore(),
	}
}
