// models/checkin_event.go
package models

import "math/big"

// CheckInEvent is one decoded CheckIn log from the on-chain check-in contract.
type CheckInEvent struct {
	User            string   `json:"user"`
	CheckpointID    *big.Int `json:"checkpointId"`
	Points          *big.Int `json:"points"`
	BlockNumber     uint64   `json:"blockNumber"`
	TransactionHash string   `json:"transactionHash"`
	LogIndex        uint     `json:"logIndex"`
}
