package blockchain

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"checkpoint-rewards/models"
)

var ErrInvalidLogFormat = errors.New("invalid CheckIn log format")

// ParseCheckInLog decodes a CheckIn(address indexed user, uint256 checkpointId, uint256 points) log.
func ParseCheckInLog(l types.Log) (*models.CheckInEvent, error) {
	if len(l.Topics) < 2 || l.Topics[0] != CheckInEventID {
		return nil, ErrInvalidLogFormat
	}

	values, err := CheckInABI.Events["CheckIn"].Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, errors.Join(ErrInvalidLogFormat, err)
	}
	if len(values) != 2 {
		return nil, ErrInvalidLogFormat
	}
	checkpointID, ok1 := values[0].(*big.Int)
	points, ok2 := values[1].(*big.Int)
	if !ok1 || !ok2 {
		return nil, ErrInvalidLogFormat
	}

	user := common.BytesToAddress(l.Topics[1].Bytes())

	return &models.CheckInEvent{
		User:            user.Hex(),
		CheckpointID:    checkpointID,
		Points:          points,
		BlockNumber:     l.BlockNumber,
		TransactionHash: l.TxHash.Hex(),
		LogIndex:        l.Index,
	}, nil
}
