package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"checkpoint-rewards/models"
	"checkpoint-rewards/pkg/apperrors"
	"checkpoint-rewards/utils"
)

// Backend is the subset of ethclient.Client the service reads through.
type Backend interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type Client struct {
	backend Backend
	closer  func()
}

// Dial connects to an HTTP(S) JSON-RPC endpoint; every call is bounded by timeout.
func Dial(ctx context.Context, rpcURL string, timeout time.Duration) (*Client, error) {
	rc, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(utils.NewHTTPClient(timeout)))
	if err != nil {
		return nil, apperrors.New(apperrors.CodeRPC,
			fmt.Sprintf("failed to connect RPC: %s", rpcURL), err)
	}
	eth := ethclient.NewClient(rc)
	return &Client{backend: eth, closer: eth.Close}, nil
}

// NewClient wraps an existing backend, e.g. a simulated chain in tests.
func NewClient(backend Backend) *Client {
	return &Client{backend: backend}
}

func (c *Client) Close() {
	if c.closer != nil {
		c.closer()
	}
}

// CheckInQuery narrows a CheckIn log scan. Nil blocks mean earliest / latest.
type CheckInQuery struct {
	Contract  common.Address
	FromBlock *big.Int
	ToBlock   *big.Int
	User      *common.Address
}

// FilterCheckIns fetches and decodes CheckIn logs emitted by the contract.
func (c *Client) FilterCheckIns(ctx context.Context, q CheckInQuery) ([]models.CheckInEvent, error) {
	topics := [][]common.Hash{{CheckInEventID}}
	if q.User != nil {
		topics = append(topics, []common.Hash{common.BytesToHash(q.User.Bytes())})
	}

	logs, err := c.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: q.FromBlock,
		ToBlock:   q.ToBlock,
		Addresses: []common.Address{q.Contract},
		Topics:    topics,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.CodeRPC, "failed to fetch CheckIn logs", err)
	}

	events := make([]models.CheckInEvent, 0, len(logs))
	for _, l := range logs {
		if l.Removed {
			continue
		}
		ev, err := ParseCheckInLog(l)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, nil
}

// BlockTimestamp returns the block's unix time in seconds.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	header, err := c.backend.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, apperrors.New(apperrors.CodeRPC, fmt.Sprintf("failed to fetch block %d", number), err)
	}
	return header.Time, nil
}

// RewardToken reads rewardToken() from the reward contract.
func (c *Client) RewardToken(ctx context.Context, rewardContract common.Address) (common.Address, error) {
	out, err := c.call(ctx, rewardContract, RewardABI.Pack, RewardABI.Unpack, "rewardToken")
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, apperrors.New(apperrors.CodeRPC, "unexpected rewardToken() result", nil)
	}
	return addr, nil
}

func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := c.call(ctx, token, ERC20ABI.Pack, ERC20ABI.Unpack, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	bal, ok := out[0].(*big.Int)
	if !ok {
		return nil, apperrors.New(apperrors.CodeRPC, "unexpected balanceOf() result", nil)
	}
	return bal, nil
}

func (c *Client) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	out, err := c.call(ctx, token, ERC20ABI.Pack, ERC20ABI.Unpack, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, apperrors.New(apperrors.CodeRPC, "unexpected decimals() result", nil)
	}
	return d, nil
}

type (
	packFunc   func(name string, args ...interface{}) ([]byte, error)
	unpackFunc func(name string, data []byte) ([]interface{}, error)
)

func (c *Client) call(ctx context.Context, to common.Address, pack packFunc, unpack unpackFunc, method string, args ...interface{}) ([]interface{}, error) {
	data, err := pack(method, args...)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeRPC, fmt.Sprintf("failed to encode %s()", method), err)
	}

	raw, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeRPC, fmt.Sprintf("%s() call failed", method), err)
	}

	out, err := unpack(method, raw)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeRPC, fmt.Sprintf("failed to decode %s()", method), err)
	}
	if len(out) == 0 {
		return nil, apperrors.New(apperrors.CodeRPC, fmt.Sprintf("empty %s() result", method), nil)
	}
	return out, nil
}
