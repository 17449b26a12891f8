package blockchain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const checkInContractABI = `[
  {"anonymous":false,"type":"event","name":"CheckIn","inputs":[
    {"indexed":true,"name":"user","type":"address"},
    {"indexed":false,"name":"checkpointId","type":"uint256"},
    {"indexed":false,"name":"points","type":"uint256"}
  ]}
]`

const rewardContractABI = `[
  {"type":"function","name":"rewardToken","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"address"}]}
]`

const erc20ABI = `[
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],
   "outputs":[{"name":"","type":"uint8"}]}
]`

var (
	CheckInABI = mustParseABI(checkInContractABI)
	RewardABI  = mustParseABI(rewardContractABI)
	ERC20ABI   = mustParseABI(erc20ABI)

	// CheckInEventID is topic[0] of every CheckIn log.
	CheckInEventID = CheckInABI.Events["CheckIn"].ID
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("blockchain: invalid built-in ABI: " + err.Error())
	}
	return parsed
}
