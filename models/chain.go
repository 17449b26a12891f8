// models/chain.go
package models

import "strings"

// Chain identifies the wallet ecosystem a check-in came from.
type Chain string

const (
	ChainEVM     Chain = "evm"
	ChainSolana  Chain = "solana"
	ChainStellar Chain = "stellar"
)

var AllChains = []Chain{ChainEVM, ChainSolana, ChainStellar}

func (c Chain) Valid() bool {
	switch c {
	case ChainEVM, ChainSolana, ChainStellar:
		return true
	}
	return false
}

// ParseChain accepts the chain name in any case.
func ParseChain(s string) (Chain, bool) {
	c := Chain(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}
