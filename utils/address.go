// utils/address.go
package utils

import (
	"encoding/base32"
	"regexp"
	"strings"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"checkpoint-rewards/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsEVMAddress requires the 0x prefix followed by 40 hex characters.
func IsEVMAddress(s string) bool {
	return len(s) == 42 && strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// IsSolanaAddress checks that s is base58 for a 32-byte ed25519 public key.
// Program-derived addresses are off the curve and cannot sign, so they are rejected.
func IsSolanaAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil || len(raw) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(raw)
	return err == nil
}

const (
	stellarAccountVersion = 6 << 3 // 'G'
	stellarKeyLen         = 56
	stellarRawLen         = 35 // version + 32-byte key + 2-byte checksum
)

var stellarEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// IsStellarAddress validates an account StrKey: version byte, payload and CRC16 checksum.
func IsStellarAddress(s string) bool {
	if len(s) != stellarKeyLen || s[0] != 'G' {
		return false
	}
	raw, err := stellarEncoding.DecodeString(s)
	if err != nil || len(raw) != stellarRawLen {
		return false
	}
	if raw[0] != stellarAccountVersion {
		return false
	}
	payload := raw[:33]
	want := crc16XModem(payload)
	got := uint16(raw[33]) | uint16(raw[34])<<8
	return want == got
}

// ValidWalletAddress dispatches to the per-chain format check.
func ValidWalletAddress(chain models.Chain, address string) bool {
	switch chain {
	case models.ChainEVM:
		return IsEVMAddress(address)
	case models.ChainSolana:
		return IsSolanaAddress(address)
	case models.ChainStellar:
		return IsStellarAddress(address)
	}
	return false
}

func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
