// models/player.go
package models

import (
	"time"
)

// Player is one participant, unified across chains by wallet address and/or email.
// Nullable wallet columns keep the unique indexes usable for players that only
// have some of the wallets linked.
type Player struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletAddress        *string   `gorm:"type:varchar(255);uniqueIndex" json:"wallet_address"`
	SolanaWalletAddress  *string   `gorm:"type:varchar(255);uniqueIndex" json:"solana_wallet_address"`
	StellarWalletAddress *string   `gorm:"type:varchar(255);uniqueIndex" json:"stellar_wallet_address"`
	StellarWalletID      *string   `gorm:"type:varchar(255)" json:"stellar_wallet_id"`
	Email                *string   `gorm:"type:varchar(255);index" json:"email"`
	Username             *string   `gorm:"type:varchar(255)" json:"username"`
	TotalPoints          int64     `gorm:"not null;default:0" json:"total_points"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Player) TableName() string {
	return "players"
}

// WalletFor returns the player's wallet on the given chain, or "".
func (p *Player) WalletFor(chain Chain) string {
	switch chain {
	case ChainEVM:
		return deref(p.WalletAddress)
	case ChainSolana:
		return deref(p.SolanaWalletAddress)
	case ChainStellar:
		return deref(p.StellarWalletAddress)
	}
	return ""
}

func (p *Player) EVMWallet() string {
	return deref(p.WalletAddress)
}

func (p *Player) EmailValue() string {
	return deref(p.Email)
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
