// models/checkpoint.go
package models

import (
	"time"
)

const (
	DefaultCheckpointPoints = 100
	MaxCheckpointPoints     = 10000
)

// Checkpoint is a physical or virtual place players check in at.
// ID is a short code printed into the QR URL (/c/<id>).
type Checkpoint struct {
	ID              string    `gorm:"primaryKey;type:varchar(16)" json:"id"`
	Slug            string    `gorm:"type:varchar(255);index" json:"slug"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	Description     *string   `gorm:"type:text" json:"description"`
	ChainType       Chain     `gorm:"type:varchar(16);not null;default:'evm'" json:"chain_type"`
	PointsValue     int       `gorm:"not null" json:"points_value"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	PartnerImageURL *string   `gorm:"type:text" json:"partner_image_url"`
	CreatedBy       *string   `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Checkpoint) TableName() string {
	return "checkpoints"
}

// URL is the path the QR code points to.
func (c *Checkpoint) URL() string {
	return "/c/" + c.ID
}
