// models/points_activity.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	ActivityCheckpointCheckin = "checkpoint_checkin"
	ActivityEventReward       = "event_reward"
)

// PointsActivity is an append-only ledger row. Nothing updates or deletes it
// after insert; a player's total_points is maintained next to it.
type PointsActivity struct {
	ID                int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserWalletAddress *string   `gorm:"type:varchar(255);index" json:"user_wallet_address"`
	ActivityType      string    `gorm:"type:varchar(64);not null;index" json:"activity_type"`
	PointsEarned      int64     `gorm:"not null" json:"points_earned"`
	Description       string    `gorm:"type:text" json:"description"`
	Metadata          JSONMap   `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`
	Processed         bool      `gorm:"not null;default:false" json:"processed"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
}

func (PointsActivity) TableName() string {
	return "points_activities"
}

// JSONMap stores free-form metadata in a jsonb column.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("jsonmap: unsupported source type")
	}
	out := JSONMap{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// String returns the value at key when it is a string.
func (m JSONMap) String(key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// Clone copies the top level of the map.
func (m JSONMap) Clone() JSONMap {
	if m == nil {
		return nil
	}
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
