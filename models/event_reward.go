// models/event_reward.go
package models

import "time"

// EventReward records a bulk award for an off-chain event. The unique index on
// EventID doubles as the lock that prevents awarding the same event twice.
type EventReward struct {
	ID                 string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EventID            string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"event_id"`
	EventName          string    `gorm:"type:varchar(255)" json:"event_name"`
	PointsPerHolder    int64     `gorm:"not null" json:"points_per_holder"`
	TotalHoldersFound  int       `gorm:"not null;default:0" json:"total_holders_found"`
	MatchedPlayers     int       `gorm:"not null;default:0" json:"matched_players"`
	UnmatchedHolders   int       `gorm:"not null;default:0" json:"unmatched_holders"`
	TotalPointsAwarded int64     `gorm:"not null;default:0" json:"total_points_awarded"`
	AwardedByEmail     string    `gorm:"type:varchar(255)" json:"awarded_by_email"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (EventReward) TableName() string {
	return "event_rewards"
}
