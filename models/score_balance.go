package models

import "time"

// ScoreBalance is the authoritative current-points projection, one row
// per athlete, keyed by athlete id. Only the sync engine writes it.
type ScoreBalance struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	AthleteID string `gorm:"uniqueIndex;not null" json:"athlete_id"`

	// Total never goes negative; the engine clamps at zero.
	Total int64 `json:"total" gorm:"not null;default:0"`

	LastActivityAt time.Time `json:"last_activity_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
