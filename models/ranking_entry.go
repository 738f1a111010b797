package models

import "time"

// RankingEntry is the denormalized public-ranking projection. It is
// keyed by athlete display name rather than id (the report views join
// on the printed name); the reconcile worker repairs any drift between
// this table and ScoreBalance.
type RankingEntry struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	AthleteName string `gorm:"uniqueIndex;not null" json:"athlete_name"`
	Slug        string `gorm:"index" json:"slug"`
	Category    string `json:"category"`
	Total       int64  `json:"total" gorm:"not null;default:0"`
	Seed        string `json:"seed"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
