package models

import (
	"time"

	"gorm.io/gorm"
)

// Athlete is the registration record for one club member.
// Created only through the registration endpoints; the points engine
// reads it but never writes it.
type Athlete struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	DisplayName string `gorm:"uniqueIndex;not null" json:"display_name"` // join key for RankingEntry
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`         // URL-safe name for public ranking lookups
	Category    string `gorm:"index" json:"category"`                    // age bracket, e.g. "Junior", "Senior"
	Seed        string `json:"seed"`                                     // seed classification, e.g. "A", "B"

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
