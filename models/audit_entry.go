package models

import "time"

// AuditEntry is one immutable line in the point ledger. Rows are only
// ever appended — rollbacks write a new compensating entry, nothing in
// the codebase updates or deletes this table. No soft-delete column on
// purpose.
type AuditEntry struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	AdminID     string `gorm:"index;not null" json:"admin_id"`
	AthleteName string `gorm:"index;not null" json:"athlete_name"`

	// Delta is the effective (possibly clamped) change, so
	// BalanceBefore + Delta == BalanceAfter always holds.
	Delta         int64  `json:"delta" gorm:"not null"`
	BalanceBefore int64  `json:"balance_before" gorm:"not null"`
	BalanceAfter  int64  `json:"balance_after" gorm:"not null"`
	Activity      string `json:"activity" gorm:"not null"` // e.g. "Sparring (win)", "Rollback: Sparring", "Manual Adjustment"

	// Partial marks an entry whose ranking projection write did not
	// complete; the reconcile worker picks these up.
	Partial bool `json:"partial" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at" gorm:"index;autoCreateTime"`
}
