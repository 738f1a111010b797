package models

import "time"

// PointsCategory is the activity tier a match was fought in.
// The point policy matrix must define a delta for every
// (category, outcome) pair — see services.NewPointPolicy.
type PointsCategory string

const (
	CategoryDailyPractice      PointsCategory = "Daily Practice"
	CategorySparring           PointsCategory = "Sparring"
	CategoryInternalTournament PointsCategory = "Internal Tournament"
	CategoryExternalTournament PointsCategory = "External Tournament"
)

// AllCategories in tier order, used for eager policy validation.
var AllCategories = []PointsCategory{
	CategoryDailyPractice,
	CategorySparring,
	CategoryInternalTournament,
	CategoryExternalTournament,
}

// MatchOutcome is the closed result enumeration.
type MatchOutcome string

const (
	OutcomeWin  MatchOutcome = "win"
	OutcomeDraw MatchOutcome = "draw"
	OutcomeLoss MatchOutcome = "loss"
)

var AllOutcomes = []MatchOutcome{OutcomeWin, OutcomeDraw, OutcomeLoss}

// MatchRecord records one completed competitive activity that caused a
// point mutation. Immutable once written; the only removal path is the
// rollback flow, which appends a compensating audit entry first.
type MatchRecord struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	AthleteID string         `gorm:"index;not null" json:"athlete_id"`
	Category  PointsCategory `gorm:"type:varchar(32);not null" json:"category"`
	Outcome   MatchOutcome   `gorm:"type:varchar(16);not null;check:outcome IN ('win','loss','draw')" json:"outcome"`

	// Effective delta the sync engine applied for this match
	// (pre-calculated so rollback never has to re-derive it).
	PointsApplied int64 `json:"points_applied" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
