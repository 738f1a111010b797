package services

import (
	"fmt"

	"club-points-system/models"
)

// policyKey is one cell of the point policy matrix.
type policyKey struct {
	Category models.PointsCategory
	Outcome  models.MatchOutcome
}

// PointPolicy maps (category, outcome) to a signed point delta. Built
// once at startup and validated eagerly: every enumerated pair must be
// present, so a missing cell is a boot failure rather than a runtime
// fallback to zero.
type PointPolicy struct {
	deltas map[policyKey]int64
}

// defaultPolicyDeltas is the club's standard scoring table. Win values
// scale with the weight of the activity tier.
var defaultPolicyDeltas = map[policyKey]int64{
	{models.CategoryDailyPractice, models.OutcomeWin}:       20,
	{models.CategoryDailyPractice, models.OutcomeDraw}:      10,
	{models.CategoryDailyPractice, models.OutcomeLoss}:      5,
	{models.CategorySparring, models.OutcomeWin}:            100,
	{models.CategorySparring, models.OutcomeDraw}:           50,
	{models.CategorySparring, models.OutcomeLoss}:           25,
	{models.CategoryInternalTournament, models.OutcomeWin}:  300,
	{models.CategoryInternalTournament, models.OutcomeDraw}: 150,
	{models.CategoryInternalTournament, models.OutcomeLoss}: 75,
	{models.CategoryExternalTournament, models.OutcomeWin}:  500,
	{models.CategoryExternalTournament, models.OutcomeDraw}: 250,
	{models.CategoryExternalTournament, models.OutcomeLoss}: 100,
}

// NewPointPolicy builds the default matrix.
func NewPointPolicy() (*PointPolicy, error) {
	return NewPointPolicyFrom(defaultPolicyDeltas)
}

// NewPointPolicyFrom builds a matrix from an explicit table and
// verifies every category×outcome pair is covered.
func NewPointPolicyFrom(table map[policyKey]int64) (*PointPolicy, error) {
	deltas := make(map[policyKey]int64, len(table))
	for k, v := range table {
		deltas[k] = v
	}
	for _, cat := range models.AllCategories {
		for _, out := range models.AllOutcomes {
			if _, ok := deltas[policyKey{cat, out}]; !ok {
				return nil, fmt.Errorf("point policy missing entry for %q/%q", cat, out)
			}
		}
	}
	return &PointPolicy{deltas: deltas}, nil
}

// Lookup returns the configured delta for the pair, or ErrUnknownPolicy
// if the pair is outside the configured matrix. Callers must check the
// error before touching any store.
func (p *PointPolicy) Lookup(category models.PointsCategory, outcome models.MatchOutcome) (int64, error) {
	delta, ok := p.deltas[policyKey{category, outcome}]
	if !ok {
		return 0, fmt.Errorf("%w: %q/%q", ErrUnknownPolicy, category, outcome)
	}
	return delta, nil
}
