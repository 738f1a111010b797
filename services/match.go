package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"club-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchService records competitive activities and rolls them back.
// Creating a match and applying its points is not one transaction — a
// match whose points never landed is deleted again (compensating
// cleanup), and rollback is a compensating mutation rather than an
// erase.
type MatchService struct {
	DB     *gorm.DB
	Policy *PointPolicy
	Sync   *SyncService
}

func NewMatchService(db *gorm.DB, policy *PointPolicy, syncSvc *SyncService) *MatchService {
	return &MatchService{DB: db, Policy: policy, Sync: syncSvc}
}

// MatchResult is what an admin gets back from recording a match.
type MatchResult struct {
	MatchID    string `json:"match_id"`
	NewBalance int64  `json:"new_balance"`
}

// RecordMatch creates the activity record and pushes its point delta
// through the sync engine. The policy lookup runs first so an
// unconfigured pair aborts before anything is written. If the mutation
// fails outright the match record is deleted again, so a retry cannot
// double-apply.
func (s *MatchService) RecordMatch(athleteID string, category models.PointsCategory, outcome models.MatchOutcome, adminID string) (*MatchResult, error) {
	delta, err := s.Policy.Lookup(category, outcome)
	if err != nil {
		return nil, err
	}

	match := models.MatchRecord{
		ID:        uuid.NewString(),
		AthleteID: athleteID,
		Category:  category,
		Outcome:   outcome,
		CreatedAt: time.Now(),
	}
	if err := s.DB.Create(&match).Error; err != nil {
		return nil, fmt.Errorf("%w: creating match record: %v", ErrStoreUnavailable, err)
	}

	activity := fmt.Sprintf("%s (%s)", category, outcome)
	res, mutErr := s.Sync.ApplyMutation(athleteID, delta, activity, adminID)
	if mutErr != nil && !errors.Is(mutErr, ErrPartialSync) {
		// No balance effect landed — remove the orphan record.
		if delErr := s.DB.Unscoped().Delete(&match).Error; delErr != nil {
			log.Printf("[MATCH] ❌ cleanup failed for orphan match %s: %v", match.ID, delErr)
		}
		return nil, mutErr
	}

	// Stamp the effective delta on the record; rollback negates this,
	// not the nominal policy value, so a clamped application reverses
	// exactly. A match without the stamp would roll back as a no-op
	// while its points stayed applied, so a failed stamp must surface —
	// the points landed, so this is a reconcile case, not a retry.
	if err := s.DB.Model(&match).Update("points_applied", res.EffectiveDelta).Error; err != nil {
		log.Printf("[MATCH] ❌ failed to stamp applied points on match %s: %v", match.ID, err)
		return nil, fmt.Errorf("%w: stamping applied points on match %s: %v", ErrStoreUnavailable, match.ID, err)
	}

	if mutErr != nil {
		// Partial sync: the balance effect exists, so the match stays.
		return &MatchResult{MatchID: match.ID, NewBalance: res.NewBalance}, mutErr
	}
	return &MatchResult{MatchID: match.ID, NewBalance: res.NewBalance}, nil
}

// RollbackMatch reverses a recorded match: it applies the exact
// negation of the points the match actually granted, then deletes the
// match record. The original audit entry stays — history only grows.
// Deletion happens only after the mutation succeeds, so a failed
// rollback leaves the match intact and re-attemptable.
func (s *MatchService) RollbackMatch(matchID, adminID string) (*MutationResult, error) {
	var match models.MatchRecord
	if err := s.DB.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("%w: loading match: %v", ErrStoreUnavailable, err)
	}

	activity := fmt.Sprintf("Rollback: %s", match.Category)
	res, err := s.Sync.ApplyMutation(match.AthleteID, -match.PointsApplied, activity, adminID)
	if err != nil && !errors.Is(err, ErrPartialSync) {
		return nil, err
	}

	if delErr := s.DB.Unscoped().Delete(&match).Error; delErr != nil {
		return res, fmt.Errorf("%w: deleting rolled-back match: %v", ErrStoreUnavailable, delErr)
	}
	return res, err
}

// RecentMatches returns an athlete's matches from the last N days,
// newest first.
func (s *MatchService) RecentMatches(athleteID string, days int) ([]models.MatchRecord, error) {
	var matches []models.MatchRecord
	since := time.Now().AddDate(0, 0, -days)
	err := s.DB.Where("athlete_id = ? AND created_at >= ?", athleteID, since).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}
