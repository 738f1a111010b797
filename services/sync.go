package services

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"club-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncService is the synchronization engine: every point mutation in
// the system funnels through ApplyMutation, which updates the score
// balance, mirrors the new total into the ranking projection, and
// appends exactly one audit entry.
type SyncService struct {
	DB *gorm.DB

	// Per-athlete mutexes serialize the read-modify-write on a single
	// balance. Two concurrent mutations on the same athlete must never
	// both read the same stale total; mutations on different athletes
	// proceed independently.
	locks sync.Map // athlete id -> *sync.Mutex
}

func NewSyncService(db *gorm.DB) *SyncService {
	return &SyncService{DB: db}
}

// MutationResult reports what a mutation actually did. EffectiveDelta
// can be smaller in magnitude than the requested delta when the
// balance was clamped at zero.
type MutationResult struct {
	NewBalance     int64  `json:"new_balance"`
	EffectiveDelta int64  `json:"effective_delta"`
	AuditEntryID   string `json:"audit_entry_id"`
}

func (s *SyncService) lockFor(athleteID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(athleteID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ApplyMutation applies a signed delta to one athlete's balance as a
// unit of work:
//
//  1. read current balance (0 if no row yet)
//  2. clamp the new total at zero; the effective delta is whatever
//     change actually landed
//  3. upsert ScoreBalance
//  4. upsert RankingEntry under the athlete's display name
//  5. append one AuditEntry
//
// Steps run inside one transaction under a per-athlete lock. When the
// store keeps a transaction usable after a failed statement (sqlite),
// a failed ranking write does not abort the balance write: the audit
// entry is appended with the partial flag set, the transaction
// commits, and the caller gets ErrPartialSync alongside the result. On
// postgres a failed statement aborts the transaction, so the same
// fault rolls the whole mutation back as ErrStoreUnavailable — atomic
// on either dialect, never silently inconsistent.
func (s *SyncService) ApplyMutation(athleteID string, delta int64, activity, adminID string) (*MutationResult, error) {
	mu := s.lockFor(athleteID)
	mu.Lock()
	defer mu.Unlock()

	var athlete models.Athlete
	if err := s.DB.First(&athlete, "id = ?", athleteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAthleteNotFound, athleteID)
		}
		return nil, fmt.Errorf("%w: loading athlete: %v", ErrStoreUnavailable, err)
	}

	var res MutationResult
	var rankingErr error
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		balQuery := tx
		if tx.Dialector.Name() == "postgres" {
			// Row lock backs up the in-process mutex when several
			// instances share one database.
			balQuery = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var bal models.ScoreBalance
		balanceBefore := int64(0)
		existing := true
		if err := balQuery.Where("athlete_id = ?", athlete.ID).First(&bal).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reading balance: %v", ErrStoreUnavailable, err)
			}
			existing = false
			bal = models.ScoreBalance{ID: uuid.NewString(), AthleteID: athlete.ID}
		} else {
			balanceBefore = bal.Total
		}

		newBalance := balanceBefore + delta
		if newBalance < 0 {
			newBalance = 0 // penalties and reversals never drive a balance negative
		}
		effective := newBalance - balanceBefore

		now := time.Now()
		bal.Total = newBalance
		bal.LastActivityAt = now

		var err error
		if existing {
			err = tx.Save(&bal).Error
		} else {
			err = tx.Create(&bal).Error
		}
		if err != nil {
			return fmt.Errorf("%w: writing balance: %v", ErrStoreUnavailable, err)
		}

		// Where the dialect tolerates a failed statement mid-tx, the
		// ranking write may fail without aborting the mutation; the
		// failure is captured and flagged on the audit entry instead.
		// On postgres the aborted tx makes the append below fail too
		// and everything rolls back.
		rankingErr = s.upsertRanking(tx, &athlete, newBalance)

		entry := models.AuditEntry{
			ID:            uuid.NewString(),
			AdminID:       adminID,
			AthleteName:   athlete.DisplayName,
			Delta:         effective,
			BalanceBefore: balanceBefore,
			BalanceAfter:  newBalance,
			Activity:      activity,
			Partial:       rankingErr != nil,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("%w: appending audit entry: %v", ErrStoreUnavailable, err)
		}

		res = MutationResult{
			NewBalance:     newBalance,
			EffectiveDelta: effective,
			AuditEntryID:   entry.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if rankingErr != nil {
		log.Printf("[SYNC] ⚠️ partial sync for athlete %s (%s): balance written, ranking failed: %v",
			athlete.ID, athlete.DisplayName, rankingErr)
		return &res, fmt.Errorf("%w: %v", ErrPartialSync, rankingErr)
	}

	log.Printf("[SYNC] %s: %+d → %d (%s, by %s)",
		athlete.DisplayName, res.EffectiveDelta, res.NewBalance, activity, adminID)
	return &res, nil
}

// upsertRanking mirrors the new total into the name-keyed ranking row.
// Category and seed come from registration on first write and are left
// untouched when the row pre-exists.
func (s *SyncService) upsertRanking(tx *gorm.DB, athlete *models.Athlete, total int64) error {
	var entry models.RankingEntry
	err := tx.Where("athlete_name = ?", athlete.DisplayName).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = models.RankingEntry{
			ID:          uuid.NewString(),
			AthleteName: athlete.DisplayName,
			Slug:        athlete.Slug,
			Category:    athlete.Category,
			Seed:        athlete.Seed,
			Total:       total,
		}
		return tx.Create(&entry).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&entry).Update("total", total).Error
}

// AdjustBalance is the manual write path: same pipeline, no match
// record, fixed activity label.
func (s *SyncService) AdjustBalance(athleteID string, delta int64, adminID string) (*MutationResult, error) {
	return s.ApplyMutation(athleteID, delta, "Manual Adjustment", adminID)
}
