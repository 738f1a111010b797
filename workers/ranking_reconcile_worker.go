package workers

import (
	"context"
	"log"
	"time"

	"club-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RankingReconcileWorker periodically re-derives the name-keyed ranking
// projection from the authoritative score balances. It closes the gap
// left by partial syncs and by the name-join between the two tables:
// any ranking row whose total drifted from its balance, or any balance
// with no ranking row at all, gets repaired on the next pass.
type RankingReconcileWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewRankingReconcileWorker(db *gorm.DB, interval time.Duration) *RankingReconcileWorker {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &RankingReconcileWorker{db: db, interval: interval}
}

func (w *RankingReconcileWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *RankingReconcileWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			repaired, err := w.ReconcileOnce()
			if err != nil {
				log.Printf("[RECONCILE] ❌ pass failed: %v", err)
				continue
			}
			if repaired > 0 {
				log.Printf("[RECONCILE] ✅ repaired %d ranking entries", repaired)
			}
		case <-ctx.Done():
			log.Println("[RECONCILE] worker stopping")
			return
		}
	}
}

// driftRow is one balance whose ranking mirror is missing or stale.
type driftRow struct {
	AthleteID   string
	DisplayName string
	Slug        string
	Category    string
	Seed        string
	Total       int64
}

// ReconcileOnce scans for drift and upserts the affected ranking rows.
// Returns how many rows were repaired.
func (w *RankingReconcileWorker) ReconcileOnce() (int, error) {
	var rows []driftRow
	err := w.db.Table("score_balances").
		Select("score_balances.athlete_id, athletes.display_name, athletes.slug, athletes.category, athletes.seed, score_balances.total").
		Joins("JOIN athletes ON athletes.id = score_balances.athlete_id AND athletes.deleted_at IS NULL").
		Joins("LEFT JOIN ranking_entries ON ranking_entries.athlete_name = athletes.display_name").
		Where("ranking_entries.id IS NULL OR ranking_entries.total <> score_balances.total").
		Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, row := range rows {
		entry := models.RankingEntry{
			ID:          uuid.NewString(),
			AthleteName: row.DisplayName,
			Slug:        row.Slug,
			Category:    row.Category,
			Seed:        row.Seed,
			Total:       row.Total,
		}
		if err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "athlete_name"}},
			DoUpdates: clause.AssignmentColumns([]string{"total", "updated_at"}),
		}).Create(&entry).Error; err != nil {
			log.Printf("[RECONCILE] ❌ failed to repair ranking for %s: %v", row.DisplayName, err)
			continue
		}
		log.Printf("[RECONCILE] ranking for %s set to %d", row.DisplayName, row.Total)
		repaired++
	}
	return repaired, nil
}
