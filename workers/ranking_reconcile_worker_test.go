package workers

import (
	"fmt"
	"testing"

	"club-points-system/models"
	"club-points-system/services"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Athlete{},
		&models.MatchRecord{},
		&models.ScoreBalance{},
		&models.RankingEntry{},
		&models.AuditEntry{},
	))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedAthlete(t *testing.T, db *gorm.DB, name string) *models.Athlete {
	t.Helper()
	athlete := models.Athlete{
		ID:          uuid.NewString(),
		DisplayName: name,
		Slug:        slug.Make(name),
		Category:    "Senior",
		Seed:        "B",
	}
	require.NoError(t, db.Create(&athlete).Error)
	return &athlete
}

// TestReconcileOnce_RepairsMissingAndStaleRows drives the projections
// apart the two ways they can drift (no ranking row at all, stale
// total) and verifies one pass restores equality.
func TestReconcileOnce_RepairsMissingAndStaleRows(t *testing.T) {
	db := openTestDB(t)
	syncSvc := services.NewSyncService(db)
	worker := NewRankingReconcileWorker(db, 0)

	missing := seedAthlete(t, db, "Sofia Ramos")
	stale := seedAthlete(t, db, "Tiago Nunes")

	_, err := syncSvc.ApplyMutation(missing.ID, 120, "test", "admin@club")
	require.NoError(t, err)
	_, err = syncSvc.ApplyMutation(stale.ID, 80, "test", "admin@club")
	require.NoError(t, err)

	// Simulate drift: delete one ranking row, corrupt the other.
	require.NoError(t, db.Where("athlete_name = ?", missing.DisplayName).Delete(&models.RankingEntry{}).Error)
	require.NoError(t, db.Model(&models.RankingEntry{}).
		Where("athlete_name = ?", stale.DisplayName).
		Update("total", 5).Error)

	repaired, err := worker.ReconcileOnce()
	require.NoError(t, err)
	assert.Equal(t, 2, repaired)

	// Fresh struct per lookup: reusing one would leak the first row's
	// primary key into the next query's conditions.
	var repairedMissing models.RankingEntry
	require.NoError(t, db.Where("athlete_name = ?", missing.DisplayName).First(&repairedMissing).Error)
	assert.Equal(t, int64(120), repairedMissing.Total)
	assert.Equal(t, missing.Slug, repairedMissing.Slug)

	var repairedStale models.RankingEntry
	require.NoError(t, db.Where("athlete_name = ?", stale.DisplayName).First(&repairedStale).Error)
	assert.Equal(t, int64(80), repairedStale.Total)
}

// TestReconcileOnce_QuiescentIsNoop verifies a clean state repairs
// nothing.
func TestReconcileOnce_QuiescentIsNoop(t *testing.T) {
	db := openTestDB(t)
	syncSvc := services.NewSyncService(db)
	worker := NewRankingReconcileWorker(db, 0)

	athlete := seedAthlete(t, db, "Vera Matos")
	_, err := syncSvc.ApplyMutation(athlete.ID, 60, "test", "admin@club")
	require.NoError(t, err)

	repaired, err := worker.ReconcileOnce()
	require.NoError(t, err)
	assert.Zero(t, repaired)
}
