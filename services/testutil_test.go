package services

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"club-points-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// openTestDB returns an isolated in-memory database with the full
// schema migrated. A single pooled connection keeps sqlite happy under
// concurrent test mutations.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, testDBSeq.Add(1))
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
		Seed:        "A",
	}
	require.NoError(t, db.Create(&athlete).Error)
	return &athlete
}

func mustPolicy(t *testing.T) *PointPolicy {
	t.Helper()
	policy, err := NewPointPolicy()
	require.NoError(t, err)
	return policy
}
