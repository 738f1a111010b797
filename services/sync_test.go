package services

import (
	"sync"
	"testing"

	"club-points-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplyMutation_SerialDeltas verifies the balance equals the sum of
// effective deltas after a serial sequence, and both projections agree.
func TestApplyMutation_SerialDeltas(t *testing.T) {
	db := openTestDB(t)
	svc := NewSyncService(db)
	athlete := seedAthlete(t, db, "Ana Souza")

	deltas := []int64{100, 50, -30, 25}
	var want int64
	for _, d := range deltas {
		res, err := svc.ApplyMutation(athlete.ID, d, "test", "admin@club")
		require.NoError(t, err)
		want += d
		assert.Equal(t, want, res.NewBalance)
		assert.Equal(t, d, res.EffectiveDelta)
	}

	var bal models.ScoreBalance
	require.NoError(t, db.Where("athlete_id = ?", athlete.ID).First(&bal).Error)
	assert.Equal(t, want, bal.Total)

	var entry models.RankingEntry
	require.NoError(t, db.Where("athlete_name = ?", athlete.DisplayName).First(&entry).Error)
	assert.Equal(t, want, entry.Total, "ranking total must match score balance at quiescence")
	assert.Equal(t, athlete.Category, entry.Category)
	assert.Equal(t, athlete.Seed, entry.Seed)
}

// TestApplyMutation_ClampsAtZero verifies an oversized deduction floors
// the balance at zero and the audit trail records the effective delta,
// not the requested one.
func TestApplyMutation_ClampsAtZero(t *testing.T) {
	db := openTestDB(t)
	svc := NewSyncService(db)
	athlete := seedAthlete(t, db, "Bruno Lima")

	_, err := svc.ApplyMutation(athlete.ID, 50, "seed points", "admin@club")
	require.NoError(t, err)

	res, err := svc.AdjustBalance(athlete.ID, -999999, "admin@club")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.NewBalance)
	assert.Equal(t, int64(-50), res.EffectiveDelta)

	var entry models.AuditEntry
	require.NoError(t, db.First(&entry, "id = ?", res.AuditEntryID).Error)
	assert.Equal(t, int64(-50), entry.Delta)
	assert.Equal(t, int64(50), entry.BalanceBefore)
	assert.Equal(t, int64(0), entry.BalanceAfter)
	assert.Equal(t, "Manual Adjustment", entry.Activity)
}

// TestApplyMutation_AuditCompleteness verifies every successful
// mutation appends exactly one entry whose balance-after equals the
// returned balance, chained per athlete under serial mutation.
func TestApplyMutation_AuditCompleteness(t *testing.T) {
	db := openTestDB(t)
	svc := NewSyncService(db)
	athlete := seedAthlete(t, db, "Carla Mendes")

	for i, delta := range []int64{10, 20, 30} {
		res, err := svc.ApplyMutation(athlete.ID, delta, "test", "admin@club")
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.AuditEntry{}).Where("athlete_name = ?", athlete.DisplayName).Count(&count).Error)
		assert.Equal(t, int64(i+1), count)

		var entry models.AuditEntry
		require.NoError(t, db.First(&entry, "id = ?", res.AuditEntryID).Error)
		assert.Equal(t, res.NewBalance, entry.BalanceAfter)
		assert.Equal(t, entry.BalanceBefore+entry.Delta, entry.BalanceAfter)
	}
}

// TestApplyMutation_UnknownAthlete verifies nothing is written when the
// athlete does not exist.
func TestApplyMutation_UnknownAthlete(t *testing.T) {
	db := openTestDB(t)
	svc := NewSyncService(db)

	_, err := svc.ApplyMutation("00000000-0000-0000-0000-000000000000", 10, "test", "admin@club")
	require.ErrorIs(t, err, ErrAthleteNotFound)

	var count int64
	require.NoError(t, db.Model(&models.AuditEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

// TestApplyMutation_ConcurrentSameAthlete verifies no lost update: two
// concurrent +10 mutations from balance 0 must land at 20.
func TestApplyMutation_ConcurrentSameAthlete(t *testing.T) {
	db := openTestDB(t)
	svc := NewSyncService(db)
	athlete := seedAthlete(t, db, "Diego Rocha")

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, admin := range []string{"admin1@club", "admin2@club"} {
		wg.Add(1)
		go func(admin string) {
			defer wg.Done()
			_, err := svc.AdjustBalance(athlete.ID, 10, admin)
			errs <- err
		}(admin)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var bal models.ScoreBalance
	require.NoError(t, db.Where("athlete_id = ?", athlete.ID).First(&bal).Error)
	assert.Equal(t, int64(20), bal.Total)

	var entries []models.AuditEntry
	require.NoError(t, db.Where("athlete_name = ?", athlete.DisplayName).Order("created_at ASC").Find(&entries).Error)
	require.Len(t, entries, 2)
}

// TestApplyMutation_PartialSyncSurfaced breaks the ranking table out
// from under the engine: the balance write and the audit entry must
// still land, the entry flagged partial, and the caller told.
func TestApplyMutation_PartialSyncSurfaced(t *testing.T) {
	db := openTestDB(t)
	svc := NewSyncService(db)
	athlete := seedAthlete(t, db, "Elisa Prado")

	require.NoError(t, db.Migrator().DropTable(&models.RankingEntry{}))

	res, err := svc.ApplyMutation(athlete.ID, 100, "Sparring (win)", "admin@club")
	require.ErrorIs(t, err, ErrPartialSync)
	require.NotNil(t, res, "result still reports what landed")
	assert.Equal(t, int64(100), res.NewBalance)

	var bal models.ScoreBalance
	require.NoError(t, db.Where("athlete_id = ?", athlete.ID).First(&bal).Error)
	assert.Equal(t, int64(100), bal.Total, "balance write survives the ranking failure")

	var entry models.AuditEntry
	require.NoError(t, db.First(&entry, "id = ?", res.AuditEntryID).Error)
	assert.True(t, entry.Partial, "attempted mutation must be audited with the partial flag")
	assert.Equal(t, int64(100), entry.BalanceAfter)
}

// TestApplyMutation_IndependentAthletes verifies mutations on different
// athletes do not interfere.
func TestApplyMutation_IndependentAthletes(t *testing.T) {
	db := openTestDB(t)
	svc := NewSyncService(db)
	a := seedAthlete(t, db, "Fernanda Alves")
	b := seedAthlete(t, db, "Gabriel Costa")

	var wg sync.WaitGroup
	for _, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				_, err := svc.AdjustBalance(id, 10, "admin@club")
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range []string{a.ID, b.ID} {
		var bal models.ScoreBalance
		require.NoError(t, db.Where("athlete_id = ?", id).First(&bal).Error)
		assert.Equal(t, int64(50), bal.Total)
	}
}
