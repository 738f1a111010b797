// services/scheduler.go
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
	"time"

	"club-points-system/models"
	"club-points-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// archiveBatchSize bounds how many ledger rows ExportCSV holds in
// memory at once.
const archiveBatchSize = 100

// ExportCSV renders the matching ledger entries as CSV, oldest first,
// for archival. The ledger itself is never pruned — archives are
// copies.
func (s *AuditService) ExportCSV(f AuditFilter) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "admin_id", "athlete_name", "delta", "balance_before", "balance_after", "activity", "partial", "created_at"})

	// Scan ascending in batches instead of materializing the whole
	// range at once. Query orders newest-first for the admin views, so
	// the export reads with its own chronological ordering.
	for offset := 0; ; offset += archiveBatchSize {
		var entries []models.AuditEntry
		if err := s.scope(f).
			Order("created_at ASC").
			Limit(archiveBatchSize).Offset(offset).
			Find(&entries).Error; err != nil {
			return nil, fmt.Errorf("%w: exporting audit entries: %v", ErrStoreUnavailable, err)
		}
		if len(entries) == 0 {
			break
		}
		for _, e := range entries {
			_ = w.Write([]string{
				e.ID,
				e.AdminID,
				e.AthleteName,
				strconv.FormatInt(e.Delta, 10),
				strconv.FormatInt(e.BalanceBefore, 10),
				strconv.FormatInt(e.BalanceAfter, 10),
				e.Activity,
				strconv.FormatBool(e.Partial),
				e.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		if len(entries) < archiveBatchSize {
			break
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// StartArchiveScheduler uploads yesterday's ledger entries to R2 once
// a day. No-op when the bucket is not configured.
func (s *AuditService) StartArchiveScheduler(ctx context.Context) {
	if !utils.R2Configured() {
		log.Println("[ARCHIVE] R2 not configured — audit archive scheduler disabled")
		return
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			to := time.Now().UTC().Truncate(24 * time.Hour)
			from := to.AddDate(0, 0, -1)
			filter := AuditFilter{From: &from, To: &to}

			data, err := s.ExportCSV(filter)
			if err != nil {
				log.Printf("[ARCHIVE] ❌ export failed: %v", err)
				return
			}

			key := fmt.Sprintf("audit/%s.csv", from.Format("2006-01-02"))
			if err := utils.UploadBytesToR2(ctx, key, data, "text/csv"); err != nil {
				log.Printf("[ARCHIVE] ❌ upload failed: %v", err)
				return
			}
			log.Printf("✅ Archived audit ledger slice to %s", key)
		}),
	)

	go func() {
		<-ctx.Done()
		_ = sched.Shutdown()
	}()
}
