package services

import (
	"fmt"
	"time"

	"club-points-system/models"

	"gorm.io/gorm"
)

// AuditService is the read side of the ledger. It never writes —
// entries are appended only by the sync engine.
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// AuditFilter narrows a ledger query. Zero values mean "no filter".
type AuditFilter struct {
	AthleteName string
	AdminID     string
	From        *time.Time
	To          *time.Time
}

func (s *AuditService) scope(f AuditFilter) *gorm.DB {
	q := s.DB.Model(&models.AuditEntry{})
	if f.AthleteName != "" {
		q = q.Where("athlete_name = ?", f.AthleteName)
	}
	if f.AdminID != "" {
		q = q.Where("admin_id = ?", f.AdminID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	return q
}

// AuditPage is one page of ledger history, newest first.
type AuditPage struct {
	Entries    []models.AuditEntry `json:"entries"`
	Page       int                 `json:"page"`
	Size       int                 `json:"size"`
	TotalItems int64               `json:"total_items"`
	TotalPages int                 `json:"total_pages"`
}

// Query returns ledger entries matching the filter, ordered by
// timestamp descending and paginated so callers can restart from any
// page without re-reading earlier ones.
func (s *AuditService) Query(f AuditFilter, page, size int) (*AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	var total int64
	if err := s.scope(f).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: counting audit entries: %v", ErrStoreUnavailable, err)
	}

	var entries []models.AuditEntry
	if err := s.scope(f).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: fetching audit entries: %v", ErrStoreUnavailable, err)
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	return &AuditPage{
		Entries:    entries,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// AuditSummary aggregates a period of ledger activity without
// materializing the entries.
type AuditSummary struct {
	Entries       int64 `json:"entries"`
	TotalAwarded  int64 `json:"total_awarded"`  // sum of positive deltas
	TotalDeducted int64 `json:"total_deducted"` // sum of negative deltas (absolute)
	TotalVolume   int64 `json:"total_volume"`   // sum of absolute deltas
	PartialCount  int64 `json:"partial_count"`
}

// Summarize computes the aggregates in SQL.
func (s *AuditService) Summarize(f AuditFilter) (*AuditSummary, error) {
	var row struct {
		Entries       int64
		TotalAwarded  int64
		TotalDeducted int64
		PartialCount  int64
	}
	err := s.scope(f).
		Select(
			"COUNT(*) AS entries, " +
				"COALESCE(SUM(CASE WHEN delta > 0 THEN delta ELSE 0 END), 0) AS total_awarded, " +
				"COALESCE(SUM(CASE WHEN delta < 0 THEN -delta ELSE 0 END), 0) AS total_deducted, " +
				"COALESCE(SUM(CASE WHEN partial THEN 1 ELSE 0 END), 0) AS partial_count").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("%w: summarizing audit entries: %v", ErrStoreUnavailable, err)
	}
	return &AuditSummary{
		Entries:       row.Entries,
		TotalAwarded:  row.TotalAwarded,
		TotalDeducted: row.TotalDeducted,
		TotalVolume:   row.TotalAwarded + row.TotalDeducted,
		PartialCount:  row.PartialCount,
	}, nil
}
