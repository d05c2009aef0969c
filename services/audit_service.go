package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"syllabus-review-api/models"
)

// RecordAudit appends one trail entry inside the caller's transaction. The
// entry commits or rolls back together with the mutation it describes; a
// failure here must abort the whole operation, never be logged and
// swallowed.
func RecordAudit(tx *gorm.DB, entry *models.AuditTrailEntry) error {
	if entry.PerformedAt.IsZero() {
		entry.PerformedAt = time.Now()
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to write audit trail entry: %w", err)
	}
	return nil
}

// AuditTrail returns a schedule's entries, newest first. There is no write
// path other than RecordAudit and no update or delete path at all.
func AuditTrail(db *gorm.DB, scheduleID int, limit, offset int) ([]models.AuditTrailEntry, int64, error) {
	query := db.Model(&models.AuditTrailEntry{}).Where("schedule_id = ?", scheduleID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit trail entries: %w", err)
	}

	var entries []models.AuditTrailEntry
	if err := query.Preload("Performer").
		Order("performed_at DESC, entry_id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load audit trail: %w", err)
	}
	return entries, total, nil
}

func auditString(value string) *string {
	return &value
}
