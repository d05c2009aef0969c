package services

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"syllabus-review-api/models"
)

// DefaultRefreshInterval is the minimum staleness window for recomputed
// progress statistics.
const DefaultRefreshInterval = 60 * time.Second

// RefreshPolicy bounds how often statistics are recomputed. Passed in as a
// value instead of living in ambient state so the polling behavior is
// testable.
type RefreshPolicy struct {
	MinStaleness time.Duration
}

type progressCacheEntry struct {
	stats     *models.ProgressStatistics
	fetchedAt time.Time
}

// ProgressService recomputes ProgressStatistics from the underlying
// syllabus review records. Recomputation is read-only and idempotent;
// results are cached per schedule within the refresh policy's staleness
// window, and an overlapping refresh for the same schedule is suppressed
// (the in-flight result is reused, never queued behind).
type ProgressService struct {
	db     *gorm.DB
	policy RefreshPolicy

	mu       sync.Mutex
	cache    map[int]*progressCacheEntry
	inFlight map[int]chan struct{}
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return NewProgressServiceWithPolicy(db, RefreshPolicy{MinStaleness: DefaultRefreshInterval})
}

func NewProgressServiceWithPolicy(db *gorm.DB, policy RefreshPolicy) *ProgressService {
	return &ProgressService{
		db:       db,
		policy:   policy,
		cache:    make(map[int]*progressCacheEntry),
		inFlight: make(map[int]chan struct{}),
	}
}

// GetProgress returns current statistics for a schedule, recomputing at
// most once per staleness window and at most once concurrently per
// schedule.
func (s *ProgressService) GetProgress(scheduleID int) (*models.ProgressStatistics, error) {
	s.mu.Lock()
	if entry, ok := s.cache[scheduleID]; ok && time.Since(entry.fetchedAt) < s.policy.MinStaleness {
		s.mu.Unlock()
		return entry.stats, nil
	}
	if done, ok := s.inFlight[scheduleID]; ok {
		// A refresh is already running; reuse its result instead of
		// stacking another recomputation.
		s.mu.Unlock()
		<-done
		s.mu.Lock()
		entry := s.cache[scheduleID]
		s.mu.Unlock()
		if entry != nil {
			return entry.stats, nil
		}
		return nil, fmt.Errorf("progress refresh for schedule %d failed", scheduleID)
	}
	done := make(chan struct{})
	s.inFlight[scheduleID] = done
	s.mu.Unlock()

	stats, err := s.Compute(scheduleID)

	s.mu.Lock()
	delete(s.inFlight, scheduleID)
	if err == nil {
		s.cache[scheduleID] = &progressCacheEntry{stats: stats, fetchedAt: time.Now()}
	}
	s.mu.Unlock()
	close(done)

	return stats, err
}

// Invalidate drops the cached statistics for a schedule, forcing the next
// read to recompute. Called after mutations that change the underlying
// records.
func (s *ProgressService) Invalidate(scheduleID int) {
	s.mu.Lock()
	delete(s.cache, scheduleID)
	s.mu.Unlock()
}

// Compute recomputes statistics directly, bypassing the cache.
func (s *ProgressService) Compute(scheduleID int) (*models.ProgressStatistics, error) {
	var reviews []models.SyllabusReview
	if err := s.db.Preload("Reviewer").Preload("Department").
		Where("schedule_id = ?", scheduleID).
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to load reviews for schedule %d: %w", scheduleID, err)
	}

	var assignments []models.ReviewerAssignment
	if err := s.db.Preload("Department").Preload("PrimaryReviewer").
		Where("schedule_id = ?", scheduleID).
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("failed to load assignments for schedule %d: %w", scheduleID, err)
	}

	return BuildStatistics(scheduleID, reviews, assignments), nil
}

// BuildStatistics rolls review records up into overall, per-department and
// per-reviewer statistics. Pure: everything derives from the given rows.
// Departments and reviewers known only through assignments still get
// zero-filled rows, so "no work yet" stays visible rather than vanishing.
func BuildStatistics(scheduleID int, reviews []models.SyllabusReview, assignments []models.ReviewerAssignment) *models.ProgressStatistics {
	stats := &models.ProgressStatistics{
		ScheduleID:   scheduleID,
		ByDepartment: []models.DepartmentProgress{},
		ByReviewer:   []models.ReviewerProgress{},
	}

	deptRows := make(map[int]*models.DepartmentProgress)
	reviewerRows := make(map[int]*models.ReviewerProgress)

	// Seed zero-filled rows from the assignment registry.
	for _, a := range assignments {
		if _, ok := deptRows[a.DepartmentID]; !ok {
			row := &models.DepartmentProgress{DepartmentID: a.DepartmentID}
			if a.Department != nil {
				row.DepartmentName = a.Department.DepartmentName
			}
			deptRows[a.DepartmentID] = row
		}
		if _, ok := reviewerRows[a.PrimaryReviewerID]; !ok {
			row := &models.ReviewerProgress{ReviewerID: a.PrimaryReviewerID}
			if a.PrimaryReviewer != nil {
				row.ReviewerName = a.PrimaryReviewer.FullName()
				row.Role = a.PrimaryReviewer.Role
				row.Stage = StageForRole(a.PrimaryReviewer.Role)
			}
			reviewerRows[a.PrimaryReviewerID] = row
		}
	}

	var totalReviewDuration time.Duration
	var decidedWithTimes int

	for i := range reviews {
		r := &reviews[i]
		stats.TotalCount++

		dept, ok := deptRows[r.DepartmentID]
		if !ok {
			dept = &models.DepartmentProgress{DepartmentID: r.DepartmentID}
			if r.Department != nil {
				dept.DepartmentName = r.Department.DepartmentName
			}
			deptRows[r.DepartmentID] = dept
		}
		reviewer, ok := reviewerRows[r.ReviewerID]
		if !ok {
			reviewer = &models.ReviewerProgress{ReviewerID: r.ReviewerID, Stage: r.Stage}
			if r.Reviewer != nil {
				reviewer.ReviewerName = r.Reviewer.FullName()
				reviewer.Role = r.Reviewer.Role
			}
			reviewerRows[r.ReviewerID] = reviewer
		}

		dept.TotalCount++
		reviewer.TotalCount++

		switch {
		case r.IsDecided():
			stats.ReviewedCount++
			dept.ReviewedCount++
			reviewer.ReviewedCount++
			if r.DecidedAt != nil {
				totalReviewDuration += r.DecidedAt.Sub(r.AssignedAt)
				decidedWithTimes++
			}
		case r.Status == models.ReviewOverdue:
			stats.OverdueCount++
			dept.OverdueCount++
			reviewer.OverdueCount++
		default:
			stats.PendingCount++
			dept.PendingCount++
			reviewer.PendingCount++
		}
	}

	if stats.TotalCount > 0 {
		stats.ProgressPercentage = int(math.Round(float64(stats.ReviewedCount) / float64(stats.TotalCount) * 100))
	}
	if decidedWithTimes > 0 {
		stats.AvgReviewHours = math.Round(totalReviewDuration.Hours()/float64(decidedWithTimes)*100) / 100
	}

	for _, row := range deptRows {
		stats.ByDepartment = append(stats.ByDepartment, *row)
	}
	sort.Slice(stats.ByDepartment, func(i, j int) bool {
		return stats.ByDepartment[i].DepartmentID < stats.ByDepartment[j].DepartmentID
	})

	for _, row := range reviewerRows {
		stats.ByReviewer = append(stats.ByReviewer, *row)
	}
	sort.Slice(stats.ByReviewer, func(i, j int) bool {
		return stats.ByReviewer[i].ReviewerID < stats.ByReviewer[j].ReviewerID
	})

	return stats
}

// StageForRole maps a reviewer role to the deadline stage it serves. The
// mapping is fixed: department heads perform L1, academic affairs performs
// L2.
func StageForRole(role string) models.ReviewStage {
	switch role {
	case models.RoleHOD:
		return models.StageL1
	case models.RoleAA:
		return models.StageL2
	default:
		return models.StageFinal
	}
}
