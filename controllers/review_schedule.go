package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"syllabus-review-api/models"
	"syllabus-review-api/services"
)

// GetReviewSchedules lists schedules with filtering, search, sorting and
// pagination. Status and progress are derived per row before filtering, so
// the lifecycle state is never read from storage.
func GetReviewSchedules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	semesterID, _ := strconv.Atoi(c.Query("semester_id"))

	sortBy := c.DefaultQuery("sort_by", "name")
	allowedSortFields := map[string]bool{
		"name":                true,
		"review_start_date":   true,
		"progress_percentage": true,
	}
	if !allowedSortFields[sortBy] {
		sortBy = "name"
	}
	sortOrder := c.DefaultQuery("sort_order", "asc")
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "asc"
	}

	filter := services.ScheduleListFilter{
		Status:       models.ScheduleStatus(c.Query("status")),
		SemesterID:   semesterID,
		AcademicYear: c.Query("academic_year"),
		Search:       c.Query("search"),
		SortBy:       sortBy,
		SortOrder:    sortOrder,
		Page:         page,
		Limit:        limit,
	}

	schedules, total, err := scheduleService().List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"schedules": schedules,
		"pagination": gin.H{
			"current_page": page,
			"per_page":     limit,
			"total":        total,
			"total_pages":  totalPages,
			"has_next":     page < int(totalPages),
			"has_prev":     page > 1,
		},
	})
}

// GetReviewSchedule returns one schedule with assignments, progress and a
// first page of its audit trail.
func GetReviewSchedule(c *gin.Context) {
	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	schedule, err := scheduleService().Get(scheduleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	entries, _, err := services.AuditTrail(getDB(), scheduleID, 20, 0)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"schedule":    schedule,
		"audit_trail": entries,
	})
}

// CreateReviewSchedule creates a schedule after validation. Non-fatal
// warnings (short reviewer lead time) are returned alongside the created
// schedule rather than blocking it.
func CreateReviewSchedule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var input services.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	schedule, warnings, err := scheduleService().Create(&input, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"schedule": schedule,
		"warnings": warnings,
	})
}

// UpdateReviewSchedule edits a schedule. Deadlines only move forward;
// editing a completed schedule is rejected outright.
func UpdateReviewSchedule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	var input services.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	schedule, warnings, err := scheduleService().Update(scheduleID, &input, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"schedule": schedule,
		"warnings": warnings,
	})
}

// DeleteReviewSchedule removes an upcoming schedule with no recorded
// reviews.
func DeleteReviewSchedule(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	if err := scheduleService().Delete(scheduleID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Review schedule deleted",
	})
}
