package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"syllabus-review-api/services"
)

// GetScheduleProgress returns the current progress statistics for one
// schedule. Recomputed from the review records within the refresh policy's
// staleness window; callers polling faster than that get the cached result.
func GetScheduleProgress(c *gin.Context) {
	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	// Existence check so a bogus ID is a 404, not an empty zero row.
	if _, err := scheduleService().Get(scheduleID); err != nil {
		respondServiceError(c, err)
		return
	}

	stats, err := progressService().GetProgress(scheduleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"progress": stats,
	})
}

// GetAuditTrail returns a schedule's append-only audit trail, newest first.
func GetAuditTrail(c *gin.Context) {
	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	entries, total, err := services.AuditTrail(getDB(), scheduleID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"audit_trail": entries,
		"pagination": gin.H{
			"current_page": page,
			"per_page":     limit,
			"total":        total,
			"total_pages":  totalPages,
		},
	})
}
