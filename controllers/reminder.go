package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"syllabus-review-api/services"
)

// SendReminders triggers an immediate reminder dispatch for a schedule,
// either to all assigned reviewers with outstanding work or to an explicit
// subset. Shares the same-day dedup window with the automatic tick, so it
// never compounds with an alert that already fired today.
func SendReminders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	var req struct {
		ReviewerIDs []int `json:"reviewer_ids"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	result, err := services.NewReminderService(getDB()).Send(scheduleID, req.ReviewerIDs, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Reminders sent"
	if result.Sent == 0 {
		message = "No reminders sent"
		if result.Deduped > 0 {
			message = "All targeted reviewers were already alerted today"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"result":  result,
	})
}

// ExportSchedule streams the progress report. Only the EXCEL format is
// generated server-side.
func ExportSchedule(c *gin.Context) {
	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	format := strings.ToUpper(c.DefaultQuery("format", "EXCEL"))
	if format != "EXCEL" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported export format; only EXCEL is available"})
		return
	}

	buf, filename, err := services.NewExportService(scheduleService()).ExportExcel(scheduleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
