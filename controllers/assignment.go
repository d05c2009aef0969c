package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"syllabus-review-api/services"
)

// CreateAssignment assigns a reviewer pair to a department for a schedule.
// A department with an existing assignment yields a 409.
func CreateAssignment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	scheduleID, err := strconv.Atoi(c.Param("id"))
	if err != nil || scheduleID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule ID"})
		return
	}

	var input services.AssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	assignment, err := services.NewAssignmentService(getDB()).Assign(scheduleID, &input, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// UpdateAssignment replaces the reviewer pair on an assignment.
func UpdateAssignment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	var input services.AssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	assignment, err := services.NewAssignmentService(getDB()).Update(assignmentID, &input, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// DeleteAssignment removes an assignment unconditionally; departments left
// unassigned are a UI warning, not an error.
func DeleteAssignment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	assignmentID, err := strconv.Atoi(c.Param("assignment_id"))
	if err != nil || assignmentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID"})
		return
	}

	if err := services.NewAssignmentService(getDB()).Remove(assignmentID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reviewer assignment removed",
	})
}

// GetAvailableReviewers lists users eligible to hold reviewer assignments,
// optionally limited to one department.
func GetAvailableReviewers(c *gin.Context) {
	raw := c.Query("department_id")
	if raw == "" {
		raw = c.Query("departmentId")
	}
	departmentID, _ := strconv.Atoi(raw)

	reviewers, err := services.NewAssignmentService(getDB()).AvailableReviewers(departmentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reviewers": reviewers,
		"total":     len(reviewers),
	})
}
