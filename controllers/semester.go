package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"syllabus-review-api/config"
	"syllabus-review-api/models"
)

// GetSemesters lists the semester catalog. Read-only reference data; rows
// are synced from the course-catalog service.
func GetSemesters(c *gin.Context) {
	query := config.DB.Order("start_date DESC")

	if year := c.Query("academic_year"); year != "" {
		query = query.Where("academic_year = ?", year)
	}

	var semesters []models.Semester
	if err := query.Find(&semesters).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch semesters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"semesters": semesters,
		"total":     len(semesters),
	})
}

// GetSemester returns one semester by ID.
func GetSemester(c *gin.Context) {
	semesterID, err := strconv.Atoi(c.Param("id"))
	if err != nil || semesterID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid semester ID"})
		return
	}

	var semester models.Semester
	if err := config.DB.Where("semester_id = ?", semesterID).First(&semester).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Semester not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch semester"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"semester": semester,
	})
}
