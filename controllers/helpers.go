package controllers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"syllabus-review-api/config"
	"syllabus-review-api/services"
)

var (
	progressOnce sync.Once
	progressSvc  *services.ProgressService
)

func getDB() *gorm.DB { return config.DB }

// progressService is shared so the per-schedule refresh cache and in-flight
// suppression work across requests.
func progressService() *services.ProgressService {
	progressOnce.Do(func() {
		progressSvc = services.NewProgressService(config.DB)
	})
	return progressSvc
}

func scheduleService() *services.ScheduleService {
	return services.NewScheduleService(config.DB, progressService())
}

func currentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			return id, true
		}
	}
	return 0, false
}

func requireUserID(c *gin.Context) (int, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User context missing"})
	}
	return userID, ok
}

// respondServiceError maps the engine's error taxonomy onto HTTP statuses.
// Validation problems keep their field list so the client can attach
// messages to form controls.
func respondServiceError(c *gin.Context, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
		return
	}
	var cerr *services.ConflictError
	if errors.As(err, &cerr) {
		c.JSON(http.StatusConflict, gin.H{"error": cerr.Message})
		return
	}
	var berr *services.BusinessRuleError
	if errors.As(err, &berr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": berr.Message, "rule": berr.Rule})
		return
	}
	var nerr *services.NotFoundError
	if errors.As(err, &nerr) {
		c.JSON(http.StatusNotFound, gin.H{"error": nerr.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
