package routes

import (
	"syllabus-review-api/controllers"
	"syllabus-review-api/middleware"
	"syllabus-review-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Syllabus Review API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// Semester catalog (read-only reference data)
			protected.GET("/semesters", controllers.GetSemesters)
			protected.GET("/semesters/:id", controllers.GetSemester)

			// In-app notifications
			protected.GET("/notifications", controllers.GetMyNotifications)
			protected.PUT("/notifications/:notification_id/read", controllers.MarkNotificationRead)

			// Review schedules
			manage := middleware.RequireRole(models.RoleManager, models.RoleAdmin)
			schedules := protected.Group("/review-schedules")
			{
				schedules.GET("", controllers.GetReviewSchedules)
				schedules.GET("/reviewers/available", controllers.GetAvailableReviewers)
				schedules.GET("/:id", controllers.GetReviewSchedule)

				// Only academic managers administer the cycle
				schedules.POST("", manage, controllers.CreateReviewSchedule)
				schedules.PUT("/:id", manage, controllers.UpdateReviewSchedule)
				schedules.DELETE("/:id", manage, controllers.DeleteReviewSchedule)

				// Reviewer assignments
				schedules.POST("/:id/assignments", manage, controllers.CreateAssignment)
				schedules.PUT("/:id/assignments/:assignment_id", manage, controllers.UpdateAssignment)
				schedules.DELETE("/:id/assignments/:assignment_id", manage, controllers.DeleteAssignment)

				// Progress, reminders, reporting
				schedules.GET("/:id/progress", controllers.GetScheduleProgress)
				schedules.POST("/:id/reminders", manage, controllers.SendReminders)
				schedules.GET("/:id/export", controllers.ExportSchedule)
				schedules.GET("/:id/audit-trail", controllers.GetAuditTrail)
			}
		}
	}

	// 404 handler for unknown routes
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Endpoint not found"})
	})
}
