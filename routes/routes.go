package routes

import (
	"kpi-management-api/controllers"
	"kpi-management-api/middleware"
	"kpi-management-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "KPI Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// KPI catalog (all authenticated users)
			parameters := protected.Group("/parameters")
			{
				parameters.GET("", controllers.GetMainParameters)
				parameters.GET("/enabled", controllers.GetEnabledSubParameters)
				parameters.GET("/:id/form", controllers.GetFormDefinition)
			}

			// Cutoff windows
			protected.GET("/cutoff/current", controllers.GetCurrentWindow)

			// Submissions (faculty and HoDs entering their own KPIs)
			submissions := protected.Group("/submissions")
			{
				submissions.GET("", controllers.GetSubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.POST("", controllers.CreateSubmission)
				submissions.DELETE("/:id", controllers.DeleteSubmission)
				submissions.PUT("/:id/draft", controllers.SaveDraft)
				submissions.POST("/:id/submit", controllers.SubmitSubmission)
				submissions.POST("/:id/attachments", controllers.UploadAttachment)
				submissions.DELETE("/:id/attachments/:attachment_id", controllers.DeleteAttachment)
				submissions.GET("/:id/history", controllers.GetReviewHistory)
			}

			// First-line review. Role checks live in the service because
			// OTHER-routed sub-parameters may name any user as approver.
			reviews := protected.Group("/reviews")
			{
				reviews.GET("/pending", controllers.GetPendingReviews)
				reviews.POST("/:id/approve", controllers.ApproveSubmission)
				reviews.POST("/:id/reject", controllers.RejectSubmission)
				reviews.POST("/:id/request-revision", controllers.RequestRevision)
			}

			// Dean approval
			dean := protected.Group("/dean")
			dean.Use(middleware.RequireRole(models.RoleDean, models.RoleAdmin))
			{
				dean.GET("/pending", controllers.GetDeanPendingFaculty)
				dean.POST("/bulk-approve", controllers.DeanBulkApprove)
			}

			// Dashboards
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/faculty-scores", controllers.GetFacultyScores)
				dashboard.GET("/hod-scores", controllers.GetHodScores)
				dashboard.GET("/department-comparison", controllers.GetDepartmentComparison)
				dashboard.GET("/main-parameter-breakdown", controllers.GetMainParameterBreakdown)
				dashboard.GET("/status-counts", controllers.GetStatusCounts)
				dashboard.GET("/leaderboard", controllers.GetLeaderboard)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}

			// Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/users/import", controllers.ImportUsers)
			}
		}
	}
}
