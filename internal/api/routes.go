package api

import (
	"alcyxob/routine-progress/internal/config"
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtConfig config.JWTConfig,
	planService service.PlanService,
	routineService service.RoutineService,
	sessionService service.SessionService,
	metricsService service.MetricsService,
	exportService service.ExportService,
) {
	planHandler := NewPlanHandler(planService, sessionService)
	routineHandler := NewRoutineHandler(routineService)
	progressHandler := NewProgressHandler(sessionService, metricsService, exportService)

	authMiddleware := AuthMiddleware(jwtConfig.Secret, jwtConfig.Issuer)
	staffOnly := RoleMiddleware(domain.StaffRoles()...)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Catalog ---
		templates := protected.Group("/routines/templates")
		{
			templates.GET("", routineHandler.ListTemplates)
			templates.POST("", staffOnly, routineHandler.CreateTemplate)
		}

		// --- Self-service: the caller is the trainee ---
		me := protected.Group("/me")
		{
			me.GET("/plan/today", planHandler.GetToday)
			me.POST("/plan/today", planHandler.CompleteToday)
			me.GET("/plan/frequency", planHandler.GetFrequencyHistory)
			me.GET("/routine", routineHandler.GetRoutine)
			me.GET("/history", progressHandler.GetHistory)
			me.GET("/metrics", progressHandler.GetMetrics)
		}

		// --- Staff acting on a trainee ---
		trainees := protected.Group("/trainees/:traineeId")
		trainees.Use(staffOnly)
		{
			trainees.GET("/plan/today", planHandler.GetToday)
			trainees.POST("/plan/today", planHandler.CompleteToday)
			trainees.GET("/plan/frequency", planHandler.GetFrequencyHistory)
			trainees.PUT("/plan/frequency", planHandler.SetFrequency)
			trainees.GET("/routine", routineHandler.GetRoutine)
			trainees.POST("/routine", routineHandler.AssignRoutine)
			trainees.GET("/history", progressHandler.GetHistory)
			trainees.POST("/history/export", progressHandler.ExportHistory)
			trainees.GET("/history/exports", progressHandler.ListExports)
			trainees.GET("/metrics", progressHandler.GetMetrics)
		}
	}
}
