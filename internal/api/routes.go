package api

import (
	"net/http"

	"titanfit/coach-app/internal/domain"
	"titanfit/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	rosterService service.RosterService,
	planService service.PlanService,
	programService service.ProgramService,
	matrixService service.MatrixService,
	dietService service.DietService,
	sessionService service.SessionService,
	scheduleService service.ScheduleService,
	attachmentService service.AttachmentService,
) {
	authHandler := NewAuthHandler(authService)
	coachHandler := NewCoachHandler(rosterService)
	planHandler := NewPlanHandler(planService)
	programHandler := NewProgramHandler(programService)
	matrixHandler := NewMatrixHandler(matrixService)
	dietHandler := NewDietHandler(dietService)
	sessionHandler := NewSessionHandler(sessionService, scheduleService, rosterService)
	attachmentHandler := NewAttachmentHandler(attachmentService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Matrix Cells (shared; column editor scope decides writes) ---
		protected.PUT("/cells", matrixHandler.SetCell)
		protected.GET("/cells", matrixHandler.GetCell)
		protected.GET("/programs/:planId/cells", matrixHandler.BulkLoadCells)

		// --- Attachments (shared reads) ---
		protected.GET("/sessions/:sessionId/attachments", attachmentHandler.GetSessionAttachments)
		protected.GET("/attachments/:attachmentId/download-url", attachmentHandler.GetDownloadURL)

		// --- Coach Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			// Roster
			coachGroup.POST("/clients", coachHandler.AddClientByEmail)
			coachGroup.GET("/clients", coachHandler.GetManagedClients)

			// Plan lifecycle
			coachGroup.POST("/clients/:clientId/plans", planHandler.CreatePlan)
			coachGroup.GET("/clients/:clientId/plans", planHandler.ListPlansForClient)
			coachGroup.GET("/plans/:planId", planHandler.GetPlan)
			coachGroup.POST("/plans/:planId/activate", planHandler.ActivatePlan)
			coachGroup.POST("/plans/:planId/archive", planHandler.ArchivePlan)
			coachGroup.POST("/plans/:planId/duplicate", planHandler.DuplicatePlan)
			coachGroup.DELETE("/plans/:planId", planHandler.DeletePlan)

			// Training program structure
			coachGroup.POST("/programs/:planId/columns", programHandler.BootstrapColumns)
			coachGroup.PUT("/programs/:planId/days", programHandler.ReplaceDays)
			coachGroup.GET("/programs/:planId", programHandler.GetStructure)
			coachGroup.POST("/days/:dayId/exercises", programHandler.AddExercise)
			coachGroup.PUT("/days/:dayId/exercises/order", programHandler.ReorderExercises)
			coachGroup.PUT("/exercises/:exerciseId", programHandler.UpdateExercise)
			coachGroup.DELETE("/exercises/:exerciseId", programHandler.RemoveExercise)

			// Diet structure
			coachGroup.PUT("/diets/:planId", dietHandler.SaveStructure)
			coachGroup.GET("/diets/:planId", dietHandler.ReadStructure)

			// Calendar sessions
			coachGroup.POST("/clients/:clientId/sessions/strength", sessionHandler.ScheduleStrength)
			coachGroup.POST("/clients/:clientId/sessions/cardio", sessionHandler.ScheduleCardio)
			coachGroup.PUT("/sessions/:sessionId/cardio", sessionHandler.UpdateCardio)
			coachGroup.PUT("/sessions/:sessionId/date", sessionHandler.Reschedule)
			coachGroup.DELETE("/sessions/:sessionId", sessionHandler.DeleteSession)
			coachGroup.GET("/clients/:clientId/schedule", sessionHandler.GetClientSchedule)
		}

		// --- Client Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/schedule", sessionHandler.GetMySchedule)
			clientGroup.POST("/sessions/:sessionId/attachments/upload-url", attachmentHandler.RequestUploadURL)
			clientGroup.POST("/sessions/:sessionId/attachments", attachmentHandler.ConfirmUpload)
		}
	}
}
