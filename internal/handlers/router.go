package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/services"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/utils"
)

type HandlerManager struct {
	studentHandler      *StudentHandler
	attemptHandler      *AttemptHandler
	certificateHandler  *CertificateHandler
	assessmentHandler   *AssessmentHandler
	userHandler         *UserHandler
	courseHandler       *CourseHandler
	questionBankHandler *QuestionBankHandler
	dashboardHandler    *DashboardHandler
	authMiddleware      *CasdoorAuthMiddleware

	health func(ctx context.Context) error
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	authMiddleware *CasdoorAuthMiddleware,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		studentHandler:      NewStudentHandler(serviceManager.Course(), serviceManager.Progress(), logger),
		attemptHandler:      NewAttemptHandler(serviceManager.CourseTest(), logger),
		certificateHandler:  NewCertificateHandler(serviceManager.Certificate(), logger),
		assessmentHandler:   NewAssessmentHandler(serviceManager.AssessmentTest(), logger),
		userHandler:         NewUserHandler(serviceManager.Profile(), logger),
		courseHandler:       NewCourseHandler(serviceManager.Course(), logger),
		questionBankHandler: NewQuestionBankHandler(serviceManager.TestSet(), logger),
		dashboardHandler:    NewDashboardHandler(serviceManager.Dashboard(), serviceManager.Export(), logger),
		authMiddleware:      authMiddleware,
		health:              serviceManager.HealthCheck,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Wrong verbs on known paths answer 405 instead of 404
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Message: "Method not allowed"})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found"})
	})

	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Course catalogue, progress and the course test
		courses := v1.Group("/courses")
		{
			courses.GET("", hm.studentHandler.ListCourses)
			courses.GET("/:id", hm.studentHandler.GetCourseOverview)
			courses.GET("/:id/test/eligibility", hm.attemptHandler.CheckEligibility)
			courses.POST("/:id/test/start", hm.attemptHandler.StartAttempt)
			courses.POST("/:id/test/submit", hm.attemptHandler.SubmitAttempt)
			courses.POST("/:id/certificate", hm.certificateHandler.ReissueCertificate)
		}

		modules := v1.Group("/modules")
		{
			modules.POST("/:id/track-presentation", hm.studentHandler.TrackPresentation)
			modules.POST("/:id/track-video", hm.studentHandler.TrackVideo)
			modules.POST("/:id/complete", hm.studentHandler.CompleteModule)
		}

		certificates := v1.Group("/certificates")
		{
			certificates.GET("", hm.certificateHandler.ListCertificates)
			certificates.GET("/:id/download", hm.certificateHandler.DownloadCertificate)
		}

		assessment := v1.Group("/assessment-test")
		{
			assessment.GET("", hm.assessmentHandler.GetOverview)
			assessment.POST("/start", hm.assessmentHandler.StartAssessment)
			assessment.POST("/submit", hm.assessmentHandler.SubmitAssessment)
			assessment.GET("/results", hm.assessmentHandler.ListMyResults)
		}

		me := v1.Group("/me")
		{
			me.GET("", hm.userHandler.GetProfile)
			me.GET("/courses", hm.studentHandler.ListMyCourses)
			me.GET("/photo", hm.userHandler.GetPhoto)
			me.POST("/photo", hm.userHandler.UploadPhoto)
		}

		// Admin routes - Teachers and Admins only
		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			adminCourses := admin.Group("/courses")
			{
				adminCourses.POST("", hm.courseHandler.CreateCourse)
				adminCourses.GET("", hm.courseHandler.ListCourses)
				adminCourses.GET("/:id", hm.courseHandler.GetCourse)
				adminCourses.PUT("/:id", hm.courseHandler.UpdateCourse)
				adminCourses.POST("/:id/reconcile-modules", hm.courseHandler.ReconcileModules)
				adminCourses.GET("/:id/modules", hm.courseHandler.ListModules)
				adminCourses.GET("/:id/results/export", hm.dashboardHandler.ExportCourseResults)
			}

			admin.PUT("/modules/:id", hm.courseHandler.UpdateModule)

			testSets := admin.Group("/test-sets")
			{
				testSets.POST("", hm.questionBankHandler.CreateTestSet)
				testSets.GET("", hm.questionBankHandler.ListTestSets)
				testSets.GET("/:id", hm.questionBankHandler.GetTestSet)
				testSets.POST("/:id/questions", hm.questionBankHandler.AddQuestion)
				testSets.POST("/:id/import", hm.questionBankHandler.ImportDocx)
			}

			assessmentTests := admin.Group("/assessment-tests")
			{
				assessmentTests.POST("", hm.assessmentHandler.CreateTest)
				assessmentTests.GET("/active", hm.assessmentHandler.GetActiveTest)
				assessmentTests.PUT("/:id", hm.assessmentHandler.UpdateTest)
			}

			admin.GET("/assessment-test/results/export", hm.dashboardHandler.ExportAssessmentResults)

			dashboard := admin.Group("/dashboard")
			{
				dashboard.GET("/stats", hm.dashboardHandler.GetDashboardStats)
				dashboard.GET("/activity-trends", hm.dashboardHandler.GetActivityTrends)
				dashboard.GET("/course-performance", hm.dashboardHandler.GetCoursePerformance)
			}
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := hm.health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "yosh-tadqiqotchi",
	})
}
