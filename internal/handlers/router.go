package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/campusgate/allocation-service/internal/config"
	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/services"
	"github.com/campusgate/allocation-service/internal/utils"
	"github.com/campusgate/allocation-service/internal/validator"
)

type HandlerManager struct {
	assignmentHandler *AssignmentHandler
	studentHandler    *StudentHandler
	attendanceHandler *AttendanceHandler
	thresholdHandler  *ThresholdHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	return &HandlerManager{
		assignmentHandler: NewAssignmentHandler(serviceManager.Assignment(), validator, logger),
		studentHandler:    NewStudentHandler(serviceManager.Allocation(), serviceManager.Attendance(), logger),
		attendanceHandler: NewAttendanceHandler(serviceManager.Attendance(), serviceManager.Report(), validator, logger),
		thresholdHandler:  NewThresholdHandler(serviceManager.Threshold(), logger),
		authMiddleware:    NewCasdoorAuthMiddleware(casdoorConfig),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Assignment routes
		assignments := v1.Group("/assignments")
		{
			// Create/modify assignments - faculty and admins only
			assignments.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty), hm.assignmentHandler.CreateAssignment)
			assignments.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty), hm.assignmentHandler.UpdateAssignment)
			assignments.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty), hm.assignmentHandler.DeleteAssignment)
			assignments.POST("/:id/questions", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty), hm.assignmentHandler.AddQuestions)
			assignments.DELETE("/:id/questions/:question_id", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty), hm.assignmentHandler.RemoveQuestion)

			// View assignments - all authenticated users
			assignments.GET("", hm.assignmentHandler.ListAssignments)
			assignments.GET("/:id", hm.assignmentHandler.GetAssignment)
		}

		// Attendance routes - faculty and admins only
		attendance := v1.Group("/attendance")
		attendance.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty))
		{
			attendance.POST("", hm.attendanceHandler.RecordSession)
		}

		courses := v1.Group("/courses")
		courses.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty))
		{
			courses.GET("/:course_code/mass-bunks", hm.attendanceHandler.GetMassBunks)
			courses.GET("/:course_code/register", hm.attendanceHandler.ExportRegister)
		}

		// Threshold routes - reads for faculty, writes for admins
		thresholds := v1.Group("/thresholds")
		{
			thresholds.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleFaculty), hm.thresholdHandler.GetThresholds)
			thresholds.PUT("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.thresholdHandler.UpdateThresholds)
		}

		// Student routes - students only
		students := v1.Group("/students")
		students.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			students.GET("/me/attendance", hm.studentHandler.GetAttendanceSummary)
			students.GET("/me/assignments/:id", hm.studentHandler.AccessAssignment)
			students.GET("/me/assignments/:id/allocation", hm.studentHandler.GetAllocation)
			students.GET("/me/allocations", hm.studentHandler.ListAllocations)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "allocation-service",
		})
	})
}
