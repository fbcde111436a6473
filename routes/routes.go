package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-admin-api/controllers"
	"hospital-admin-api/models"
)

type Controllers struct {
	Auth         *controllers.AuthController
	Users        *controllers.UserController
	Patients     *controllers.PatientController
	Appointments *controllers.AppointmentController
	Medications  *controllers.MedicationController
	Dashboard    *controllers.DashboardController
	Audit        *controllers.AuditController
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		envelope(c, http.StatusMethodNotAllowed, "Method not allowed")
	})
	router.NoRoute(func(c *gin.Context) {
		envelope(c, http.StatusNotFound, "Not found")
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/logout", ctrl.Auth.AuthMiddleware(), ctrl.Auth.CSRFMiddleware(), ctrl.Auth.Logout)
		auth.GET("/me", ctrl.Auth.AuthMiddleware(), ctrl.Auth.Me)
		auth.GET("/sessions", ctrl.Auth.AuthMiddleware(), ctrl.Users.Sessions)
	}

	protected := api.Group("", ctrl.Auth.AuthMiddleware(), ctrl.Auth.CSRFMiddleware())

	users := protected.Group("/users", ctrl.Auth.RequireRole(models.RoleAdmin))
	{
		users.GET("", ctrl.Users.List)
		users.POST("", ctrl.Users.Create)
		users.POST("/:id/unlock", ctrl.Users.Unlock)
	}

	patients := protected.Group("/patients")
	{
		patients.GET("", ctrl.Patients.List)
		patients.GET("/:ref", ctrl.Patients.Get)

		writes := patients.Group("", ctrl.Auth.RequireRole(models.RoleAdmin, models.RoleReceptionist))
		{
			writes.POST("", ctrl.Patients.Create)
			writes.PUT("/:ref", ctrl.Patients.Update)
			writes.DELETE("/:ref", ctrl.Patients.Delete)
		}
	}

	appointments := protected.Group("/appointments")
	{
		appointments.GET("", ctrl.Appointments.List)
		appointments.POST("", ctrl.Auth.RequireRole(models.RoleAdmin, models.RoleReceptionist), ctrl.Appointments.Create)
		appointments.PUT("/:ref", ctrl.Appointments.UpdateStatus)
		appointments.DELETE("/:ref", ctrl.Appointments.Cancel)
	}

	medications := protected.Group("/medications")
	{
		medications.GET("", ctrl.Medications.List)

		writes := medications.Group("", ctrl.Auth.RequireRole(models.RoleAdmin, models.RoleReceptionist))
		{
			writes.POST("", ctrl.Medications.Create)
			writes.PUT("/:ref", ctrl.Medications.Update)
			writes.POST("/:ref/adjust-stock", ctrl.Medications.AdjustStock)
		}
	}

	protected.GET("/dashboard", ctrl.Dashboard.Summary)

	auditGroup := protected.Group("/audit", ctrl.Auth.RequireRole(models.RoleAdmin))
	{
		auditGroup.GET("", ctrl.Audit.List)
		auditGroup.POST("/purge", ctrl.Audit.Purge)
	}
}

func envelope(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success":   false,
		"message":   message,
		"data":      nil,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
