package routes

import (
	"gramseva-be/controllers"
	"gramseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the privileged triage routes
func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.AdminMiddleware())
	{
		admin.GET("/problems", controllers.ListProblems)
		admin.PATCH("/problems/:id/status", controllers.UpdateProblemStatus)
		admin.GET("/analytics", controllers.GetAnalytics)
	}
}
