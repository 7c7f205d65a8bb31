package routes

import (
	"gramseva-be/controllers"
	"gramseva-be/middlewares"

	"github.com/gin-gonic/gin"
)

// ProblemRoutes sets up the citizen-facing problem routes
func ProblemRoutes(r *gin.Engine) {
	problem := r.Group("/api/problem")
	{
		problem.POST("/create", middlewares.OptionalAuthMiddleware(), middlewares.ProblemRateLimiter(5), controllers.CreateProblem)
		problem.GET("/mine", middlewares.AuthMiddleware(), controllers.MyProblems)
		problem.GET("/:id", middlewares.AuthMiddleware(), controllers.GetProblem)
	}
}
