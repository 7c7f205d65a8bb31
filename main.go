package main

import (
	"log"
	"net/http"
	"os"

	"gramseva-be/config"
	"gramseva-be/routes"
	"gramseva-be/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	db := config.ConnectDB()
	if db == nil {
		log.Fatal("Failed to connect to MongoDB")
	}

	log.Println("MongoDB connection established successfully!")

	if err := store.EnsureProblemIndexes(db.Collection("problems")); err != nil {
		log.Println("Error creating problem indexes:", err)
	}

	config.ConnectRedis()

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowCredentials = true
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = []string{origin}
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	routes.AuthRoutes(r)
	routes.ProblemRoutes(r)
	routes.AdminRoutes(r)

	imageDir := os.Getenv("IMAGE_DIR")
	if imageDir == "" {
		imageDir = "uploads"
	}
	r.Static("/uploads", imageDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
