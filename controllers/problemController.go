package controllers

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"gramseva-be/config"
	"gramseva-be/imaging"
	"gramseva-be/models"
	"gramseva-be/notify"
	"gramseva-be/services"
	"gramseva-be/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	wireOnce     sync.Once
	problemStore store.ProblemStore
	submissions  *services.SubmissionService
	reconciler   *services.Reconciler
	adminService *services.AdminService
)

// wire builds the service graph on first use, after main has connected
// MongoDB and Redis.
func wire() {
	wireOnce.Do(func() {
		problemStore = store.NewMongoProblemStore(
			config.GetCollection("problems"),
			config.GetCollection("counters"),
		)

		imageDir := os.Getenv("IMAGE_DIR")
		if imageDir == "" {
			imageDir = "uploads"
		}
		images := imaging.NewDiskStore(imageDir, "/uploads")

		submissions = services.NewSubmissionService(problemStore, images)
		reconciler = services.NewReconciler(problemStore, store.NewRedisCheckStore(config.RedisClient))
		adminService = services.NewAdminService(problemStore, notify.NewLogNotifier())
	})
}

// identityFromContext collects whatever identity the auth middleware set.
func identityFromContext(c *gin.Context) services.Identity {
	var ident services.Identity
	if v, exists := c.Get("user_id"); exists {
		if s, ok := v.(string); ok {
			ident.Key = s
		}
	}
	if v, exists := c.Get("user_email"); exists {
		if s, ok := v.(string); ok {
			ident.Email = s
		}
	}
	if v, exists := c.Get("user_name"); exists {
		if s, ok := v.(string); ok {
			ident.Name = s
		}
	}
	return ident
}

// CreateProblem handles a problem submission, with or without a signed-in
// identity and with an optional photo.
func CreateProblem(c *gin.Context) {
	wire()

	sub := services.Submission{
		Title:         c.PostForm("title"),
		Category:      c.PostForm("category"),
		Location:      c.PostForm("location"),
		Description:   c.PostForm("description"),
		Urgency:       c.PostForm("urgency"),
		ContactNumber: c.PostForm("contactNumber"),
	}

	if fileHeader, err := c.FormFile("image"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded image"})
			return
		}
		defer file.Close()
		sub.Image = file
		sub.ImageSize = fileHeader.Size
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problem, fieldErrors, err := submissions.Create(ctx, sub, identityFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit problem"})
		return
	}
	if len(fieldErrors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}

	c.JSON(http.StatusCreated, problem)
}

// MyProblems returns the reconciled personal list plus any status-change
// notifications accumulated since the caller last checked.
func MyProblems(c *gin.Context) {
	wire()

	ident := identityFromContext(c)
	if ident.Key == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, reconciler.PersonalList(ctx, ident))
}

// GetProblem retrieves a single problem visible to the caller.
func GetProblem(c *gin.Context) {
	wire()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	ident := identityFromContext(c)

	if id > models.DemoIDBase {
		for _, demo := range models.DemoProblems() {
			if demo.ID == id {
				c.JSON(http.StatusOK, demo)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problem, err := problemStore.ByID(ctx, id)
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		return
	}

	if !services.CanView(problem, ident, false) && !callerIsAdmin(c, ident) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to view this problem"})
		return
	}

	c.JSON(http.StatusOK, problem)
}

// callerIsAdmin looks the caller up in the users collection and checks the
// role. Only consulted when the ownership check already failed.
func callerIsAdmin(c *gin.Context, ident services.Identity) bool {
	objID, err := primitive.ObjectIDFromHex(ident.Key)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": objID}).Decode(&user); err != nil {
		return false
	}
	return user.IsAdmin()
}
