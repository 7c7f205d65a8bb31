package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"gramseva-be/models"
	"gramseva-be/services"
	"gramseva-be/store"

	"github.com/gin-gonic/gin"
)

// ListProblems returns every stored problem, newest first.
func ListProblems(c *gin.Context) {
	wire()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problems, err := adminService.ListAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"problems":      problems,
		"totalProblems": len(problems),
	})
}

// UpdateProblemStatus changes a problem's status and reports the simulated
// email/SMS notifications sent to the submitter.
func UpdateProblemStatus(c *gin.Context) {
	wire()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	problem, deliveries, err := adminService.SetStatus(ctx, id, models.ProblemStatus(input.Status))
	if err == services.ErrInvalidStatus {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if err == store.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update problem"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"problem":       problem,
		"notifications": deliveries,
	})
}

// GetAnalytics returns the problem collection summary for the dashboard.
func GetAnalytics(c *gin.Context) {
	wire()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := adminService.Stats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get analytics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
