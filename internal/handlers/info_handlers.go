package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	apiName    = "Wallet API"
	apiVersion = "1.0.0"
)

// HealthChecker reports the reachability of an external dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}

func HandleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": apiName + " is running"})
}

func HandleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        apiName,
		"version":     apiVersion,
		"description": "Wallet management system with deposit and withdraw operations",
		"features": []string{
			"Create wallets",
			"Deposit funds",
			"Withdraw funds",
			"View balance",
		},
	})
}

func HandleHealth(checkers ...HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus, len(checkers))
		healthy := true
		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				healthy = false
				continue
			}
			deps[checker.Name()] = depStatus{Status: "healthy"}
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "dependencies": deps})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "dependencies": deps})
	}
}
