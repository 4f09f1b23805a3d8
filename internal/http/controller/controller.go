package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks that a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Controller handles general HTTP requests.
type Controller struct {
	db Pinger
}

// New creates a new Controller that reports the health of db.
func New(db Pinger) *Controller {
	return &Controller{
		db: db,
	}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	if err := con.db.PingContext(c.Request.Context()); err != nil {
		slog.Error("Health check failed", slog.Any("err", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgDatabaseUnavailable})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// NotFound answers routes that do not exist.
func (con *Controller) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": msgResourceNotFound})
}

// MethodNotAllowed answers known paths called with an unsupported method.
func (con *Controller) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": msgMethodNotAllowed})
}
