package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunningMessage is the body of the root route.
const RunningMessage = "Flight watcher is running!"

// Running answers uptime pings on the root route.
func Running(c *gin.Context) {
	c.String(http.StatusOK, RunningMessage)
}
