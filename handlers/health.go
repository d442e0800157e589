package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medislot/utils"
)

type HealthHandler struct{}

func (HealthHandler) HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code := http.StatusOK
	if !healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  map[bool]string{true: "ok", false: "degraded"}[healthy],
		"message": "Hi, I'm MediSlot",
		"checks":  status,
	})
}
