package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthcheckHandler struct {
	db *gorm.DB
}

func NewHealthcheckHandler(db *gorm.DB) *HealthcheckHandler {
	return &HealthcheckHandler{db: db}
}

func (hh *HealthcheckHandler) Healthz(c *gin.Context) {
	sqlDB, err := hh.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
