package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/oncounter-billing/utils"
	"gorm.io/gorm"
)

type HomeController struct {
	DB *gorm.DB
}

func NewHomeController(db *gorm.DB) *HomeController {
	return &HomeController{DB: db}
}

// Welcome lists the API entry points.
func (hc *HomeController) Welcome(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Welcome to the On-Counter Billing API", gin.H{
		"customers": "/customer/list",
		"employees": "/employee/list",
		"bills":     "/bill/list",
		"token":     "/jwtauth/token",
		"health":    "/health",
	})
}

func (hc *HomeController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		utils.LogError("controllers", "Health", nil, err)
		utils.RespondJSON(c, http.StatusServiceUnavailable, "database unreachable", gin.H{"database": "down"})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "ok", gin.H{"database": "up"})
}
