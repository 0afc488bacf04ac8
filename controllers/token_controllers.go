package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
)

type TokenController struct {
	Auth *services.AuthService
}

func NewTokenController(auth *services.AuthService) *TokenController {
	return &TokenController{Auth: auth}
}

// Obtain exchanges username/password for an access and refresh token.
func (tc *TokenController) Obtain(c *gin.Context) {
	var req services.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := tc.Auth.IssueTokens(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, "controllers.token", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Token issued", pair)
}

func (tc *TokenController) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	access, err := tc.Auth.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		respondServiceError(c, "controllers.token", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Token refreshed", gin.H{"access": access})
}

func (tc *TokenController) Verify(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := tc.Auth.Verify(req.Token); err != nil {
		respondServiceError(c, "controllers.token", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Token is valid", nil)
}
