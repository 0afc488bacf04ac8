package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
)

const (
	codeInvalidCredentials = "invalid_credentials"
	codeAccountInactive    = "account_inactive"
)

// respondServiceError maps the services error taxonomy onto HTTP.
func respondServiceError(c *gin.Context, module string, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.RespondErrorData(c, http.StatusBadRequest, err, verr)
	case errors.Is(err, services.ErrBadRequest):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondErrorData(c, http.StatusUnauthorized, err, gin.H{"code": codeInvalidCredentials})
	case errors.Is(err, services.ErrAccountInactive):
		utils.RespondErrorData(c, http.StatusUnauthorized, err, gin.H{"code": codeAccountInactive})
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrWrongTokenType):
		utils.RespondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, services.ErrRateLimited):
		utils.RespondError(c, http.StatusTooManyRequests, err)
	case errors.Is(err, services.ErrTimeout):
		utils.LogError(module, c.HandlerName(), c.Request.URL.Path, err)
		utils.RespondError(c, http.StatusGatewayTimeout, err)
	default:
		// MalformedIdentifier lands here too: it means stored ids are corrupt.
		utils.LogError(module, c.HandlerName(), c.Request.URL.Path, err)
		_ = c.Error(err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	}
}

func respondBindError(c *gin.Context, err error) {
	utils.RespondError(c, http.StatusBadRequest, err)
}
