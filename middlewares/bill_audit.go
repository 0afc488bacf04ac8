package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/oncounter-billing/utils"
)

// BillAuditMiddleware records who attempted a checkout and how it ended.
func BillAuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, _ := c.Get(ContextUsername)
		fields := logrus.Fields{"username": username, "client_ip": c.ClientIP()}

		utils.InfoLogger.WithFields(fields).Info("checkout started")

		c.Next()

		fields["status"] = c.Writer.Status()
		if billID, ok := c.Get("bill_id"); ok {
			fields["bill_id"] = billID
		}
		if c.Writer.Status() == http.StatusCreated {
			utils.InfoLogger.WithFields(fields).Info("checkout completed")
		} else {
			utils.ErrorLogger.WithFields(fields).Error("checkout failed")
		}
	}
}
