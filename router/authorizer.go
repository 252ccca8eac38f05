package router

import (
	"net/http"

	"fanhub/controllers"
	"fanhub/models"

	"github.com/gin-gonic/gin"
)

// Authorizer blocks access to protected routes when the member is not active.
func Authorizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := controllers.GetMemberLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}

		if member.Status == models.MEMBER_STATUS_PENDING {
			controllers.RespondError(c, "account activation required", http.StatusForbidden)
			c.Abort()
			return
		}
		if member.Status == models.MEMBER_STATUS_BLOCKED {
			controllers.RespondError(c, "member blocked", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
