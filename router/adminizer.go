package router

import (
	"net/http"

	"fanhub/controllers"

	"github.com/gin-gonic/gin"
)

// Adminizer blocks access when the member is not staff of its association.
func Adminizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := controllers.GetMemberLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if !member.IsStaff() {
			controllers.RespondError(c, "admin required", http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Superadminizer restricts platform-wide operations (tenant management).
func Superadminizer() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := controllers.GetMemberLogged(c)
		if !ok {
			controllers.RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		if !member.IsSuperadmin() {
			controllers.RespondError(c, "superadmin required", http.StatusForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
