package router

import (
	"log/slog"
	"time"

	"fanhub/controllers"
	"fanhub/db"
	"fanhub/models"

	"github.com/gin-gonic/gin"
)

// Audit stores one AuditLog row per authenticated call, after the handler ran.
func Audit(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		member, ok := controllers.GetMemberLogged(c)
		if !ok {
			return
		}
		database := db.DBInstance(c)
		if database == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		entry := models.AuditLog{
			AssociationID: member.AssociationID,
			MemberID:      member.ID,
			MemberEmail:   member.Email,
			Method:        c.Request.Method,
			Path:          path,
			Status:        c.Writer.Status(),
			LatencyMs:     time.Since(start).Milliseconds(),
			IP:            c.ClientIP(),
		}
		if err := database.Create(&entry).Error; err != nil {
			logger.Warn("audit log not stored", "error", err, "path", path)
		}
	}
}
