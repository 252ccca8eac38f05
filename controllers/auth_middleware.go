package controllers

import (
	"errors"
	"net/http"
	"strings"

	dbpkg "fanhub/db"
	"fanhub/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ctxMemberKey = "auth_member"

// AuthRequired validates the Bearer token and loads the member from DB into context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if len(h) < len("Bearer ") || !strings.EqualFold(h[:len("Bearer ")], "bearer ") {
			RespondError(c, "missing bearer token", http.StatusUnauthorized)
			c.Abort()
			return
		}
		token := strings.TrimSpace(h[len("Bearer "):])
		memberID, err := parseAccessToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			RespondError(c, msg, http.StatusUnauthorized)
			c.Abort()
			return
		}

		db := dbpkg.DBInstance(c)
		if db == nil {
			RespondError(c, "database not configured", http.StatusInternalServerError)
			c.Abort()
			return
		}
		var member models.Member
		if err := db.First(&member, memberID).Error; err != nil {
			RespondError(c, "member not found", http.StatusUnauthorized)
			c.Abort()
			return
		}

		c.Set(ctxMemberKey, member)
		c.Next()
	}
}

// GetMemberLogged returns the member loaded by AuthRequired.
func GetMemberLogged(c *gin.Context) (models.Member, bool) {
	v, ok := c.Get(ctxMemberKey)
	if !ok {
		return models.Member{}, false
	}
	member, ok := v.(models.Member)
	return member, ok
}

// loggedMember is GetMemberLogged answering 401 when absent.
func loggedMember(c *gin.Context) (models.Member, bool) {
	member, ok := GetMemberLogged(c)
	if !ok {
		RespondError(c, "unauthorized", http.StatusUnauthorized)
	}
	return member, ok
}
