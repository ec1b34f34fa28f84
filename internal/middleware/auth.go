package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"giftstore/internal/auth"
	"giftstore/internal/model"
)

const userCtxKey = "current_user"

// RequireAuth validates the bearer token and loads the user it names so a
// revoked account is rejected on the next request even with a live token.
func RequireAuth(db *gorm.DB, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, no token",
			})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		userID, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, token failed",
			})
			return
		}

		var user model.User
		if err := db.First(&user, userID).Error; err != nil {
			status := http.StatusInternalServerError
			msg := "Failed to load user"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusUnauthorized
				msg = "User not found"
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
			return
		}

		c.Set(userCtxKey, &user)
		c.Next()
	}
}

// RequireAdmin gates a route to admin accounts. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Access denied. Admin only.",
			})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil outside RequireAuth.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
