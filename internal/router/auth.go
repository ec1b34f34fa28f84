package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"giftstore/internal/auth"
	"giftstore/internal/config"
	"giftstore/internal/middleware"
	"giftstore/internal/model"
)

// register creates a customer account and returns a fresh token.
func register(db *gorm.DB, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		var existing model.User
		err := db.Where("email = ?", req.Email).First(&existing).Error
		if err == nil {
			respondError(c, http.StatusBadRequest, "Email already exists")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusInternalServerError, "Registration failed")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Registration failed")
			return
		}
		user := &model.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         model.RoleCustomer,
		}
		if err := db.Create(user).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Registration failed")
			return
		}

		token, err := auth.GenerateToken([]byte(cfg.JWTSecret), user, cfg.TokenTTL)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Registration failed")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "User registered successfully",
			"token":   token,
			"user":    user,
		})
	}
}

// login verifies credentials and issues a bearer token. The error message is
// identical for unknown email and wrong password.
func login(db *gorm.DB, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		var user model.User
		if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			respondError(c, http.StatusInternalServerError, "Login failed")
			return
		}
		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			respondError(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		token, err := auth.GenerateToken([]byte(cfg.JWTSecret), &user, cfg.TokenTTL)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Login failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Login successful",
			"token":   token,
			"user":    user,
		})
	}
}

// profile returns the authenticated account.
func profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    middleware.CurrentUser(c),
		})
	}
}
