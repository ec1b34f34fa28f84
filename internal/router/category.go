package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"giftstore/internal/model"
)

func listCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []model.Category
		if err := db.Order("name ASC").Find(&categories).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch categories")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"count":      len(categories),
			"categories": categories,
		})
	}
}

func getCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var category model.Category
		if err := db.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Category not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to fetch category")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
	}
}

func createCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		var existing model.Category
		err := db.Where("name = ?", req.Name).First(&existing).Error
		if err == nil {
			respondError(c, http.StatusBadRequest, "Category already exists")
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusInternalServerError, "Failed to create category")
			return
		}

		category := &model.Category{Name: req.Name}
		if err := db.Create(category).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to create category")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"success":  true,
			"message":  "Category created successfully",
			"category": category,
		})
	}
}

func updateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Name string `json:"name" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		res := db.Model(&model.Category{}).Where("id = ?", id).Update("name", req.Name)
		if res.Error != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update category")
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category updated successfully"})
	}
}

// deleteCategory refuses to orphan products.
func deleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var refs int64
		if err := db.Model(&model.Product{}).Where("category_id = ?", id).Count(&refs).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to delete category")
			return
		}
		if refs > 0 {
			respondError(c, http.StatusBadRequest, "Cannot delete category with existing products")
			return
		}

		res := db.Delete(&model.Category{}, id)
		if res.Error != nil {
			respondError(c, http.StatusInternalServerError, "Failed to delete category")
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
	}
}
