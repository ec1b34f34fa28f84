package router

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"giftstore/internal/model"
	"giftstore/internal/store"
)

// productWithStock carries a product row plus its available-code count.
type productWithStock struct {
	model.Product `gorm:"embedded"`
	Stock         int64 `json:"stock"`
}

// availableStockSelect appends a correlated available-code count to product
// rows. Parameterized so status values never end up interpolated.
const availableStockSelect = "products.*, (SELECT COUNT(*) FROM gift_codes gc " +
	"WHERE gc.product_id = products.id AND gc.status = ? AND gc.order_id IS NULL) AS stock"

// listProducts returns active products with stock, filtered by query params:
// category, search, min_price, max_price and a whitelisted sort.
func listProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&model.Product{}).
			Select(availableStockSelect, model.CodeAvailable).
			Where("products.active = ?", true)

		if v := c.Query("category"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid category id")
				return
			}
			q = q.Where("products.category_id = ?", uint(id))
		}
		if v := c.Query("search"); v != "" {
			like := "%" + v + "%"
			q = q.Where("products.name LIKE ? OR products.description LIKE ?", like, like)
		}
		if v := c.Query("min_price"); v != "" {
			minPrice, err := decimal.NewFromString(v)
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid min_price")
				return
			}
			q = q.Where("products.price >= ?", minPrice)
		}
		if v := c.Query("max_price"); v != "" {
			maxPrice, err := decimal.NewFromString(v)
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid max_price")
				return
			}
			q = q.Where("products.price <= ?", maxPrice)
		}

		switch c.Query("sort") {
		case "price_asc":
			q = q.Order("products.price ASC")
		case "price_desc":
			q = q.Order("products.price DESC")
		case "name":
			q = q.Order("products.name ASC")
		default:
			q = q.Order("products.created_at DESC")
		}

		var products []productWithStock
		if err := q.Scan(&products).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch products")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"count":    len(products),
			"products": products,
		})
	}
}

// getProduct returns one product with stock, active or not.
func getProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var product productWithStock
		err := db.Model(&model.Product{}).
			Select(availableStockSelect, model.CodeAvailable).
			Where("products.id = ?", id).
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Product not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to fetch product")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
	}
}

// createProduct inserts a product together with its initial gift codes in one
// transaction: a product with zero codes would be listed with no stock ever.
func createProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string          `json:"name" binding:"required"`
			CategoryID  uint            `json:"category_id" binding:"required,min=1"`
			Price       decimal.Decimal `json:"price" binding:"required"`
			Description string          `json:"description"`
			ImageURL    string          `json:"image_url"`
			GiftCodes   []string        `json:"gift_codes" binding:"required,min=1,dive,required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		if req.Price.LessThanOrEqual(decimal.Zero) {
			respondError(c, http.StatusBadRequest, "Price must be positive")
			return
		}

		var category model.Category
		if err := db.First(&category, req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusBadRequest, "Category not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to create product")
			return
		}

		product := &model.Product{
			Name:        req.Name,
			CategoryID:  req.CategoryID,
			Price:       req.Price,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			Active:      true,
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(product).Error; err != nil {
				return err
			}
			codes := make([]model.GiftCode, 0, len(req.GiftCodes))
			for _, code := range req.GiftCodes {
				codes = append(codes, model.GiftCode{
					ProductID: product.ID,
					Code:      code,
					Status:    model.CodeAvailable,
				})
			}
			return tx.Create(&codes).Error
		})
		if err != nil {
			if store.IsUniqueViolation(err) {
				respondError(c, http.StatusBadRequest, "One or more gift codes already exist")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to create product")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":          true,
			"message":          "Product created successfully",
			"product":          product,
			"gift_codes_count": len(req.GiftCodes),
		})
	}
}

// updateProduct applies a partial update; absent fields keep their value.
func updateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		var req struct {
			Name        *string          `json:"name"`
			CategoryID  *uint            `json:"category_id"`
			Price       *decimal.Decimal `json:"price"`
			Description *string          `json:"description"`
			ImageURL    *string          `json:"image_url"`
			Active      *bool            `json:"is_active"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.CategoryID != nil {
			updates["category_id"] = *req.CategoryID
		}
		if req.Price != nil {
			if req.Price.LessThanOrEqual(decimal.Zero) {
				respondError(c, http.StatusBadRequest, "Price must be positive")
				return
			}
			updates["price"] = *req.Price
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.ImageURL != nil {
			updates["image_url"] = *req.ImageURL
		}
		if req.Active != nil {
			updates["active"] = *req.Active
		}
		if len(updates) == 0 {
			respondError(c, http.StatusBadRequest, "No fields to update")
			return
		}

		res := db.Model(&model.Product{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			respondError(c, http.StatusInternalServerError, "Failed to update product")
			return
		}
		if res.RowsAffected == 0 {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated successfully"})
	}
}

// deleteProduct removes a product and its unsold codes. Blocked while any
// order line references the product; codes tied to orders are untouched by
// construction (the delete predicate requires order_id IS NULL).
func deleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			var refs int64
			if err := tx.Model(&model.OrderItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
				return err
			}
			if refs > 0 {
				return errProductOrdered
			}
			if err := tx.Where("product_id = ? AND order_id IS NULL", id).
				Delete(&model.GiftCode{}).Error; err != nil {
				return err
			}
			res := tx.Delete(&model.Product{}, id)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
			return nil
		})
		switch {
		case errors.Is(err, errProductOrdered):
			respondError(c, http.StatusBadRequest, "Cannot delete product with existing orders")
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondError(c, http.StatusNotFound, "Product not found")
		case err != nil:
			respondError(c, http.StatusInternalServerError, "Failed to delete product")
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
		}
	}
}

var errProductOrdered = errors.New("product referenced by orders")

// paramID parses a positive integer path parameter, answering 400 itself on
// bad input.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}
