package router

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"giftstore/internal/model"
	"giftstore/internal/store"
)

// giftCodeWithProduct joins the owning product's name onto a code row for the
// admin inventory listing.
type giftCodeWithProduct struct {
	model.GiftCode `gorm:"embedded"`
	ProductName    string `json:"product_name"`
}

// listGiftCodes returns the inventory, optionally filtered by status and
// product.
func listGiftCodes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&model.GiftCode{}).
			Select("gift_codes.*, products.name AS product_name").
			Joins("LEFT JOIN products ON products.id = gift_codes.product_id")

		if v := c.Query("status"); v != "" {
			switch v {
			case model.CodeAvailable, model.CodeReserved, model.CodeRedeemed, model.CodeExpired:
				q = q.Where("gift_codes.status = ?", v)
			default:
				respondError(c, http.StatusBadRequest, "Invalid status")
				return
			}
		}
		if v := c.Query("product_id"); v != "" {
			id, err := strconv.ParseUint(v, 10, 32)
			if err != nil {
				respondError(c, http.StatusBadRequest, "Invalid product id")
				return
			}
			q = q.Where("gift_codes.product_id = ?", uint(id))
		}

		var codes []giftCodeWithProduct
		if err := q.Order("gift_codes.created_at DESC").Scan(&codes).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch gift codes")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "gift_codes": codes})
	}
}

// bulkAddGiftCodes inserts operator-provided codes for a product. The whole
// batch is rejected if any code already exists anywhere in the store.
func bulkAddGiftCodes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ProductID uint     `json:"product_id" binding:"required,min=1"`
			Codes     []string `json:"codes" binding:"required,min=1,dive,required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		if err := db.First(&model.Product{}, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Product not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to add gift codes")
			return
		}

		codes := make([]model.GiftCode, 0, len(req.Codes))
		for _, code := range req.Codes {
			codes = append(codes, model.GiftCode{
				ProductID: req.ProductID,
				Code:      code,
				Status:    model.CodeAvailable,
			})
		}
		if err := db.Create(&codes).Error; err != nil {
			if store.IsUniqueViolation(err) {
				respondError(c, http.StatusBadRequest, "One or more codes already exist")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to add gift codes")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Successfully added %d gift codes", len(codes)),
			"count":   len(codes),
		})
	}
}

// generateGiftCodes mints server-side codes for a product, for operators who
// do not bring their own code lists.
func generateGiftCodes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ProductID uint `json:"product_id" binding:"required,min=1"`
			Count     int  `json:"count" binding:"required,min=1,max=1000"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		if err := db.First(&model.Product{}, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Product not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to generate gift codes")
			return
		}

		codes := make([]model.GiftCode, 0, req.Count)
		generated := make([]string, 0, req.Count)
		for i := 0; i < req.Count; i++ {
			code := newCode()
			codes = append(codes, model.GiftCode{
				ProductID: req.ProductID,
				Code:      code,
				Status:    model.CodeAvailable,
			})
			generated = append(generated, code)
		}
		if err := db.Create(&codes).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to generate gift codes")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": fmt.Sprintf("Generated %d gift codes", len(codes)),
			"count":   len(codes),
			"codes":   generated,
		})
	}
}

// deleteGiftCode removes one code from inventory. Redeemed codes and codes
// tied to an order are never deletable.
func deleteGiftCode(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}

		var code model.GiftCode
		if err := db.First(&code, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondError(c, http.StatusNotFound, "Gift code not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "Failed to delete gift code")
			return
		}
		if code.Status == model.CodeRedeemed {
			respondError(c, http.StatusBadRequest, "Cannot delete redeemed gift codes")
			return
		}
		if code.OrderID != nil {
			respondError(c, http.StatusBadRequest, "Cannot delete gift codes tied to an order")
			return
		}

		if err := db.Delete(&code).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to delete gift code")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Gift code deleted successfully"})
	}
}

// newCode builds a redemption code. uuid gives uniqueness; the unique index
// on gift_codes.code is the real guarantee.
func newCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("GFT-%s-%s", raw[:8], raw[8:16])
}
