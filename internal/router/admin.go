package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"giftstore/internal/model"
)

// dashboardStats aggregates the numbers the admin dashboard renders: revenue
// over paid orders, headline counts, and the latest activity.
func dashboardStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var revenue decimal.Decimal
		if err := db.Model(&model.Order{}).
			Where("status = ?", model.OrderPaid).
			Select("COALESCE(SUM(total_price), 0)").
			Scan(&revenue).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch stats")
			return
		}

		var totalOrders, totalProducts, totalCustomers int64
		if err := db.Model(&model.Order{}).Count(&totalOrders).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch stats")
			return
		}
		if err := db.Model(&model.Product{}).Count(&totalProducts).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch stats")
			return
		}
		if err := db.Model(&model.User{}).
			Where("role = ?", model.RoleCustomer).
			Count(&totalCustomers).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch stats")
			return
		}

		var recent []model.Order
		if err := db.Preload("User").
			Order("created_at DESC").
			Limit(5).
			Find(&recent).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to fetch stats")
			return
		}
		recentOut := make([]gin.H, 0, len(recent))
		for _, o := range recent {
			userName := ""
			if o.User != nil {
				userName = o.User.Name
			}
			recentOut = append(recentOut, gin.H{
				"order_id":    o.ID,
				"order_no":    o.OrderNo,
				"user_name":   userName,
				"total_price": o.TotalPrice,
				"status":      o.Status,
				"order_date":  o.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"stats": gin.H{
				"total_revenue":   revenue,
				"total_orders":    totalOrders,
				"total_products":  totalProducts,
				"total_customers": totalCustomers,
				"recent_orders":   recentOut,
			},
		})
	}
}
