package router

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin("dash@example.com")
	buyer := env.registerUser("spender@example.com")
	p := env.seedCatalog("Stat Card", "20.00", true, 10)

	paid := env.placeOrder(buyer, p.ID, 2)
	env.placeOrder(buyer, p.ID, 1) // stays pending, not revenue
	w := env.do(http.MethodPost, "/api/payment/confirm", buyer, map[string]any{"order_id": paid})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats, _ := decode(t, w)["stats"].(map[string]any)
	require.NotNil(t, stats)

	// Only paid orders count toward revenue.
	revenue := decimal.RequireFromString(fmt.Sprintf("%v", stats["total_revenue"]))
	assert.True(t, revenue.Equal(decimal.RequireFromString("40.00")), "revenue %s", revenue)
	assert.EqualValues(t, 2, stats["total_orders"])
	assert.EqualValues(t, 1, stats["total_products"])
	// The admin account is not a customer.
	assert.EqualValues(t, 1, stats["total_customers"])

	recent, _ := stats["recent_orders"].([]any)
	require.Len(t, recent, 2)
	first, _ := recent[0].(map[string]any)
	assert.NotEmpty(t, first["order_no"])
	assert.Equal(t, "Test User", first["user_name"])
}

func TestDashboardStatsEmptyStore(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin("empty@example.com")

	w := env.do(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats, _ := decode(t, w)["stats"].(map[string]any)
	require.NotNil(t, stats)
	assert.EqualValues(t, 0, stats["total_orders"])
	assert.EqualValues(t, 0, stats["total_products"])
	recent, _ := stats["recent_orders"].([]any)
	assert.Empty(t, recent)
}
