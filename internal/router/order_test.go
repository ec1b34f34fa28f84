package router

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftstore/internal/model"
)

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser("buyer@example.com")
	steam := env.seedCatalog("Steam Card", "50.00", true, 5)
	netflix := env.seedCatalog("Netflix Card", "15.99", true, 3)

	w := env.do(http.MethodPost, "/api/orders", token, map[string]any{
		"items": []map[string]any{
			{"product_id": steam.ID, "quantity": 2},
			{"product_id": netflix.ID, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	out := decode(t, w)
	order, _ := out["order"].(map[string]any)
	require.NotNil(t, order)
	assert.Equal(t, model.OrderPending, order["status"])
	total := decimal.RequireFromString(fmt.Sprintf("%v", order["total_price"]))
	assert.True(t, total.Equal(decimal.RequireFromString("115.99")), "total %s", total)

	var reserved int64
	require.NoError(t, env.db.Model(&model.GiftCode{}).
		Where("status = ?", model.CodeReserved).Count(&reserved).Error)
	assert.EqualValues(t, 3, reserved)
}

func TestCreateOrderRejections(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerUser("rejected@example.com")
	active := env.seedCatalog("Active", "10.00", true, 2)
	inactive := env.seedCatalog("Inactive", "10.00", false, 5)

	cases := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"empty cart", map[string]any{"items": []map[string]any{}}, http.StatusBadRequest},
		{"zero quantity", map[string]any{"items": []map[string]any{
			{"product_id": active.ID, "quantity": 0}}}, http.StatusBadRequest},
		{"unknown product", map[string]any{"items": []map[string]any{
			{"product_id": 9999, "quantity": 1}}}, http.StatusNotFound},
		{"inactive product", map[string]any{"items": []map[string]any{
			{"product_id": inactive.ID, "quantity": 1}}}, http.StatusBadRequest},
		{"over stock", map[string]any{"items": []map[string]any{
			{"product_id": active.ID, "quantity": 3}}}, http.StatusConflict},
	}
	for _, tc := range cases {
		w := env.do(http.MethodPost, "/api/orders", token, tc.body)
		assert.Equal(t, tc.status, w.Code, "%s: %s", tc.name, w.Body.String())
	}

	// Rejections leave no orders and no reservations behind.
	var orders, reserved int64
	require.NoError(t, env.db.Model(&model.Order{}).Count(&orders).Error)
	require.NoError(t, env.db.Model(&model.GiftCode{}).
		Where("status = ?", model.CodeReserved).Count(&reserved).Error)
	assert.Zero(t, orders)
	assert.Zero(t, reserved)
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedCatalog("Locked", "5.00", true, 1)

	w := env.do(http.MethodPost, "/api/orders", "", map[string]any{
		"items": []map[string]any{{"product_id": p.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyOrders(t *testing.T) {
	env := newTestEnv(t)
	mine := env.registerUser("mine@example.com")
	other := env.registerUser("other@example.com")
	p := env.seedCatalog("Shared", "10.00", true, 10)

	env.placeOrder(mine, p.ID, 1)
	env.placeOrder(mine, p.ID, 2)
	env.placeOrder(other, p.ID, 1)

	w := env.do(http.MethodGet, "/api/orders/my-orders", mine, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders, _ := decode(t, w)["orders"].([]any)
	assert.Len(t, orders, 2)
}

func TestOrderDetail(t *testing.T) {
	env := newTestEnv(t)
	owner := env.registerUser("owner@example.com")
	stranger := env.registerUser("stranger@example.com")
	admin := env.registerAdmin("admin@example.com")
	p := env.seedCatalog("Detailed", "25.00", true, 5)
	orderID := env.placeOrder(owner, p.ID, 2)

	w := env.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	order, _ := decode(t, w)["order"].(map[string]any)
	require.NotNil(t, order)
	items, _ := order["items"].([]any)
	require.Len(t, items, 1)
	item, _ := items[0].(map[string]any)
	assert.Equal(t, "Detailed", item["product_name"])
	codes, _ := item["gift_codes"].([]any)
	assert.Len(t, codes, 2)

	// A foreign order looks like it does not exist.
	w = env.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), stranger, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Admins see everything.
	w = env.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListAllOrdersAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	customer := env.registerUser("c@example.com")
	admin := env.registerAdmin("a@example.com")
	p := env.seedCatalog("Listed", "10.00", true, 5)
	env.placeOrder(customer, p.ID, 1)

	w := env.do(http.MethodGet, "/api/orders", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/orders", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	orders, _ := decode(t, w)["orders"].([]any)
	require.Len(t, orders, 1)
	first, _ := orders[0].(map[string]any)
	assert.Equal(t, "c@example.com", first["user_email"])
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.registerUser("transitions@example.com")
	admin := env.registerAdmin("ops@example.com")
	p := env.seedCatalog("Transit", "10.00", true, 5)
	orderID := env.placeOrder(buyer, p.ID, 1)
	path := fmt.Sprintf("/api/orders/%d/status", orderID)

	// pending -> refunded is not a legal transition.
	w := env.do(http.MethodPut, path, admin, map[string]string{"status": model.OrderRefunded})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, path, admin, map[string]string{"status": "nonsense"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPut, path, admin, map[string]string{"status": model.OrderCancelled})
	require.Equal(t, http.StatusOK, w.Code)

	// Cancelling does not release the reserved codes.
	var reserved int64
	require.NoError(t, env.db.Model(&model.GiftCode{}).
		Where("order_id = ? AND status = ?", orderID, model.CodeReserved).
		Count(&reserved).Error)
	assert.EqualValues(t, 1, reserved)

	// The order is terminal now.
	w = env.do(http.MethodPut, path, admin, map[string]string{"status": model.OrderPaid})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatusToPaidRecordsPayment(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.registerUser("marked@example.com")
	admin := env.registerAdmin("marker@example.com")
	p := env.seedCatalog("Marked", "18.00", true, 5)
	orderID := env.placeOrder(buyer, p.ID, 1)
	path := fmt.Sprintf("/api/orders/%d/status", orderID)

	w := env.do(http.MethodPut, path, admin, map[string]string{"status": model.OrderPaid})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	// The admin path records the payment just like buyer confirmation.
	var payment model.Payment
	require.NoError(t, env.db.Where("order_id = ?", orderID).First(&payment).Error)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("18.00")))
	assert.Equal(t, model.PaymentMethodSimulated, payment.Method)

	// A later buyer confirmation cannot pay the order a second time.
	w = env.do(http.MethodPost, "/api/payment/confirm", buyer, map[string]any{"order_id": orderID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var payments int64
	require.NoError(t, env.db.Model(&model.Payment{}).
		Where("order_id = ?", orderID).Count(&payments).Error)
	assert.EqualValues(t, 1, payments)
}
