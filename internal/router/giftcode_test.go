package router

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftstore/internal/model"
)

func TestListGiftCodes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin("inventory@example.com")
	customer := env.registerUser("peeker@example.com")
	buyer := env.registerUser("codebuyer@example.com")
	a := env.seedCatalog("Alpha", "10.00", true, 3)
	env.seedCatalog("Beta", "10.00", true, 2)
	env.placeOrder(buyer, a.ID, 1)

	w := env.do(http.MethodGet, "/api/gift-codes", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodGet, "/api/gift-codes", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	codes, _ := decode(t, w)["gift_codes"].([]any)
	assert.Len(t, codes, 5)
	first, _ := codes[0].(map[string]any)
	assert.NotEmpty(t, first["product_name"])

	w = env.do(http.MethodGet, "/api/gift-codes?status=reserved", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	codes, _ = decode(t, w)["gift_codes"].([]any)
	assert.Len(t, codes, 1)

	w = env.do(http.MethodGet, fmt.Sprintf("/api/gift-codes?product_id=%d&status=available", a.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	codes, _ = decode(t, w)["gift_codes"].([]any)
	assert.Len(t, codes, 2)

	w = env.do(http.MethodGet, "/api/gift-codes?status=bogus", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkAddGiftCodes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin("bulk@example.com")
	p := env.seedCatalog("Bulked", "10.00", true, 0)

	w := env.do(http.MethodPost, "/api/gift-codes/bulk", admin, map[string]any{
		"product_id": p.ID,
		"codes":      []string{"BULK-1", "BULK-2", "BULK-3"},
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.EqualValues(t, 3, decode(t, w)["count"])

	// Duplicates reject the whole batch.
	w = env.do(http.MethodPost, "/api/gift-codes/bulk", admin, map[string]any{
		"product_id": p.ID,
		"codes":      []string{"BULK-9", "BULK-1"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var total int64
	require.NoError(t, env.db.Model(&model.GiftCode{}).
		Where("product_id = ?", p.ID).Count(&total).Error)
	assert.EqualValues(t, 3, total)

	w = env.do(http.MethodPost, "/api/gift-codes/bulk", admin, map[string]any{
		"product_id": 9999,
		"codes":      []string{"LOST-1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateGiftCodes(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin("minter@example.com")
	p := env.seedCatalog("Minted", "10.00", true, 0)

	w := env.do(http.MethodPost, "/api/gift-codes/generate", admin, map[string]any{
		"product_id": p.ID,
		"count":      10,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	out := decode(t, w)
	codes, _ := out["codes"].([]any)
	require.Len(t, codes, 10)
	for _, raw := range codes {
		code, _ := raw.(string)
		assert.Regexp(t, `^GFT-[0-9A-F]{8}-[0-9A-F]{8}$`, code)
	}

	var available int64
	require.NoError(t, env.db.Model(&model.GiftCode{}).
		Where("product_id = ? AND status = ?", p.ID, model.CodeAvailable).
		Count(&available).Error)
	assert.EqualValues(t, 10, available)

	// Count bounds are enforced by binding.
	w = env.do(http.MethodPost, "/api/gift-codes/generate", admin, map[string]any{
		"product_id": p.ID,
		"count":      1001,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteGiftCode(t *testing.T) {
	env := newTestEnv(t)
	admin := env.registerAdmin("wiper@example.com")
	buyer := env.registerUser("keeper@example.com")
	p := env.seedCatalog("Wipeable", "10.00", true, 2)
	env.placeOrder(buyer, p.ID, 1)

	var reserved, available model.GiftCode
	require.NoError(t, env.db.Where("product_id = ? AND status = ?", p.ID, model.CodeReserved).
		First(&reserved).Error)
	require.NoError(t, env.db.Where("product_id = ? AND status = ?", p.ID, model.CodeAvailable).
		First(&available).Error)

	// Codes tied to an order stay.
	w := env.do(http.MethodDelete, fmt.Sprintf("/api/gift-codes/%d", reserved.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, fmt.Sprintf("/api/gift-codes/%d", available.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/api/gift-codes/9999", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
