package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"giftstore/internal/config"
	"giftstore/internal/model"
)

type testEnv struct {
	t  *testing.T
	db *gorm.DB
	r  *gin.Engine
}

// newTestEnv builds a router against a throwaway sqlite database, without
// Redis and without the event outbox.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "router_test.db")
	db, err := gorm.Open(sqlite.Open("file:"+path+"?_busy_timeout=10000"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))

	cfg := config.AppConfig{
		JWTSecret:       "test-secret",
		TokenTTL:        time.Hour,
		OrderRateLimit:  100,
		OrderRateWindow: time.Minute,
	}
	r := gin.New()
	Setup(r, db, nil, nil, zap.NewNop(), cfg)
	return &testEnv{t: t, db: db, r: r}
}

// do performs a request. A non-empty token goes into the Authorization
// header; a non-nil body is JSON encoded.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into a generic map.
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// registerUser creates an account through the API and returns its token.
func (e *testEnv) registerUser(email string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	out := decode(e.t, w)
	token, _ := out["token"].(string)
	require.NotEmpty(e.t, token)
	return token
}

// registerAdmin registers a user and promotes it to admin. The bearer token
// stays valid because authorization is checked against the stored role.
func (e *testEnv) registerAdmin(email string) string {
	e.t.Helper()
	token := e.registerUser(email)
	require.NoError(e.t, e.db.Model(&model.User{}).
		Where("email = ?", email).
		Update("role", model.RoleAdmin).Error)
	return token
}

// seedCatalog creates a category, a product and its available codes directly
// in the database.
func (e *testEnv) seedCatalog(name, price string, active bool, codes int) *model.Product {
	e.t.Helper()
	cat := model.Category{Name: "Category " + name}
	require.NoError(e.t, e.db.Create(&cat).Error)
	p := model.Product{
		Name:       name,
		CategoryID: cat.ID,
		Price:      decimal.RequireFromString(price),
		Active:     active,
	}
	require.NoError(e.t, e.db.Create(&p).Error)
	for i := 0; i < codes; i++ {
		code := model.GiftCode{
			ProductID: p.ID,
			Code:      fmt.Sprintf("%s-%04d", name, i),
			Status:    model.CodeAvailable,
		}
		require.NoError(e.t, e.db.Create(&code).Error)
	}
	return &p
}

// placeOrder creates an order through the API and returns its id.
func (e *testEnv) placeOrder(token string, productID uint, quantity int) uint {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/orders", token, map[string]any{
		"items": []map[string]any{{"product_id": productID, "quantity": quantity}},
	})
	require.Equal(e.t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	out := decode(e.t, w)
	order, _ := out["order"].(map[string]any)
	require.NotNil(e.t, order)
	id, _ := order["order_id"].(float64)
	require.NotZero(e.t, id)
	return uint(id)
}
