package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/oncounter-billing/config"
	"github.com/yeremiapane/oncounter-billing/router"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("error", "text")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks the counter flow:
// 0. seed a cashier, obtain tokens
// 1. refresh and verify the tokens
// 2. register a customer
// 3. check out two line items into a bill
// 4. fetch the bill back
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	cfg := integrationConfig()
	r := router.SetupRouter(db, cfg, nil)
	seedCashier(t, db)

	// 0. tokens
	var pair utils.TokenPair
	status := call(t, r, http.MethodPost, "/jwtauth/token", "",
		map[string]string{"username": "cashier", "password": "password123"}, &pair)
	require.Equal(t, http.StatusOK, status)

	// 1. refresh / verify
	var refreshed struct {
		Access string `json:"access"`
	}
	status = call(t, r, http.MethodPost, "/jwtauth/token/refresh", "",
		map[string]string{"refresh": pair.Refresh}, &refreshed)
	require.Equal(t, http.StatusOK, status)
	status = call(t, r, http.MethodPost, "/jwtauth/token/verify", "",
		map[string]string{"token": refreshed.Access}, nil)
	require.Equal(t, http.StatusOK, status)
	status = call(t, r, http.MethodPost, "/jwtauth/token/refresh", "",
		map[string]string{"refresh": pair.Access}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token := refreshed.Access

	// 2. customer
	var customer struct {
		CustID string `json:"cust_id"`
	}
	status = call(t, r, http.MethodPost, "/customer/create", token, map[string]string{
		"username":     "walkin",
		"email":        "walkin@example.com",
		"first_name":   "Walk",
		"last_name":    "In",
		"phone_number": "+44-7911123456",
		"address":      "Market Street 3",
	}, &customer)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "CUST0001", customer.CustID)

	// 3. checkout
	var bill struct {
		BillID     string          `json:"bill_id"`
		TotalPrice decimal.Decimal `json:"total_price"`
	}
	status = call(t, r, http.MethodPost, "/bill/create", token, map[string]interface{}{
		"emp_id":  "EMP0001",
		"cust_id": customer.CustID,
		"orders": []map[string]interface{}{
			{"item_id": "A", "quantity": 3, "unit_price": "10.00"},
			{"item_id": "B", "quantity": 1, "unit_price": "5.50"},
		},
	}, &bill)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "35.50", bill.TotalPrice.StringFixed(2))

	// 4. read back
	var fetched struct {
		BillID     string          `json:"bill_id"`
		TotalPrice decimal.Decimal `json:"total_price"`
		Orders     []struct {
			OrderID    string          `json:"order_id"`
			TotalPrice decimal.Decimal `json:"total_price"`
		} `json:"orders"`
	}
	status = call(t, r, http.MethodGet, "/bill/search/"+bill.BillID, "", nil, &fetched)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, bill.TotalPrice.Equal(fetched.TotalPrice))
	require.Len(t, fetched.Orders, 2)
	assert.Equal(t, "30.00", fetched.Orders[0].TotalPrice.StringFixed(2))
}

func TestHomeAndHealth(t *testing.T) {
	r := router.SetupRouter(setupTestDB(t), integrationConfig(), nil)

	assert.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/", "", nil, nil))

	var health map[string]string
	assert.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/health", "", nil, &health))
	assert.Equal(t, "up", health["database"])
}

func TestAnonymousRateLimit(t *testing.T) {
	cfg := integrationConfig()
	cfg.RateLimit.Anonymous = 3
	r := router.SetupRouter(setupTestDB(t), cfg, nil)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, call(t, r, http.MethodGet, "/customer/list", "", nil, nil))
	}
	assert.Equal(t, http.StatusTooManyRequests, call(t, r, http.MethodGet, "/customer/list", "", nil, nil))
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	r := router.SetupRouter(setupTestDB(t), integrationConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	autoMigrate(db)
	return db
}

func integrationConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "integration-secret"
	cfg.Database.TxTimeout = 5 * time.Second
	cfg.RateLimit.Anonymous = 100
	cfg.RateLimit.Authenticated = 100
	cfg.RateLimit.Window = time.Minute
	cfg.RateLimit.LoginEvery = time.Second
	cfg.RateLimit.LoginBurst = 10
	return cfg
}

func seedCashier(t *testing.T, db *gorm.DB) {
	t.Helper()
	active := true
	_, err := services.NewEmployeeService(db, utils.BcryptHasher{Cost: bcrypt.MinCost}, services.Options{}).
		Create(context.Background(), services.EmployeeInput{
			User: services.AccountInput{
				Username:    "cashier",
				Email:       "cashier@example.com",
				FirstName:   "Cash",
				LastName:    "Ier",
				PhoneNumber: "+1-5550001111",
			},
			Password:        "password123",
			ConfirmPassword: "password123",
			Address:         "Till 1",
			Department:      "Front",
			Position:        "Cashier",
			Salary:          decimal.RequireFromString("900.00"),
			HireDate:        time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			IsActive:        &active,
		})
	require.NoError(t, err)
}

// call performs a JSON request and decodes the envelope's data into out.
func call(t *testing.T, r *gin.Engine, method, path, token string, body, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env struct {
		Status bool            `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return w.Code
}
