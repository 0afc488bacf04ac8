package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/oncounter-billing/config"
	"github.com/yeremiapane/oncounter-billing/models"
	"github.com/yeremiapane/oncounter-billing/router"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupTestDB uses a private SQLite in-memory database per test
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

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	require.NoError(t, services.Sequencer{}.Seed(db))
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "controller-test-secret"
	cfg.JWT.AccessTTL = time.Hour
	cfg.JWT.RefreshTTL = 2 * time.Hour
	cfg.Database.TxTimeout = 5 * time.Second
	cfg.RateLimit.Anonymous = 1000
	cfg.RateLimit.Authenticated = 1000
	cfg.RateLimit.Window = time.Hour
	cfg.RateLimit.LoginEvery = time.Second
	cfg.RateLimit.LoginBurst = 50
	cfg.CORS.AllowedOrigins = []string{"http://127.0.0.1:5500"}
	return cfg
}

func setupRouterForTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	return router.SetupRouter(db, testConfig(), nil), db
}

// seedEmployee creates an active employee straight through the service layer.
func seedEmployee(t *testing.T, db *gorm.DB, username string, active bool) *models.Employee {
	t.Helper()
	svc := services.NewEmployeeService(db, utils.BcryptHasher{Cost: bcrypt.MinCost}, services.Options{})
	emp, err := svc.Create(context.Background(), services.EmployeeInput{
		User: services.AccountInput{
			Username:    username,
			Email:       username + "@example.com",
			FirstName:   "Test",
			LastName:    "Staff",
			PhoneNumber: "+62-812345678901",
		},
		Password:        "password123",
		ConfirmPassword: "password123",
		Address:         "Counter 1",
		Department:      "Front",
		Position:        "Cashier",
		Salary:          decimal.RequireFromString("1000.00"),
		HireDate:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		IsActive:        &active,
	})
	require.NoError(t, err)
	return emp
}

func performRequest(r *gin.Engine, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

// loginTest obtains an access token for a freshly seeded employee.
func loginTest(t *testing.T, r *gin.Engine, db *gorm.DB) string {
	t.Helper()
	seedEmployee(t, db, "cashier", true)

	w, env := performRequest(r, http.MethodPost, "/jwtauth/token",
		map[string]string{"username": "cashier", "password": "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var pair utils.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	require.NotEmpty(t, pair.Access)
	return pair.Access
}
