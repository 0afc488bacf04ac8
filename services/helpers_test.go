package services

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/oncounter-billing/models"
	"github.com/yeremiapane/oncounter-billing/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()))
}

// setupFileTestDB keeps the schema on disk, so it outlives a connection
// that gets dropped mid-transaction.
func setupFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, "file:"+filepath.Join(t.TempDir(), "billing.db")+"?_foreign_keys=on")
}

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()
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
	require.NoError(t, Sequencer{}.Seed(db))
	return db
}

var testOptions = Options{TxTimeout: 5 * time.Second}

func testHasher() utils.BcryptHasher {
	return utils.BcryptHasher{Cost: bcrypt.MinCost}
}

func customerInput(n int) CustomerInput {
	return CustomerInput{
		Username:    fmt.Sprintf("customer%d", n),
		Email:       fmt.Sprintf("customer%d@example.com", n),
		FirstName:   "Jane",
		LastName:    "Doe",
		PhoneNumber: "+62-812345678901",
		Address:     "Jl. Merdeka 1",
	}
}

func employeeInput(username string) EmployeeInput {
	return EmployeeInput{
		User: AccountInput{
			Username:    username,
			Email:       username + "@example.com",
			FirstName:   "John",
			LastName:    "Smith",
			PhoneNumber: "+1-5551234567",
		},
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		Address:         "12 High Street",
		Department:      "Sales",
		Position:        "Cashier",
		Salary:          decimal.RequireFromString("2500.00"),
		HireDate:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

// mockHasher records calls made through the PasswordHasher interface.
type mockHasher struct {
	mock.Mock
}

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Compare(hashed, password string) error {
	args := m.Called(hashed, password)
	return args.Error(0)
}
