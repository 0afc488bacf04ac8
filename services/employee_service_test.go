package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/oncounter-billing/models"
)

func TestEmployeeCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEmployeeService(db, testHasher(), testOptions)
	ctx := context.Background()

	emp, err := svc.Create(ctx, employeeInput("cashier1"))
	require.NoError(t, err)
	assert.Equal(t, "EMP0001", emp.EmpID)
	assert.True(t, emp.IsActive)
	assert.True(t, emp.Account.IsActive)
	assert.True(t, emp.Account.IsStaff)
	assert.False(t, emp.Account.IsSuperuser)
	assert.NotEqual(t, "s3cret-pass", emp.Account.Password)
	assert.NoError(t, testHasher().Compare(emp.Account.Password, "s3cret-pass"))

	found, err := svc.FindByID(ctx, "EMP0001")
	require.NoError(t, err)
	assert.Equal(t, "cashier1", found.Account.Username)
	assert.True(t, decimal.RequireFromString("2500").Equal(found.Salary))

	second, err := svc.Create(ctx, employeeInput("cashier2"))
	require.NoError(t, err)
	assert.Equal(t, "EMP0002", second.EmpID)
}

func TestEmployeeCreateValidation(t *testing.T) {
	svc := NewEmployeeService(setupTestDB(t), testHasher(), testOptions)
	ctx := context.Background()

	_, err := svc.Create(ctx, employeeInput("taken"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*EmployeeInput)
		field  string
		reason string
	}{
		{"password mismatch", func(in *EmployeeInput) { in.ConfirmPassword = "other" }, "password", "mismatch"},
		{"bad phone", func(in *EmployeeInput) { in.User.PhoneNumber = "12345" }, "phone_number", "format"},
		{"negative salary", func(in *EmployeeInput) { in.Salary = decimal.RequireFromString("-1") }, "salary", "negative"},
		{"three decimals", func(in *EmployeeInput) { in.Salary = decimal.RequireFromString("10.125") }, "salary", "precision"},
		{"eleven digits", func(in *EmployeeInput) { in.Salary = decimal.RequireFromString("123456789.00") }, "salary", "range"},
		{"duplicate username", func(in *EmployeeInput) { in.User.Username = "taken" }, "username", "unique"},
		{"duplicate email", func(in *EmployeeInput) { in.User.Email = "taken@example.com" }, "email", "unique"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := employeeInput("fresh")
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEmployeeCreateHashFailureWritesNothing(t *testing.T) {
	db := setupTestDB(t)
	hasher := new(mockHasher)
	hasher.On("Hash", "s3cret-pass").Return("", errors.New("entropy exhausted"))
	svc := NewEmployeeService(db, hasher, testOptions)

	_, err := svc.Create(context.Background(), employeeInput("cashier1"))
	assert.EqualError(t, err, "entropy exhausted")
	hasher.AssertExpectations(t)

	var accounts int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	assert.Zero(t, accounts)
}

func TestEmployeePartialUpdate(t *testing.T) {
	svc := NewEmployeeService(setupTestDB(t), testHasher(), testOptions)
	ctx := context.Background()

	emp, err := svc.Create(ctx, employeeInput("cashier1"))
	require.NoError(t, err)

	first := "Johnny"
	position := "Supervisor"
	updated, err := svc.Update(ctx, emp.EmpID, EmployeeUpdate{
		User:     &AccountUpdate{FirstName: &first},
		Position: &position,
	})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Account.FirstName)
	assert.Equal(t, "Supervisor", updated.Position)

	stored, err := svc.FindByID(ctx, emp.EmpID)
	require.NoError(t, err)
	assert.Equal(t, "Johnny", stored.Account.FirstName)
	assert.Equal(t, "Smith", stored.Account.LastName)
	assert.Equal(t, "cashier1", stored.Account.Username)
	assert.Equal(t, "Supervisor", stored.Position)
	assert.Equal(t, "Sales", stored.Department)
	assert.Equal(t, emp.Account.Password, stored.Account.Password)
}

func TestEmployeeUpdateRejectsTakenUsername(t *testing.T) {
	svc := NewEmployeeService(setupTestDB(t), testHasher(), testOptions)
	ctx := context.Background()

	_, err := svc.Create(ctx, employeeInput("cashier1"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, employeeInput("cashier2"))
	require.NoError(t, err)

	taken := "cashier1"
	_, err = svc.Update(ctx, second.EmpID, EmployeeUpdate{User: &AccountUpdate{Username: &taken}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "username", verr.Field)
}

func TestEmployeeUpdateValidatesMergedFields(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEmployeeService(db, testHasher(), testOptions)
	ctx := context.Background()

	emp, err := svc.Create(ctx, employeeInput("cashier1"))
	require.NoError(t, err)

	blank := ""
	long := strings.Repeat("p", 101)
	tests := []struct {
		name  string
		up    EmployeeUpdate
		field string
	}{
		{"blank address", EmployeeUpdate{Address: &blank}, "address"},
		{"blank department", EmployeeUpdate{Department: &blank}, "department"},
		{"position too long", EmployeeUpdate{Position: &long}, "position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, emp.EmpID, tt.up)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	stored, err := svc.FindByID(ctx, emp.EmpID)
	require.NoError(t, err)
	assert.Equal(t, emp.Address, stored.Address)
	assert.Equal(t, emp.Department, stored.Department)
	assert.Equal(t, emp.Position, stored.Position)
}

func TestEmployeeDeleteRemovesAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEmployeeService(db, testHasher(), testOptions)
	auth := NewAuthService(db, testHasher(), nil)
	ctx := context.Background()

	emp, err := svc.Create(ctx, employeeInput("cashier1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, emp.EmpID))

	var accounts, employees int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Employee{}).Count(&employees).Error)
	assert.Zero(t, accounts)
	assert.Zero(t, employees)

	_, err = auth.Authenticate(ctx, "cashier1", "s3cret-pass")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmployeeDeleteMissingLeavesStoreUnchanged(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEmployeeService(db, testHasher(), testOptions)
	ctx := context.Background()

	_, err := svc.Create(ctx, employeeInput("cashier1"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "EMP0099"), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "EMP0099"), ErrNotFound)

	var accounts, employees int64
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	require.NoError(t, db.Model(&models.Employee{}).Count(&employees).Error)
	assert.EqualValues(t, 1, accounts)
	assert.EqualValues(t, 1, employees)
}

func TestEmployeeCreateUsesHasher(t *testing.T) {
	hasher := new(mockHasher)
	hasher.On("Hash", "s3cret-pass").Return("hashed-value", nil)
	svc := NewEmployeeService(setupTestDB(t), hasher, testOptions)

	emp, err := svc.Create(context.Background(), employeeInput("cashier1"))
	require.NoError(t, err)
	assert.Equal(t, "hashed-value", emp.Account.Password)
	hasher.AssertCalled(t, "Hash", mock.AnythingOfType("string"))
}
