package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee owns exactly one Account. Deleting the employee removes the account
// in the same transaction (see services.EmployeeService.Delete); the foreign key
// cascade covers direct SQL deletes of the account.
type Employee struct {
	EmpID      string          `gorm:"primaryKey;type:varchar(10)" json:"emp_id"`
	AccountID  uint            `gorm:"uniqueIndex;not null" json:"-"`
	Account    Account         `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
	Address    string          `gorm:"type:varchar(255);not null" json:"address"`
	Department string          `gorm:"type:varchar(100);not null" json:"department"`
	Position   string          `gorm:"type:varchar(100);not null" json:"position"`
	Salary     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"salary"`
	HireDate   time.Time       `gorm:"type:date;not null" json:"hire_date"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null" json:"updated_at"`
}
