package models

import (
	"time"
)

type Customer struct {
	CustID      string    `gorm:"primaryKey;type:varchar(10)" json:"cust_id"`
	Username    string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	FirstName   string    `gorm:"type:varchar(30);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(30);not null" json:"last_name"`
	PhoneNumber string    `gorm:"type:varchar(20);not null" json:"phone_number"`
	Address     string    `gorm:"type:varchar(255);not null" json:"address"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
