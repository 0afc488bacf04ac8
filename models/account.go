package models

import "time"

// Account is the login identity of a staff member. Profile fields live on the
// account itself; Employee links to it one-to-one.
type Account struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"username"`
	Email       string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	FirstName   string    `gorm:"type:varchar(30);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(30);not null" json:"last_name"`
	PhoneNumber string    `gorm:"type:varchar(20);not null" json:"phone_number"`
	Password    string    `gorm:"type:varchar(255);not null" json:"-"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	IsStaff     bool      `gorm:"not null" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null" json:"is_superuser"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (a Account) FullName() string {
	return a.FirstName + " " + a.LastName
}
