package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a single priced line of a bill.
type Order struct {
	OrderID    string          `gorm:"primaryKey;type:varchar(10)" json:"order_id"`
	BillID     string          `gorm:"type:varchar(10);index;not null" json:"bill_id"`
	OrderDate  time.Time       `gorm:"<-:create;not null" json:"order_date"`
	ItemID     string          `gorm:"type:varchar(10);not null" json:"item_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

// LineTotal is quantity x unit price.
func (o Order) LineTotal() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// BeforeSave keeps TotalPrice derived; a caller-supplied value is overwritten.
func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.TotalPrice = o.LineTotal()
	return nil
}

// Bill aggregates the orders checked out by an employee for a customer.
// EmpID and CustID are plain references: bills outlive the records they point to.
type Bill struct {
	BillID     string          `gorm:"primaryKey;type:varchar(10)" json:"bill_id"`
	BillDate   time.Time       `gorm:"<-:create;not null" json:"bill_date"`
	EmpID      string          `gorm:"type:varchar(10);index;not null" json:"emp_id"`
	CustID     string          `gorm:"type:varchar(10);index;not null" json:"cust_id"`
	Orders     []Order         `gorm:"foreignKey:BillID;references:BillID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"orders"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
}

// BeforeSave recomputes the bill total from its orders. Orders must be loaded.
func (b *Bill) BeforeSave(tx *gorm.DB) error {
	b.TotalPrice = SumOrderTotals(b.Orders)
	return nil
}

func SumOrderTotals(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.LineTotal())
	}
	return total
}
