package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/yeremiapane/oncounter-billing/models"
)

const topItemsLimit = 5

type ItemSales struct {
	ItemID   string          `json:"item_id"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalBills  int64           `json:"total_bills"`
	AverageBill decimal.Decimal `json:"average_bill"`
	TopItems    []ItemSales     `json:"top_items"`
}

// SalesReport sums the bills matching f and ranks items by quantity sold.
func (s *BillingService) SalesReport(ctx context.Context, f BillFilter) (*SalesReport, error) {
	db := s.db.WithContext(ctx)

	var totals struct {
		Bills int64
		Total decimal.Decimal
	}
	err := f.apply(db.Model(&models.Bill{}), "bills").
		Select("COUNT(*) AS bills, COALESCE(SUM(bills.total_price), 0) AS total").
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var items []ItemSales
	err = f.apply(db.Model(&models.Order{}), "bills").
		Joins("JOIN bills ON bills.bill_id = orders.bill_id").
		Select("orders.item_id AS item_id, SUM(orders.quantity) AS quantity, SUM(orders.total_price) AS revenue").
		Group("orders.item_id").
		Order("quantity DESC, item_id").
		Limit(topItemsLimit).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}

	// float aggregates on some drivers; money is always two places
	for i := range items {
		items[i].Revenue = items[i].Revenue.Round(2)
	}
	report := &SalesReport{
		TotalSales:  totals.Total.Round(2),
		TotalBills:  totals.Bills,
		AverageBill: decimal.Zero,
		TopItems:    items,
	}
	if totals.Bills > 0 {
		report.AverageBill = report.TotalSales.Div(decimal.NewFromInt(totals.Bills)).Round(2)
	}
	if report.TopItems == nil {
		report.TopItems = []ItemSales{}
	}
	return report, nil
}
