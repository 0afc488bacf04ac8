package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/oncounter-billing/models"
	"github.com/yeremiapane/oncounter-billing/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type LineItem struct {
	ItemID    string          `json:"item_id" validate:"required,max=10"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type BillInput struct {
	EmpID  string     `json:"emp_id" validate:"required"`
	CustID string     `json:"cust_id" validate:"required"`
	Orders []LineItem `json:"orders" validate:"dive"`
}

// BillFilter narrows listings and reports. Zero fields do not filter; To is
// exclusive.
type BillFilter struct {
	EmpID  string
	CustID string
	From   time.Time
	To     time.Time
}

func (f BillFilter) apply(q *gorm.DB, table string) *gorm.DB {
	if f.EmpID != "" {
		q = q.Where(table+".emp_id = ?", f.EmpID)
	}
	if f.CustID != "" {
		q = q.Where(table+".cust_id = ?", f.CustID)
	}
	if !f.From.IsZero() {
		q = q.Where(table+".bill_date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where(table+".bill_date < ?", f.To)
	}
	return q
}

type BillingService struct {
	db  *gorm.DB
	tx  txRunner
	seq Sequencer
	now func() time.Time
}

func NewBillingService(db *gorm.DB, opts Options) *BillingService {
	return &BillingService{
		db:  db,
		tx:  txRunner{db: db, timeout: opts.TxTimeout},
		now: time.Now,
	}
}

// CreateBill checks out the line items into orders and a bill carrying their
// total. Orders and bill are written in one transaction.
func (s *BillingService) CreateBill(ctx context.Context, in BillInput) (*models.Bill, error) {
	ctx, span := tracer.Start(ctx, "billing.CreateBill", trace.WithAttributes(
		attribute.String("emp_id", in.EmpID),
		attribute.String("cust_id", in.CustID),
		attribute.Int("line_items", len(in.Orders)),
	))
	defer span.End()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	for i, item := range in.Orders {
		if err := validateMoney(fmt.Sprintf("orders[%d].unit_price", i), item.UnitPrice); err != nil {
			return nil, err
		}
	}

	var bill models.Bill
	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Employee{}, "emp_id", in.EmpID, "employee"); err != nil {
			return err
		}
		if err := exists(tx, &models.Customer{}, "cust_id", in.CustID, "customer"); err != nil {
			return err
		}

		orderIDs, err := s.seq.NextN(tx, KindOrder, len(in.Orders))
		if err != nil {
			return err
		}
		billID, err := s.seq.Next(tx, KindBill)
		if err != nil {
			return err
		}

		now := s.now()
		orders := make([]models.Order, len(in.Orders))
		for i, item := range in.Orders {
			orders[i] = models.Order{
				OrderID:   orderIDs[i],
				BillID:    billID,
				OrderDate: now,
				ItemID:    item.ItemID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			if orders[i].LineTotal().GreaterThanOrEqual(maxMoney) {
				return invalid(fmt.Sprintf("orders[%d].total_price", i), "range")
			}
		}

		bill = models.Bill{
			BillID:   billID,
			BillDate: now,
			EmpID:    in.EmpID,
			CustID:   in.CustID,
			Orders:   orders,
		}
		if models.SumOrderTotals(orders).GreaterThanOrEqual(maxMoney) {
			return invalid("total_price", "range")
		}

		if err := tx.Omit("Orders").Create(&bill).Error; err != nil {
			return writeErr(err)
		}
		if len(orders) > 0 {
			if err := tx.Create(&bill.Orders).Error; err != nil {
				return writeErr(err)
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("bill_id", bill.BillID))
	utils.InfoLogger.WithFields(logrus.Fields{
		"bill_id": bill.BillID,
		"emp_id":  bill.EmpID,
		"cust_id": bill.CustID,
		"orders":  len(bill.Orders),
		"total":   bill.TotalPrice.StringFixed(2),
	}).Info("bill created")
	return &bill, nil
}

func (s *BillingService) FindBill(ctx context.Context, billID string) (*models.Bill, error) {
	var bill models.Bill
	err := s.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("order_id") }).
		First(&bill, "bill_id = ?", billID).Error
	if err != nil {
		return nil, lookupErr(err, "bill", billID)
	}
	return &bill, nil
}

func (s *BillingService) ListBills(ctx context.Context, f BillFilter) ([]models.Bill, error) {
	q := f.apply(s.db.WithContext(ctx).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("order_id") }), "bills")

	var bills []models.Bill
	if err := q.Order("bill_id").Find(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func exists(tx *gorm.DB, model interface{}, column, id, kind string) error {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound(kind, id)
	}
	return nil
}
