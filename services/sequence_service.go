package services

import (
	"fmt"

	"github.com/yeremiapane/oncounter-billing/models"
	"github.com/yeremiapane/oncounter-billing/utils"
	"gorm.io/gorm"
)

// IDKind describes one identifier family and the table it keys.
type IDKind struct {
	Name   string
	Prefix string
	table  string
	column string
}

var (
	KindCustomer = IDKind{Name: "customer", Prefix: "CUST", table: "customers", column: "cust_id"}
	KindEmployee = IDKind{Name: "employee", Prefix: "EMP", table: "employees", column: "emp_id"}
	KindOrder    = IDKind{Name: "order", Prefix: "ORD", table: "orders", column: "order_id"}
	KindBill     = IDKind{Name: "bill", Prefix: "BILL", table: "bills", column: "bill_id"}

	AllKinds = []IDKind{KindCustomer, KindEmployee, KindOrder, KindBill}
)

// Sequencer hands out identifiers from the sequences table. It must be called
// with the transaction that inserts the new rows: the counter update holds the
// row lock until that transaction ends, so concurrent creates queue up behind
// it instead of reading the same value.
type Sequencer struct{}

func (s Sequencer) Next(tx *gorm.DB, kind IDKind) (string, error) {
	ids, err := s.NextN(tx, kind, 1)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// NextN reserves n consecutive identifiers.
func (s Sequencer) NextN(tx *gorm.DB, kind IDKind, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	res := tx.Model(&models.Sequence{}).
		Where("name = ?", kind.Name).
		UpdateColumn("value", gorm.Expr("value + ?", n))
	if res.Error != nil {
		return nil, fmt.Errorf("advance %s sequence: %w", kind.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		last, err := lastIssued(tx, kind)
		if err != nil {
			return nil, err
		}
		if err := tx.Create(&models.Sequence{Name: kind.Name, Value: last + int64(n)}).Error; err != nil {
			return nil, fmt.Errorf("create %s sequence: %w", kind.Name, err)
		}
	}

	var seq models.Sequence
	if err := tx.Where("name = ?", kind.Name).First(&seq).Error; err != nil {
		return nil, fmt.Errorf("read %s sequence: %w", kind.Name, err)
	}

	first := seq.Value - int64(n) + 1
	ids := make([]string, n)
	for i := range ids {
		ids[i] = utils.FormatID(kind.Prefix, utils.IDWidth, first+int64(i))
	}
	return ids, nil
}

// Seed creates the counter rows that are missing, starting each one after the
// highest identifier already stored in its table.
func (s Sequencer) Seed(db *gorm.DB) error {
	for _, kind := range AllKinds {
		var count int64
		if err := db.Model(&models.Sequence{}).Where("name = ?", kind.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		last, err := lastIssued(db, kind)
		if err != nil {
			utils.LogError("services", "Sequencer.Seed", kind.Name, err)
			return err
		}
		if err := db.Create(&models.Sequence{Name: kind.Name, Value: last}).Error; err != nil {
			return err
		}
		utils.InfoLogger.WithField("sequence", kind.Name).Infof("sequence seeded at %d", last)
	}
	return nil
}

// lastIssued finds the highest identifier stored for kind (0 when the table is
// empty). Longer ids sort first so CUST10000 beats CUST9999.
func lastIssued(db *gorm.DB, kind IDKind) (int64, error) {
	var ids []string
	err := db.Table(kind.table).
		Order(fmt.Sprintf("LENGTH(%s) DESC, %s DESC", kind.column, kind.column)).
		Limit(1).
		Pluck(kind.column, &ids).Error
	if err != nil {
		return 0, err
	}

	next, err := utils.NextID(kind.Prefix, utils.IDWidth, ids)
	if err != nil {
		return 0, err
	}
	n, err := utils.ParseID(kind.Prefix, next)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}
