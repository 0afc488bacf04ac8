package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/oncounter-billing/models"
	"github.com/yeremiapane/oncounter-billing/utils"
	"gorm.io/gorm"
)

type CustomerInput struct {
	Username    string `json:"username" validate:"required,max=150"`
	Email       string `json:"email" validate:"required,email,max=254"`
	FirstName   string `json:"first_name" validate:"required,max=30"`
	LastName    string `json:"last_name" validate:"required,max=30"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Address     string `json:"address" validate:"required,max=255"`
	IsActive    *bool  `json:"is_active"`
}

// CustomerUpdate carries a partial update; nil fields keep their value.
type CustomerUpdate struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
	IsActive    *bool   `json:"is_active"`
}

func (u CustomerUpdate) apply(c *models.Customer) {
	if u.Username != nil {
		c.Username = *u.Username
	}
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.FirstName != nil {
		c.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		c.LastName = *u.LastName
	}
	if u.PhoneNumber != nil {
		c.PhoneNumber = *u.PhoneNumber
	}
	if u.Address != nil {
		c.Address = *u.Address
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
}

func customerInputOf(c models.Customer) CustomerInput {
	return CustomerInput{
		Username:    c.Username,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
		IsActive:    &c.IsActive,
	}
}

type CustomerService struct {
	db  *gorm.DB
	tx  txRunner
	seq Sequencer
}

func NewCustomerService(db *gorm.DB, opts Options) *CustomerService {
	return &CustomerService{
		db: db,
		tx: txRunner{db: db, timeout: opts.TxTimeout},
	}
}

func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	customer := models.Customer{
		Username:    in.Username,
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		IsActive:    boolOr(in.IsActive, true),
	}

	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		if err := checkCustomerUnique(tx, customer, nil); err != nil {
			return err
		}
		id, err := s.seq.Next(tx, KindCustomer)
		if err != nil {
			return err
		}
		customer.CustID = id
		return uniqueWriteErr(tx.Create(&customer).Error, func() error {
			return checkCustomerUnique(tx, customer, customer.CustID)
		})
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"cust_id":  customer.CustID,
		"username": customer.Username,
	}).Info("customer created")
	return &customer, nil
}

func (s *CustomerService) FindByID(ctx context.Context, custID string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, "cust_id = ?", custID).Error; err != nil {
		return nil, lookupErr(err, "customer", custID)
	}
	return &customer, nil
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("cust_id").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// Update merges the non-nil fields of up into the stored customer.
func (s *CustomerService) Update(ctx context.Context, custID string, up CustomerUpdate) (*models.Customer, error) {
	var customer models.Customer
	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&customer, "cust_id = ?", custID).Error; err != nil {
			return lookupErr(err, "customer", custID)
		}
		up.apply(&customer)
		if err := validateStruct(customerInputOf(customer)); err != nil {
			return err
		}
		if err := checkCustomerUnique(tx, customer, customer.CustID); err != nil {
			return err
		}
		return uniqueWriteErr(tx.Save(&customer).Error, func() error {
			return checkCustomerUnique(tx, customer, customer.CustID)
		})
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Delete leaves bills that reference the customer untouched.
func (s *CustomerService) Delete(ctx context.Context, custID string) error {
	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&models.Customer{}, "cust_id = ?", custID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("customer", custID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.InfoLogger.WithField("cust_id", custID).Info("customer deleted")
	return nil
}

func checkCustomerUnique(tx *gorm.DB, c models.Customer, except interface{}) error {
	if err := ensureUnique(tx, &models.Customer{}, "username", c.Username, "cust_id", except); err != nil {
		return err
	}
	return ensureUnique(tx, &models.Customer{}, "email", c.Email, "cust_id", except)
}
