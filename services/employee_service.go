package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/oncounter-billing/models"
	"github.com/yeremiapane/oncounter-billing/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PasswordHasher is the one-way hashing capability staff passwords rely on.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

type AccountInput struct {
	Username    string `json:"username" validate:"required,max=30"`
	Email       string `json:"email" validate:"required,email,max=254"`
	FirstName   string `json:"first_name" validate:"required,max=30"`
	LastName    string `json:"last_name" validate:"required,max=30"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
}

type EmployeeInput struct {
	User            AccountInput    `json:"user"`
	Password        string          `json:"password" validate:"required"`
	ConfirmPassword string          `json:"confirm_password" validate:"required"`
	Address         string          `json:"address" validate:"required,max=255"`
	Department      string          `json:"department" validate:"required,max=100"`
	Position        string          `json:"position" validate:"required,max=100"`
	Salary          decimal.Decimal `json:"salary"`
	HireDate        time.Time       `json:"hire_date" validate:"required"`
	IsActive        *bool           `json:"is_active"`
}

// employeeFields is the employee-only view of a merged record, checked with
// the same rules as EmployeeInput.
type employeeFields struct {
	Address    string    `json:"address" validate:"required,max=255"`
	Department string    `json:"department" validate:"required,max=100"`
	Position   string    `json:"position" validate:"required,max=100"`
	HireDate   time.Time `json:"hire_date" validate:"required"`
}

type AccountUpdate struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

// EmployeeUpdate carries a partial update, including the nested account
// fields; nil fields keep their value.
type EmployeeUpdate struct {
	User       *AccountUpdate   `json:"user"`
	Address    *string          `json:"address"`
	Department *string          `json:"department"`
	Position   *string          `json:"position"`
	Salary     *decimal.Decimal `json:"salary"`
	HireDate   *time.Time       `json:"hire_date"`
	IsActive   *bool            `json:"is_active"`
}

func (u AccountUpdate) apply(a *models.Account) {
	if u.Username != nil {
		a.Username = *u.Username
	}
	if u.Email != nil {
		a.Email = *u.Email
	}
	if u.FirstName != nil {
		a.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		a.LastName = *u.LastName
	}
	if u.PhoneNumber != nil {
		a.PhoneNumber = *u.PhoneNumber
	}
}

func (u EmployeeUpdate) apply(e *models.Employee) {
	if u.User != nil {
		u.User.apply(&e.Account)
	}
	if u.Address != nil {
		e.Address = *u.Address
	}
	if u.Department != nil {
		e.Department = *u.Department
	}
	if u.Position != nil {
		e.Position = *u.Position
	}
	if u.Salary != nil {
		e.Salary = *u.Salary
	}
	if u.HireDate != nil {
		e.HireDate = *u.HireDate
	}
	if u.IsActive != nil {
		e.IsActive = *u.IsActive
	}
}

func accountInputOf(a models.Account) AccountInput {
	return AccountInput{
		Username:    a.Username,
		Email:       a.Email,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		PhoneNumber: a.PhoneNumber,
	}
}

func employeeFieldsOf(e models.Employee) employeeFields {
	return employeeFields{
		Address:    e.Address,
		Department: e.Department,
		Position:   e.Position,
		HireDate:   e.HireDate,
	}
}

type EmployeeService struct {
	db     *gorm.DB
	tx     txRunner
	seq    Sequencer
	hasher PasswordHasher
}

func NewEmployeeService(db *gorm.DB, hasher PasswordHasher, opts Options) *EmployeeService {
	return &EmployeeService{
		db:     db,
		tx:     txRunner{db: db, timeout: opts.TxTimeout},
		hasher: hasher,
	}
}

// Create writes the Account and the Employee referencing it as one unit.
func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (*models.Employee, error) {
	ctx, span := tracer.Start(ctx, "employee.Create",
		trace.WithAttributes(attribute.String("username", in.User.Username)))
	defer span.End()

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, invalid("password", "mismatch")
	}
	if err := validateMoney("salary", in.Salary); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	var employee models.Employee
	err = s.tx.run(ctx, func(tx *gorm.DB) error {
		account := models.Account{
			Username:    in.User.Username,
			Email:       in.User.Email,
			FirstName:   in.User.FirstName,
			LastName:    in.User.LastName,
			PhoneNumber: in.User.PhoneNumber,
			Password:    hashed,
			IsActive:    true,
			IsStaff:     true,
			IsSuperuser: false,
		}
		if err := checkAccountUnique(tx, account, nil); err != nil {
			return err
		}
		if err := tx.Create(&account).Error; err != nil {
			return uniqueWriteErr(err, func() error { return checkAccountUnique(tx, account, nil) })
		}

		empID, err := s.seq.Next(tx, KindEmployee)
		if err != nil {
			return err
		}
		employee = models.Employee{
			EmpID:      empID,
			AccountID:  account.ID,
			Address:    in.Address,
			Department: in.Department,
			Position:   in.Position,
			Salary:     in.Salary,
			HireDate:   in.HireDate,
			IsActive:   boolOr(in.IsActive, true),
		}
		if err := tx.Omit(clause.Associations).Create(&employee).Error; err != nil {
			return writeErr(err)
		}
		employee.Account = account
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"emp_id":   employee.EmpID,
		"username": employee.Account.Username,
	}).Info("employee created")
	return &employee, nil
}

func (s *EmployeeService) FindByID(ctx context.Context, empID string) (*models.Employee, error) {
	var employee models.Employee
	if err := s.db.WithContext(ctx).Preload("Account").First(&employee, "emp_id = ?", empID).Error; err != nil {
		return nil, lookupErr(err, "employee", empID)
	}
	return &employee, nil
}

func (s *EmployeeService) List(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.WithContext(ctx).Preload("Account").Order("emp_id").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

// Update merges the non-nil fields of up into the employee and its account.
func (s *EmployeeService) Update(ctx context.Context, empID string, up EmployeeUpdate) (*models.Employee, error) {
	var employee models.Employee
	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		if err := tx.Preload("Account").First(&employee, "emp_id = ?", empID).Error; err != nil {
			return lookupErr(err, "employee", empID)
		}
		up.apply(&employee)

		if err := validateStruct(accountInputOf(employee.Account)); err != nil {
			return err
		}
		if err := validateStruct(employeeFieldsOf(employee)); err != nil {
			return err
		}
		if err := validateMoney("salary", employee.Salary); err != nil {
			return err
		}

		if up.User != nil {
			if err := checkAccountUnique(tx, employee.Account, employee.Account.ID); err != nil {
				return err
			}
			if err := tx.Save(&employee.Account).Error; err != nil {
				return uniqueWriteErr(err, func() error {
					return checkAccountUnique(tx, employee.Account, employee.Account.ID)
				})
			}
		}
		return writeErr(tx.Omit(clause.Associations).Save(&employee).Error)
	})
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

// Delete removes the employee together with its account. Either both rows go
// or neither does.
func (s *EmployeeService) Delete(ctx context.Context, empID string) error {
	ctx, span := tracer.Start(ctx, "employee.Delete",
		trace.WithAttributes(attribute.String("emp_id", empID)))
	defer span.End()

	err := s.tx.run(ctx, func(tx *gorm.DB) error {
		var employee models.Employee
		if err := tx.First(&employee, "emp_id = ?", empID).Error; err != nil {
			return lookupErr(err, "employee", empID)
		}

		res := tx.Delete(&models.Employee{}, "emp_id = ?", empID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("employee", empID)
		}

		res = tx.Delete(&models.Account{}, employee.AccountID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("employee", empID)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	utils.InfoLogger.WithField("emp_id", empID).Info("employee deleted")
	return nil
}

func checkAccountUnique(tx *gorm.DB, a models.Account, except interface{}) error {
	if err := ensureUnique(tx, &models.Account{}, "username", a.Username, "id", except); err != nil {
		return err
	}
	return ensureUnique(tx, &models.Account{}, "email", a.Email, "id", except)
}
