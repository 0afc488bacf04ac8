package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
)

const dateLayout = "2006-01-02"

type EmployeeController struct {
	Employees *services.EmployeeService
	Auth      *services.AuthService
}

func NewEmployeeController(employees *services.EmployeeService, auth *services.AuthService) *EmployeeController {
	return &EmployeeController{Employees: employees, Auth: auth}
}

// employeeRequest is EmployeeInput with hire_date as a calendar date.
type employeeRequest struct {
	User            services.AccountInput `json:"user"`
	Password        string                `json:"password"`
	ConfirmPassword string                `json:"confirm_password"`
	Address         string                `json:"address"`
	Department      string                `json:"department"`
	Position        string                `json:"position"`
	Salary          decimal.Decimal       `json:"salary"`
	HireDate        string                `json:"hire_date"`
	IsActive        *bool                 `json:"is_active"`
}

type employeeUpdateRequest struct {
	User       *services.AccountUpdate `json:"user"`
	Address    *string                 `json:"address"`
	Department *string                 `json:"department"`
	Position   *string                 `json:"position"`
	Salary     *decimal.Decimal        `json:"salary"`
	HireDate   *string                 `json:"hire_date"`
	IsActive   *bool                   `json:"is_active"`
}

// parseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: "hire_date", Reason: "format"}
	}
	return t, nil
}

func (ec *EmployeeController) GetAllEmployees(c *gin.Context) {
	employees, err := ec.Employees.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, "controllers.employee", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of employees", employees)
}

func (ec *EmployeeController) CreateEmployee(c *gin.Context) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	in := services.EmployeeInput{
		User:            req.User,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Address:         req.Address,
		Department:      req.Department,
		Position:        req.Position,
		Salary:          req.Salary,
		IsActive:        req.IsActive,
	}
	if req.HireDate != "" {
		hireDate, err := parseDate(req.HireDate)
		if err != nil {
			respondServiceError(c, "controllers.employee", err)
			return
		}
		in.HireDate = hireDate
	}

	employee, err := ec.Employees.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, "controllers.employee", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Employee created", employee)
}

func (ec *EmployeeController) GetEmployeeByID(c *gin.Context) {
	employee, err := ec.Employees.FindByID(c.Request.Context(), c.Param("emp_id"))
	if err != nil {
		respondServiceError(c, "controllers.employee", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Employee detail", employee)
}

func (ec *EmployeeController) UpdateEmployee(c *gin.Context) {
	var req employeeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	up := services.EmployeeUpdate{
		User:       req.User,
		Address:    req.Address,
		Department: req.Department,
		Position:   req.Position,
		Salary:     req.Salary,
		IsActive:   req.IsActive,
	}
	if req.HireDate != nil {
		hireDate, err := parseDate(*req.HireDate)
		if err != nil {
			respondServiceError(c, "controllers.employee", err)
			return
		}
		up.HireDate = &hireDate
	}

	employee, err := ec.Employees.Update(c.Request.Context(), c.Param("emp_id"), up)
	if err != nil {
		respondServiceError(c, "controllers.employee", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Employee updated", employee)
}

// DeleteEmployee removes the employee and its account together.
func (ec *EmployeeController) DeleteEmployee(c *gin.Context) {
	empID := c.Param("emp_id")
	if err := ec.Employees.Delete(c.Request.Context(), empID); err != nil {
		respondServiceError(c, "controllers.employee", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("Employee %s deleted", empID), nil)
}

func (ec *EmployeeController) Authenticate(c *gin.Context) {
	var req services.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	employee, err := ec.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(c, "controllers.employee", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Authenticated", employee)
}
