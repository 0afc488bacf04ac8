package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
)

type CustomerController struct {
	Customers *services.CustomerService
}

func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{Customers: customers}
}

func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	customers, err := cc.Customers.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, "controllers.customer", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}

func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var req services.CustomerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := cc.Customers.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "controllers.customer", err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	customer, err := cc.Customers.FindByID(c.Request.Context(), c.Param("cust_id"))
	if err != nil {
		respondServiceError(c, "controllers.customer", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer detail", customer)
}

// UpdateCustomer serves both PUT and PATCH; only the fields sent change.
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	var req services.CustomerUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	customer, err := cc.Customers.Update(c.Request.Context(), c.Param("cust_id"), req)
	if err != nil {
		respondServiceError(c, "controllers.customer", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	if err := cc.Customers.Delete(c.Request.Context(), c.Param("cust_id")); err != nil {
		respondServiceError(c, "controllers.customer", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Customer deleted", nil)
}
