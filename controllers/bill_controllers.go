package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
)

type BillController struct {
	Billing *services.BillingService
}

func NewBillController(billing *services.BillingService) *BillController {
	return &BillController{Billing: billing}
}

// GetAllBills supports ?emp_id= and ?cust_id= filters.
func (bc *BillController) GetAllBills(c *gin.Context) {
	bills, err := bc.Billing.ListBills(c.Request.Context(), services.BillFilter{
		EmpID:  c.Query("emp_id"),
		CustID: c.Query("cust_id"),
	})
	if err != nil {
		respondServiceError(c, "controllers.bill", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of bills", bills)
}

func (bc *BillController) CreateBill(c *gin.Context) {
	var req services.BillInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	bill, err := bc.Billing.CreateBill(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "controllers.bill", err)
		return
	}
	c.Set("bill_id", bill.BillID)
	utils.RespondJSON(c, http.StatusCreated, "Bill created", bill)
}

// GetSalesReport summarises bills; ?from= and ?to= take YYYY-MM-DD, to being
// exclusive.
func (bc *BillController) GetSalesReport(c *gin.Context) {
	f := services.BillFilter{EmpID: c.Query("emp_id"), CustID: c.Query("cust_id")}
	for param, dst := range map[string]*time.Time{"from": &f.From, "to": &f.To} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			respondServiceError(c, "controllers.bill", &services.ValidationError{Field: param, Reason: "format"})
			return
		}
		*dst = t
	}

	report, err := bc.Billing.SalesReport(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, "controllers.bill", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sales report", report)
}

func (bc *BillController) GetBillByID(c *gin.Context) {
	bill, err := bc.Billing.FindBill(c.Request.Context(), c.Param("bill_id"))
	if err != nil {
		respondServiceError(c, "controllers.bill", err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Bill detail", bill)
}
