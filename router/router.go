package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/oncounter-billing/config"
	"github.com/yeremiapane/oncounter-billing/controllers"
	"github.com/yeremiapane/oncounter-billing/middlewares"
	"github.com/yeremiapane/oncounter-billing/services"
	"github.com/yeremiapane/oncounter-billing/utils"
	"gorm.io/gorm"
)

// Routes that anyone may call, whatever the method.
var openRoutes = []string{
	"/",
	"/health",
	"/jwtauth/token",
	"/jwtauth/token/refresh",
	"/jwtauth/token/verify",
	"/employee/authenticate",
}

// SetupRouter wires services, middlewares and controllers. rdb may be nil, in
// which case rate limits are tracked in process.
func SetupRouter(db *gorm.DB, cfg *config.Config, rdb *redis.Client) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	tokens := utils.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	hasher := utils.BcryptHasher{}
	opts := services.Options{TxTimeout: cfg.Database.TxTimeout}

	authSvc := services.NewAuthService(db, hasher, tokens)
	customerSvc := services.NewCustomerService(db, opts)
	employeeSvc := services.NewEmployeeService(db, hasher, opts)
	billingSvc := services.NewBillingService(db, opts)

	var store middlewares.RateStore = middlewares.NewMemoryRateStore()
	if rdb != nil {
		store = middlewares.NewRedisRateStore(rdb)
	}
	rateLimiter := middlewares.NewRateLimiter(store,
		cfg.RateLimit.Anonymous, cfg.RateLimit.Authenticated, cfg.RateLimit.Window)
	strict := middlewares.NewStrictRateLimiter(cfg.RateLimit.LoginEvery, cfg.RateLimit.LoginBurst)

	policy := middlewares.NewAccessPolicy(middlewares.AccessReadOnly).
		Set(middlewares.AccessOpen, openRoutes...).
		Set(middlewares.AccessAuthenticated, "/bill/report")

	// order matters: the limiter and the policy both read the principal
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORS.AllowedOrigins))
	r.Use(middlewares.AuthMiddleware(authSvc))
	r.Use(rateLimiter.RateLimit())
	r.Use(policy.Enforce())

	homeCtrl := controllers.NewHomeController(db)
	tokenCtrl := controllers.NewTokenController(authSvc)
	customerCtrl := controllers.NewCustomerController(customerSvc)
	employeeCtrl := controllers.NewEmployeeController(employeeSvc, authSvc)
	billCtrl := controllers.NewBillController(billingSvc)

	// ----------------------------------------------------------------
	//                      OPEN ROUTES
	// ----------------------------------------------------------------
	r.GET("/", homeCtrl.Welcome)
	r.GET("/health", homeCtrl.Health)

	jwtauth := r.Group("/jwtauth")
	{
		jwtauth.POST("/token", strict.Limit(), tokenCtrl.Obtain)
		jwtauth.POST("/token/refresh", tokenCtrl.Refresh)
		jwtauth.POST("/token/verify", tokenCtrl.Verify)
	}

	// ----------------------------------------------------------------
	//            READ-ONLY UNLESS AUTHENTICATED
	// ----------------------------------------------------------------
	customer := r.Group("/customer")
	{
		customer.GET("/list", customerCtrl.GetAllCustomers)
		customer.GET("/search/:cust_id", customerCtrl.GetCustomerByID)
		customer.POST("/create", customerCtrl.CreateCustomer)
		customer.PUT("/update/:cust_id", customerCtrl.UpdateCustomer)
		customer.PATCH("/update/:cust_id", customerCtrl.UpdateCustomer)
		customer.DELETE("/delete/:cust_id", customerCtrl.DeleteCustomer)
	}

	employee := r.Group("/employee")
	{
		employee.GET("/list", employeeCtrl.GetAllEmployees)
		employee.GET("/search/:emp_id", employeeCtrl.GetEmployeeByID)
		employee.POST("/create", employeeCtrl.CreateEmployee)
		employee.PUT("/update/:emp_id", employeeCtrl.UpdateEmployee)
		employee.PATCH("/update/:emp_id", employeeCtrl.UpdateEmployee)
		employee.DELETE("/delete/:emp_id", employeeCtrl.DeleteEmployee)
		employee.POST("/authenticate", strict.Limit(), employeeCtrl.Authenticate)
	}

	bill := r.Group("/bill")
	{
		bill.GET("/list", billCtrl.GetAllBills)
		bill.GET("/search/:bill_id", billCtrl.GetBillByID)
		bill.GET("/report", billCtrl.GetSalesReport)
		bill.POST("/create", middlewares.BillAuditMiddleware(), billCtrl.CreateBill)
	}

	return r
}
