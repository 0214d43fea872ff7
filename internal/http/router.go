package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/service"
)

// NewRouter configura el router de Gin. Cada grupo de rol queda envuelto
// por el gate de autorizacion de manera uniforme: ningun handler del
// grupo corre sin token validado.
func NewRouter(
	logger *zap.Logger,
	registry service.SessionRegistry,
	loginH *LoginHandler,
	adminH *AdminHandler,
	companyH *CompanyHandler,
	customerH *CustomerHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.POST("/login", loginH.Login)
	r.POST("/logout", loginH.Logout)

	admin := r.Group("/admin", AuthMiddleware(registry, domain.RoleAdmin))
	admin.POST("/companies", adminH.AddCompany)
	admin.PUT("/companies/:id", adminH.UpdateCompany)
	admin.DELETE("/companies/:id", adminH.DeleteCompany)
	admin.GET("/companies", adminH.GetAllCompanies)
	admin.GET("/companies/:id", adminH.GetOneCompany)
	admin.GET("/companies/:id/coupons", adminH.GetCompanyCoupons)
	admin.POST("/customers", adminH.AddCustomer)
	admin.PUT("/customers/:id", adminH.UpdateCustomer)
	admin.DELETE("/customers/:id", adminH.DeleteCustomer)
	admin.GET("/customers", adminH.GetAllCustomers)
	admin.GET("/customers/:id", adminH.GetOneCustomer)
	admin.GET("/customers/:id/coupons", adminH.GetCustomerCoupons)
	admin.GET("/coupons", adminH.GetAllCoupons)

	company := r.Group("/company", AuthMiddleware(registry, domain.RoleCompany))
	company.POST("/coupons", companyH.AddCoupon)
	company.PUT("/coupons/:id", companyH.UpdateCoupon)
	company.DELETE("/coupons/:id", companyH.DeleteCoupon)
	company.GET("/coupons", companyH.GetCoupons)
	company.GET("/coupons/:id", companyH.GetOneCoupon)
	company.GET("/me", companyH.GetLoggedInCompany)

	customer := r.Group("/customer", AuthMiddleware(registry, domain.RoleCustomer))
	customer.POST("/coupons/:id/purchase", customerH.PurchaseCoupon)
	customer.GET("/coupons", customerH.GetCoupons)
	customer.GET("/coupons/:id", customerH.GetOneCoupon)
	customer.GET("/catalog", customerH.GetCatalog)
	customer.GET("/catalog/:id", customerH.GetCatalogCoupon)
	customer.GET("/me", customerH.GetLoggedInCustomer)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
