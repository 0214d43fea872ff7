package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coupon-api/internal/service"
)

// AdminHandler expone el CRUD de companias y clientes para el rol admin.
type AdminHandler struct {
	logger   *zap.Logger
	adminSvc *service.AdminService
}

func NewAdminHandler(logger *zap.Logger, adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		adminSvc: adminSvc,
	}
}

type companyRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

type customerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password"`
}

// AddCompany maneja POST /admin/companies.
func (h *AdminHandler) AddCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	company, err := h.adminSvc.AddCompany(c.Request.Context(), service.CompanyInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// UpdateCompany maneja PUT /admin/companies/:id.
func (h *AdminHandler) UpdateCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	company, err := h.adminSvc.UpdateCompany(c.Request.Context(), c.Param("id"), service.CompanyInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// DeleteCompany maneja DELETE /admin/companies/:id.
func (h *AdminHandler) DeleteCompany(c *gin.Context) {
	if err := h.adminSvc.DeleteCompany(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// AddCustomer maneja POST /admin/customers.
func (h *AdminHandler) AddCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	customer, err := h.adminSvc.AddCustomer(c.Request.Context(), service.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// UpdateCustomer maneja PUT /admin/customers/:id.
func (h *AdminHandler) UpdateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	customer, err := h.adminSvc.UpdateCustomer(c.Request.Context(), c.Param("id"), service.CustomerInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// DeleteCustomer maneja DELETE /admin/customers/:id.
func (h *AdminHandler) DeleteCustomer(c *gin.Context) {
	if err := h.adminSvc.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetAllCompanies maneja GET /admin/companies.
func (h *AdminHandler) GetAllCompanies(c *gin.Context) {
	companies, err := h.adminSvc.GetAllCompanies(c.Request.Context())
	if err != nil {
		h.logger.Error("list companies failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"companies": companies})
}

// GetAllCustomers maneja GET /admin/customers.
func (h *AdminHandler) GetAllCustomers(c *gin.Context) {
	customers, err := h.adminSvc.GetAllCustomers(c.Request.Context())
	if err != nil {
		h.logger.Error("list customers failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// GetAllCoupons maneja GET /admin/coupons.
func (h *AdminHandler) GetAllCoupons(c *gin.Context) {
	coupons, err := h.adminSvc.GetAllCoupons(c.Request.Context())
	if err != nil {
		h.logger.Error("list coupons failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// GetOneCompany maneja GET /admin/companies/:id.
func (h *AdminHandler) GetOneCompany(c *gin.Context) {
	company, err := h.adminSvc.GetOneCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}

// GetOneCustomer maneja GET /admin/customers/:id.
func (h *AdminHandler) GetOneCustomer(c *gin.Context) {
	customer, err := h.adminSvc.GetOneCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// GetCompanyCoupons maneja GET /admin/companies/:id/coupons.
func (h *AdminHandler) GetCompanyCoupons(c *gin.Context) {
	coupons, err := h.adminSvc.GetCompanyCoupons(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// GetCustomerCoupons maneja GET /admin/customers/:id/coupons.
func (h *AdminHandler) GetCustomerCoupons(c *gin.Context) {
	coupons, err := h.adminSvc.GetCustomerCoupons(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}
