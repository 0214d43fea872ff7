package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/service"
)

// CompanyHandler expone las operaciones del rol compania. El id de la
// compania autenticada sale siempre de la sesion del contexto.
type CompanyHandler struct {
	logger     *zap.Logger
	companySvc *service.CompanyService
}

func NewCompanyHandler(logger *zap.Logger, companySvc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		logger:     logger,
		companySvc: companySvc,
	}
}

type couponRequest struct {
	Category    domain.Category `json:"category" binding:"required"`
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"start_date" binding:"required"`
	EndDate     time.Time       `json:"end_date" binding:"required"`
	Amount      int             `json:"amount" binding:"min=0"`
	Price       float64         `json:"price" binding:"min=0"`
	Image       string          `json:"image"`
}

func (r couponRequest) toCoupon() domain.Coupon {
	return domain.Coupon{
		Category:    r.Category,
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Amount:      r.Amount,
		Price:       r.Price,
		Image:       r.Image,
	}
}

// AddCoupon maneja POST /company/coupons.
func (h *CompanyHandler) AddCoupon(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	coupon, err := h.companySvc.AddCoupon(c.Request.Context(), sess.PrincipalID, req.toCoupon())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

// UpdateCoupon maneja PUT /company/coupons/:id.
func (h *CompanyHandler) UpdateCoupon(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	coupon := req.toCoupon()
	coupon.ID = c.Param("id")
	updated, err := h.companySvc.UpdateCoupon(c.Request.Context(), sess.PrincipalID, coupon)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": updated})
}

// DeleteCoupon maneja DELETE /company/coupons/:id.
func (h *CompanyHandler) DeleteCoupon(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	if err := h.companySvc.DeleteCoupon(c.Request.Context(), sess.PrincipalID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetCoupons maneja GET /company/coupons con filtros opcionales
// category y max_price.
func (h *CompanyHandler) GetCoupons(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	if category := c.Query("category"); category != "" {
		coupons, err := h.companySvc.GetCouponsByCategory(c.Request.Context(), sess.PrincipalID, domain.Category(category))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": coupons})
		return
	}
	if rawPrice := c.Query("max_price"); rawPrice != "" {
		maxPrice, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid max_price"})
			return
		}
		coupons, err := h.companySvc.GetCouponsByMaxPrice(c.Request.Context(), sess.PrincipalID, maxPrice)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": coupons})
		return
	}

	coupons, err := h.companySvc.GetAllCoupons(c.Request.Context(), sess.PrincipalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// GetOneCoupon maneja GET /company/coupons/:id.
func (h *CompanyHandler) GetOneCoupon(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	coupon, err := h.companySvc.GetOneCoupon(c.Request.Context(), sess.PrincipalID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

// GetLoggedInCompany maneja GET /company/me.
func (h *CompanyHandler) GetLoggedInCompany(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	company, err := h.companySvc.GetLoggedInCompany(c.Request.Context(), sess.PrincipalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}
