package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/service"
)

// CustomerHandler expone las operaciones del rol cliente.
type CustomerHandler struct {
	logger      *zap.Logger
	customerSvc *service.CustomerService
}

func NewCustomerHandler(logger *zap.Logger, customerSvc *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		logger:      logger,
		customerSvc: customerSvc,
	}
}

// PurchaseCoupon maneja POST /customer/coupons/:id/purchase.
func (h *CustomerHandler) PurchaseCoupon(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	if err := h.customerSvc.PurchaseCoupon(c.Request.Context(), sess.PrincipalID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "purchased"})
}

// GetCoupons maneja GET /customer/coupons con filtros opcionales
// category y max_price.
func (h *CustomerHandler) GetCoupons(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	if category := c.Query("category"); category != "" {
		coupons, err := h.customerSvc.GetCouponsByCategory(c.Request.Context(), sess.PrincipalID, domain.Category(category))
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
		coupons, err := h.customerSvc.GetCouponsByMaxPrice(c.Request.Context(), sess.PrincipalID, maxPrice)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"coupons": coupons})
		return
	}

	coupons, err := h.customerSvc.GetAllCustomerCoupons(c.Request.Context(), sess.PrincipalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// GetOneCoupon maneja GET /customer/coupons/:id (del set de compras).
func (h *CustomerHandler) GetOneCoupon(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	coupon, err := h.customerSvc.GetOneCustomerCoupon(c.Request.Context(), sess.PrincipalID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

// GetCatalog maneja GET /customer/catalog: todos los cupones publicados.
func (h *CustomerHandler) GetCatalog(c *gin.Context) {
	coupons, err := h.customerSvc.GetAllCoupons(c.Request.Context())
	if err != nil {
		h.logger.Error("list catalog failed", zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// GetCatalogCoupon maneja GET /customer/catalog/:id.
func (h *CustomerHandler) GetCatalogCoupon(c *gin.Context) {
	coupon, err := h.customerSvc.GetCoupon(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

// GetLoggedInCustomer maneja GET /customer/me.
func (h *CustomerHandler) GetLoggedInCustomer(c *gin.Context) {
	sess, ok := GetAuthSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	customer, err := h.customerSvc.GetLoggedInCustomer(c.Request.Context(), sess.PrincipalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}
