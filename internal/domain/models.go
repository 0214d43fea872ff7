package domain

import (
	"strings"
	"time"
)

// Role identifica el tipo de principal autenticado.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCompany  Role = "company"
	RoleCustomer Role = "customer"
)

// ParseRole normaliza un rol recibido por la API.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleCompany:
		return RoleCompany, true
	case RoleCustomer:
		return RoleCustomer, true
	}
	return "", false
}

// Category clasifica cupones.
type Category string

const (
	CategoryFood        Category = "food"
	CategoryElectricity Category = "electricity"
	CategoryRestaurant  Category = "restaurant"
	CategoryVacation    Category = "vacation"
)

type Company struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Customer lleva su set de compras en CouponIDs; el set se persiste
// junto con el cliente como una sola unidad logica.
type Customer struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CouponIDs    []string  `json:"coupon_ids"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasCoupon indica si el cliente ya compro el cupon dado.
func (c Customer) HasCoupon(couponID string) bool {
	for _, id := range c.CouponIDs {
		if id == couponID {
			return true
		}
	}
	return false
}

// RemoveCoupon quita el cupon del set de compras si esta presente.
func (c *Customer) RemoveCoupon(couponID string) {
	kept := c.CouponIDs[:0]
	for _, id := range c.CouponIDs {
		if id != couponID {
			kept = append(kept, id)
		}
	}
	c.CouponIDs = kept
}

type Coupon struct {
	ID          string    `json:"id"`
	CompanyID   string    `json:"company_id"`
	Category    Category  `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Amount      int       `json:"amount"`
	Price       float64   `json:"price"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired indica si el cupon vencio estrictamente antes del instante dado.
func (c Coupon) Expired(now time.Time) bool {
	return c.EndDate.Before(now)
}
