package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"coupon-api/internal/domain"
)

// Implementaciones en memoria del Store, usadas en tests y cuando no hay
// DATABASE_URL configurada. Devuelven pgx.ErrNoRows para filas ausentes,
// igual que las implementaciones pgx.

// MemoryCompanyRepository implementa CompanyRepository sobre un map.
type MemoryCompanyRepository struct {
	mu        sync.RWMutex
	companies map[string]domain.Company
}

func NewMemoryCompanyRepository() *MemoryCompanyRepository {
	return &MemoryCompanyRepository{companies: make(map[string]domain.Company)}
}

func (r *MemoryCompanyRepository) FindAll(_ context.Context) ([]domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	companies := make([]domain.Company, 0, len(r.companies))
	for _, c := range r.companies {
		companies = append(companies, c)
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].CreatedAt.Before(companies[j].CreatedAt) })
	return companies, nil
}

func (r *MemoryCompanyRepository) FindByID(_ context.Context, id string) (domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return domain.Company{}, pgx.ErrNoRows
	}
	return c, nil
}

func (r *MemoryCompanyRepository) FindByEmail(_ context.Context, email string) (domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.companies {
		if strings.EqualFold(c.Email, email) {
			return c, nil
		}
	}
	return domain.Company{}, pgx.ErrNoRows
}

func (r *MemoryCompanyRepository) FindByName(_ context.Context, name string) (domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.companies {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return domain.Company{}, pgx.ErrNoRows
}

func (r *MemoryCompanyRepository) Save(_ context.Context, company domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[company.ID] = company
	return nil
}

func (r *MemoryCompanyRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.companies, id)
	return nil
}

// MemoryCustomerRepository implementa CustomerRepository sobre un map.
type MemoryCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]domain.Customer
}

func NewMemoryCustomerRepository() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{customers: make(map[string]domain.Customer)}
}

func cloneCustomer(c domain.Customer) domain.Customer {
	c.CouponIDs = append([]string(nil), c.CouponIDs...)
	return c
}

func (r *MemoryCustomerRepository) FindAll(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customers := make([]domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		customers = append(customers, cloneCustomer(c))
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].CreatedAt.Before(customers[j].CreatedAt) })
	return customers, nil
}

func (r *MemoryCustomerRepository) FindByID(_ context.Context, id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return domain.Customer{}, pgx.ErrNoRows
	}
	return cloneCustomer(c), nil
}

func (r *MemoryCustomerRepository) FindByEmail(_ context.Context, email string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.customers {
		if strings.EqualFold(c.Email, email) {
			return cloneCustomer(c), nil
		}
	}
	return domain.Customer{}, pgx.ErrNoRows
}

func (r *MemoryCustomerRepository) FindByCoupon(_ context.Context, couponID string) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var holders []domain.Customer
	for _, c := range r.customers {
		if c.HasCoupon(couponID) {
			holders = append(holders, cloneCustomer(c))
		}
	}
	return holders, nil
}

// Save persiste el perfil. El set de compras guardado se conserva tal
// cual: el CouponIDs del struct entrante es un snapshot del caller y no
// debe pisar compras committeadas despues de esa lectura.
func (r *MemoryCustomerRepository) Save(_ context.Context, customer domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.customers[customer.ID]; ok {
		customer.CouponIDs = current.CouponIDs
	} else {
		customer.CouponIDs = nil
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *MemoryCustomerRepository) AddPurchase(_ context.Context, customerID, couponID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return pgx.ErrNoRows
	}
	if c.HasCoupon(couponID) {
		return nil
	}
	c.CouponIDs = append(c.CouponIDs, couponID)
	r.customers[customerID] = c
	return nil
}

func (r *MemoryCustomerRepository) RemovePurchase(_ context.Context, customerID, couponID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[customerID]
	if !ok {
		return nil
	}
	c.RemoveCoupon(couponID)
	r.customers[customerID] = c
	return nil
}

func (r *MemoryCustomerRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

// MemoryCouponRepository implementa CouponRepository sobre un map.
type MemoryCouponRepository struct {
	mu      sync.RWMutex
	coupons map[string]domain.Coupon
}

func NewMemoryCouponRepository() *MemoryCouponRepository {
	return &MemoryCouponRepository{coupons: make(map[string]domain.Coupon)}
}

func (r *MemoryCouponRepository) FindAll(_ context.Context) ([]domain.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	coupons := make([]domain.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		coupons = append(coupons, c)
	}
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].CreatedAt.Before(coupons[j].CreatedAt) })
	return coupons, nil
}

func (r *MemoryCouponRepository) FindByID(_ context.Context, id string) (domain.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coupons[id]
	if !ok {
		return domain.Coupon{}, pgx.ErrNoRows
	}
	return c, nil
}

func (r *MemoryCouponRepository) FindByCompany(_ context.Context, companyID string) ([]domain.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var coupons []domain.Coupon
	for _, c := range r.coupons {
		if c.CompanyID == companyID {
			coupons = append(coupons, c)
		}
	}
	sort.Slice(coupons, func(i, j int) bool { return coupons[i].CreatedAt.Before(coupons[j].CreatedAt) })
	return coupons, nil
}

func (r *MemoryCouponRepository) Save(_ context.Context, coupon domain.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coupons[coupon.ID] = coupon
	return nil
}

func (r *MemoryCouponRepository) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.coupons, id)
	return nil
}
