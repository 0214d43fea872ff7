package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"coupon-api/internal/domain"
	"coupon-api/internal/repository"
)

// AdminService coordina el CRUD de companias y clientes.
type AdminService struct {
	logger    *zap.Logger
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	coupons   repository.CouponRepository
	lifecycle *CouponLifecycle
}

func NewAdminService(
	logger *zap.Logger,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	coupons repository.CouponRepository,
	lifecycle *CouponLifecycle,
) *AdminService {
	return &AdminService{
		logger:    logger,
		companies: companies,
		customers: customers,
		coupons:   coupons,
		lifecycle: lifecycle,
	}
}

// CompanyInput agrupa los datos editables de una compania.
type CompanyInput struct {
	Name     string
	Email    string
	Password string
}

// CustomerInput agrupa los datos editables de un cliente.
type CustomerInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// AddCompany registra una compania nueva; email y nombre deben ser unicos.
func (s *AdminService) AddCompany(ctx context.Context, input CompanyInput) (domain.Company, error) {
	if _, err := s.companies.FindByEmail(ctx, input.Email); err == nil {
		return domain.Company{}, ErrCompanyExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, err
	}
	if _, err := s.companies.FindByName(ctx, input.Name); err == nil {
		return domain.Company{}, ErrCompanyExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return domain.Company{}, err
	}
	company := domain.Company{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.companies.Save(ctx, company); err != nil {
		return domain.Company{}, err
	}
	s.logger.Info("company added", zap.String("company_id", company.ID), zap.String("name", company.Name))
	return company, nil
}

// UpdateCompany actualiza una compania existente. El nombre es inmutable
// y el email no puede chocar con otra compania.
func (s *AdminService) UpdateCompany(ctx context.Context, id string, input CompanyInput) (domain.Company, error) {
	current, err := s.companies.FindByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, ErrCompanyNotFound
	}
	if err != nil {
		return domain.Company{}, err
	}
	if !strings.EqualFold(current.Name, input.Name) {
		return domain.Company{}, ErrCompanyRename
	}
	if other, err := s.companies.FindByEmail(ctx, input.Email); err == nil && other.ID != id {
		return domain.Company{}, ErrCompanyExists
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, err
	}

	current.Email = strings.TrimSpace(input.Email)
	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return domain.Company{}, err
		}
		current.PasswordHash = hash
	}
	if err := s.companies.Save(ctx, current); err != nil {
		return domain.Company{}, err
	}
	s.logger.Info("company updated", zap.String("company_id", id))
	return current, nil
}

// DeleteCompany retira cada cupon de la compania (con sus compras) y
// despues borra la compania.
func (s *AdminService) DeleteCompany(ctx context.Context, id string) error {
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCompanyNotFound
		}
		return err
	}

	coupons, err := s.coupons.FindByCompany(ctx, id)
	if err != nil {
		return err
	}
	for _, coupon := range coupons {
		if err := s.lifecycle.Retract(ctx, coupon.ID); err != nil && !errors.Is(err, ErrCouponNotFound) {
			return err
		}
	}

	if err := s.companies.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info("company deleted", zap.String("company_id", id))
	return nil
}

// AddCustomer registra un cliente nuevo; el email debe ser unico.
func (s *AdminService) AddCustomer(ctx context.Context, input CustomerInput) (domain.Customer, error) {
	if _, err := s.customers.FindByEmail(ctx, input.Email); err == nil {
		return domain.Customer{}, ErrCustomerExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return domain.Customer{}, err
	}
	customer := domain.Customer{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.customers.Save(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	s.logger.Info("customer added", zap.String("customer_id", customer.ID))
	return customer, nil
}

// UpdateCustomer actualiza un cliente existente sin tocar sus compras.
func (s *AdminService) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (domain.Customer, error) {
	current, err := s.customers.FindByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, ErrCustomerNotFound
	}
	if err != nil {
		return domain.Customer{}, err
	}
	if other, err := s.customers.FindByEmail(ctx, input.Email); err == nil && other.ID != id {
		return domain.Customer{}, ErrCustomerExists
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, err
	}

	current.FirstName = strings.TrimSpace(input.FirstName)
	current.LastName = strings.TrimSpace(input.LastName)
	current.Email = strings.TrimSpace(input.Email)
	if input.Password != "" {
		hash, err := hashPassword(input.Password)
		if err != nil {
			return domain.Customer{}, err
		}
		current.PasswordHash = hash
	}
	if err := s.customers.Save(ctx, current); err != nil {
		return domain.Customer{}, err
	}
	s.logger.Info("customer updated", zap.String("customer_id", id))
	return current, nil
}

// DeleteCustomer borra el cliente; sus compras se van con el.
func (s *AdminService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCustomerNotFound
		}
		return err
	}
	if err := s.customers.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id))
	return nil
}

func (s *AdminService) GetAllCompanies(ctx context.Context) ([]domain.Company, error) {
	return s.companies.FindAll(ctx)
}

func (s *AdminService) GetAllCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.customers.FindAll(ctx)
}

func (s *AdminService) GetAllCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.coupons.FindAll(ctx)
}

func (s *AdminService) GetOneCompany(ctx context.Context, id string) (domain.Company, error) {
	company, err := s.companies.FindByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, ErrCompanyNotFound
	}
	return company, err
}

func (s *AdminService) GetOneCustomer(ctx context.Context, id string) (domain.Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, ErrCustomerNotFound
	}
	return customer, err
}

// GetCompanyCoupons lista los cupones de una compania puntual.
func (s *AdminService) GetCompanyCoupons(ctx context.Context, companyID string) ([]domain.Coupon, error) {
	return s.coupons.FindByCompany(ctx, companyID)
}

// GetCustomerCoupons lista los cupones comprados por un cliente puntual.
func (s *AdminService) GetCustomerCoupons(ctx context.Context, customerID string) ([]domain.Coupon, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return couponsByIDs(ctx, s.coupons, customer.CouponIDs)
}

// couponsByIDs resuelve ids de cupones a entidades, ignorando ids que ya
// no existen (pueden haber sido retirados entre lecturas).
func couponsByIDs(ctx context.Context, repo repository.CouponRepository, ids []string) ([]domain.Coupon, error) {
	coupons := make([]domain.Coupon, 0, len(ids))
	for _, id := range ids {
		coupon, err := repo.FindByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}
	return coupons, nil
}
