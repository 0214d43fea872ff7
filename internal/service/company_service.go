package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/repository"
)

// CompanyService expone las operaciones del rol compania, siempre
// acotadas al id autenticado que entrega el gate de autorizacion.
type CompanyService struct {
	logger    *zap.Logger
	companies repository.CompanyRepository
	coupons   repository.CouponRepository
	lifecycle *CouponLifecycle
}

func NewCompanyService(
	logger *zap.Logger,
	companies repository.CompanyRepository,
	coupons repository.CouponRepository,
	lifecycle *CouponLifecycle,
) *CompanyService {
	return &CompanyService{
		logger:    logger,
		companies: companies,
		coupons:   coupons,
		lifecycle: lifecycle,
	}
}

func (s *CompanyService) AddCoupon(ctx context.Context, companyID string, coupon domain.Coupon) (domain.Coupon, error) {
	return s.lifecycle.AddCoupon(ctx, companyID, coupon)
}

func (s *CompanyService) UpdateCoupon(ctx context.Context, companyID string, coupon domain.Coupon) (domain.Coupon, error) {
	return s.lifecycle.UpdateCoupon(ctx, companyID, coupon)
}

// DeleteCoupon retira un cupon propio junto con todas sus compras.
func (s *CompanyService) DeleteCoupon(ctx context.Context, companyID, couponID string) error {
	coupon, err := s.coupons.FindByID(ctx, couponID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCouponNotFound
	}
	if err != nil {
		return err
	}
	if coupon.CompanyID != companyID {
		return ErrCouponOwnership
	}
	return s.lifecycle.Retract(ctx, couponID)
}

func (s *CompanyService) GetAllCoupons(ctx context.Context, companyID string) ([]domain.Coupon, error) {
	return s.coupons.FindByCompany(ctx, companyID)
}

func (s *CompanyService) GetCouponsByCategory(ctx context.Context, companyID string, category domain.Category) ([]domain.Coupon, error) {
	coupons, err := s.coupons.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.Category == category {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *CompanyService) GetCouponsByMaxPrice(ctx context.Context, companyID string, maxPrice float64) ([]domain.Coupon, error) {
	coupons, err := s.coupons.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.Price <= maxPrice {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

// GetOneCoupon devuelve un cupon propio por id.
func (s *CompanyService) GetOneCoupon(ctx context.Context, companyID, couponID string) (domain.Coupon, error) {
	coupon, err := s.coupons.FindByID(ctx, couponID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, ErrCouponNotFound
	}
	if err != nil {
		return domain.Coupon{}, err
	}
	if coupon.CompanyID != companyID {
		return domain.Coupon{}, ErrCouponNotFound
	}
	return coupon, nil
}

func (s *CompanyService) GetLoggedInCompany(ctx context.Context, companyID string) (domain.Company, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Company{}, ErrCompanyNotFound
	}
	return company, err
}
