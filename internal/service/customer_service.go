package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/email"
	"coupon-api/internal/repository"
)

// CustomerService expone las operaciones del rol cliente.
type CustomerService struct {
	logger    *zap.Logger
	customers repository.CustomerRepository
	coupons   repository.CouponRepository
	lifecycle *CouponLifecycle
	receipts  email.Sender
}

func NewCustomerService(
	logger *zap.Logger,
	customers repository.CustomerRepository,
	coupons repository.CouponRepository,
	lifecycle *CouponLifecycle,
	receipts email.Sender,
) *CustomerService {
	return &CustomerService{
		logger:    logger,
		customers: customers,
		coupons:   coupons,
		lifecycle: lifecycle,
		receipts:  receipts,
	}
}

// PurchaseCoupon compra una unidad del cupon para el cliente autenticado.
// El comprobante por email es best-effort: un fallo de envio no revierte
// la compra.
func (s *CustomerService) PurchaseCoupon(ctx context.Context, customerID, couponID string) error {
	if err := s.lifecycle.Purchase(ctx, customerID, couponID); err != nil {
		return err
	}
	s.sendReceipt(ctx, customerID, couponID)
	return nil
}

func (s *CustomerService) sendReceipt(ctx context.Context, customerID, couponID string) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		s.logger.Warn("receipt skipped, customer lookup failed",
			zap.String("customer_id", customerID), zap.Error(err))
		return
	}
	coupon, err := s.coupons.FindByID(ctx, couponID)
	if err != nil {
		// El cupon pudo haber sido retirado justo despues de la compra.
		s.logger.Warn("receipt skipped, coupon lookup failed",
			zap.String("coupon_id", couponID), zap.Error(err))
		return
	}
	if err := s.receipts.SendPurchaseReceipt(ctx, customer.Email, customer.FirstName, coupon); err != nil {
		s.logger.Warn("receipt send failed",
			zap.String("customer_id", customerID),
			zap.String("coupon_id", couponID),
			zap.Error(err),
		)
	}
}

// GetAllCustomerCoupons lista los cupones comprados por el cliente.
func (s *CustomerService) GetAllCustomerCoupons(ctx context.Context, customerID string) ([]domain.Coupon, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return couponsByIDs(ctx, s.coupons, customer.CouponIDs)
}

func (s *CustomerService) GetCouponsByCategory(ctx context.Context, customerID string, category domain.Category) ([]domain.Coupon, error) {
	coupons, err := s.GetAllCustomerCoupons(ctx, customerID)
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

func (s *CustomerService) GetCouponsByMaxPrice(ctx context.Context, customerID string, maxPrice float64) ([]domain.Coupon, error) {
	coupons, err := s.GetAllCustomerCoupons(ctx, customerID)
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

// GetOneCustomerCoupon devuelve un cupon del set de compras del cliente.
func (s *CustomerService) GetOneCustomerCoupon(ctx context.Context, customerID, couponID string) (domain.Coupon, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, ErrCustomerNotFound
	}
	if err != nil {
		return domain.Coupon{}, err
	}
	if !customer.HasCoupon(couponID) {
		return domain.Coupon{}, ErrCouponNotFound
	}
	coupon, err := s.coupons.FindByID(ctx, couponID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, ErrCouponNotFound
	}
	return coupon, err
}

func (s *CustomerService) GetLoggedInCustomer(ctx context.Context, customerID string) (domain.Customer, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Customer{}, ErrCustomerNotFound
	}
	return customer, err
}

// GetAllCoupons lista todo el catalogo visible para clientes.
func (s *CustomerService) GetAllCoupons(ctx context.Context) ([]domain.Coupon, error) {
	return s.coupons.FindAll(ctx)
}

// GetCoupon devuelve un cupon del catalogo por id.
func (s *CustomerService) GetCoupon(ctx context.Context, couponID string) (domain.Coupon, error) {
	coupon, err := s.coupons.FindByID(ctx, couponID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, ErrCouponNotFound
	}
	return coupon, err
}
