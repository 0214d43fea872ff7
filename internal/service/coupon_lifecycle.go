package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"coupon-api/internal/domain"
	"coupon-api/internal/repository"
)

// CouponLifecycle coordina compra, actualizacion y retiro de cupones.
// Toda mutacion de un cupon pasa por el lock de su id, asi el chequeo de
// stock y el decremento son atomicos frente a compras y retiros
// concurrentes sobre el mismo cupon.
type CouponLifecycle struct {
	logger    *zap.Logger
	coupons   repository.CouponRepository
	customers repository.CustomerRepository
	locks     *keyedMutex
	now       func() time.Time
}

func NewCouponLifecycle(logger *zap.Logger, coupons repository.CouponRepository, customers repository.CustomerRepository) *CouponLifecycle {
	return &CouponLifecycle{
		logger:    logger,
		coupons:   coupons,
		customers: customers,
		locks:     newKeyedMutex(),
		now:       time.Now,
	}
}

// AddCoupon registra un cupon nuevo de la compania. El titulo debe ser
// unico dentro de la compania.
func (l *CouponLifecycle) AddCoupon(ctx context.Context, companyID string, coupon domain.Coupon) (domain.Coupon, error) {
	existing, err := l.coupons.FindByCompany(ctx, companyID)
	if err != nil {
		return domain.Coupon{}, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Title, coupon.Title) {
			return domain.Coupon{}, ErrCouponExists
		}
	}

	coupon.ID = uuid.NewString()
	coupon.CompanyID = companyID
	coupon.CreatedAt = l.now().UTC()
	if err := l.coupons.Save(ctx, coupon); err != nil {
		return domain.Coupon{}, err
	}
	l.logger.Info("coupon added",
		zap.String("coupon_id", coupon.ID),
		zap.String("company_id", companyID),
		zap.String("title", coupon.Title),
	)
	return coupon, nil
}

// UpdateCoupon reemplaza los campos del cupon. Solo la compania duena
// puede actualizar, y las compras existentes no se tocan.
func (l *CouponLifecycle) UpdateCoupon(ctx context.Context, companyID string, coupon domain.Coupon) (domain.Coupon, error) {
	l.locks.Lock(coupon.ID)
	defer l.locks.Unlock(coupon.ID)

	current, err := l.coupons.FindByID(ctx, coupon.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Coupon{}, ErrCouponNotFound
	}
	if err != nil {
		return domain.Coupon{}, err
	}
	if current.CompanyID != companyID {
		return domain.Coupon{}, ErrCouponOwnership
	}

	siblings, err := l.coupons.FindByCompany(ctx, companyID)
	if err != nil {
		return domain.Coupon{}, err
	}
	for _, c := range siblings {
		if c.ID != coupon.ID && strings.EqualFold(c.Title, coupon.Title) {
			return domain.Coupon{}, ErrCouponExists
		}
	}

	// La referencia a la compania duena y la fecha de alta no cambian.
	coupon.CompanyID = current.CompanyID
	coupon.CreatedAt = current.CreatedAt
	if err := l.coupons.Save(ctx, coupon); err != nil {
		return domain.Coupon{}, err
	}
	l.logger.Info("coupon updated", zap.String("coupon_id", coupon.ID))
	return coupon, nil
}

// Purchase compra una unidad del cupon para el cliente. Bajo el lock del
// id se relee el cupon, se validan vencimiento, stock y doble compra, y
// recien entonces se persisten cupon y set de compras. Ante cualquier
// fallo no queda mutacion parcial.
func (l *CouponLifecycle) Purchase(ctx context.Context, customerID, couponID string) error {
	l.locks.Lock(couponID)
	defer l.locks.Unlock(couponID)

	coupon, err := l.coupons.FindByID(ctx, couponID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCouponNotFound
	}
	if err != nil {
		return err
	}

	if coupon.Expired(l.now()) {
		return ErrCouponExpired
	}
	if coupon.Amount <= 0 {
		return ErrInsufficientAmount
	}

	customer, err := l.customers.FindByID(ctx, customerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCustomerNotFound
	}
	if err != nil {
		return err
	}
	if customer.HasCoupon(couponID) {
		return ErrAlreadyPurchased
	}

	coupon.Amount--
	if err := l.coupons.Save(ctx, coupon); err != nil {
		return err
	}
	// La asociacion se inserta puntual, nunca reescribiendo el set del
	// cliente: compras concurrentes de otros cupones no se pisan.
	if err := l.customers.AddPurchase(ctx, customerID, couponID); err != nil {
		return err
	}
	l.logger.Info("coupon purchased",
		zap.String("coupon_id", couponID),
		zap.String("customer_id", customerID),
		zap.Int("remaining", coupon.Amount),
	)
	return nil
}

// Retract elimina el cupon y toda compra que lo referencia. Corre bajo el
// mismo lock que Purchase: una compra que tomo el lock primero termina
// completa antes de que el retiro avance, y una vez borrado el cupon
// cualquier compra posterior ve ErrCouponNotFound.
func (l *CouponLifecycle) Retract(ctx context.Context, couponID string) error {
	l.locks.Lock(couponID)
	defer l.locks.Unlock(couponID)

	if _, err := l.coupons.FindByID(ctx, couponID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCouponNotFound
		}
		return err
	}

	holders, err := l.customers.FindByCoupon(ctx, couponID)
	if err != nil {
		return err
	}
	for _, customer := range holders {
		// Borrado puntual de la asociacion retirada; compras de otros
		// cupones committeadas despues de leer holders quedan intactas.
		if err := l.customers.RemovePurchase(ctx, customer.ID, couponID); err != nil {
			return err
		}
		l.logger.Info("purchase removed",
			zap.String("coupon_id", couponID),
			zap.String("customer_id", customer.ID),
		)
	}

	if err := l.coupons.DeleteByID(ctx, couponID); err != nil {
		return err
	}
	l.logger.Info("coupon retracted", zap.String("coupon_id", couponID))
	return nil
}
