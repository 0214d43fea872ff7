package service

import "errors"

// Errores de autenticacion del registro de sesiones.
var (
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrRoleMismatch  = errors.New("role mismatch")
	ErrInvalidLogin  = errors.New("invalid login")
)

// Conflictos de identidad y restricciones de actualizacion.
var (
	ErrCompanyExists   = errors.New("company already exists")
	ErrCustomerExists  = errors.New("customer already exists")
	ErrCouponExists    = errors.New("coupon title already exists for company")
	ErrCompanyRename   = errors.New("company name cannot change")
	ErrCouponOwnership = errors.New("coupon belongs to another company")
)

// Errores del ciclo de vida de compra.
var (
	ErrCouponExpired      = errors.New("coupon expired")
	ErrInsufficientAmount = errors.New("insufficient coupon amount")
	ErrAlreadyPurchased   = errors.New("coupon already purchased")
)

// Entidades ausentes.
var (
	ErrCompanyNotFound  = errors.New("company not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCouponNotFound   = errors.New("coupon not found")
)
