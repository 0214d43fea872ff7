package service

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"coupon-api/internal/domain"
	"coupon-api/internal/repository"
)

// LoginService resuelve credenciales por rol y abre sesiones en el
// registro. La validacion de credenciales es lo unico que sabe; el ciclo
// de vida del token lo maneja el registro.
type LoginService struct {
	logger        *zap.Logger
	registry      SessionRegistry
	companies     repository.CompanyRepository
	customers     repository.CustomerRepository
	adminEmail    string
	adminPassword string
}

func NewLoginService(
	logger *zap.Logger,
	registry SessionRegistry,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	adminEmail, adminPassword string,
) *LoginService {
	return &LoginService{
		logger:        logger,
		registry:      registry,
		companies:     companies,
		customers:     customers,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

// Login autentica email y password para el rol pedido y devuelve el token
// de la sesion creada.
func (s *LoginService) Login(ctx context.Context, email, password string, role domain.Role) (string, error) {
	principalID, err := s.authenticate(ctx, email, password, role)
	if err != nil {
		return "", err
	}

	token, err := s.registry.Create(role, principalID)
	if err != nil {
		return "", err
	}
	s.logger.Info("login",
		zap.String("role", string(role)),
		zap.String("principal_id", principalID),
	)
	return token, nil
}

func (s *LoginService) authenticate(ctx context.Context, email, password string, role domain.Role) (string, error) {
	switch role {
	case domain.RoleAdmin:
		emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
		if !emailOK || !passOK {
			return "", ErrInvalidLogin
		}
		return "admin", nil

	case domain.RoleCompany:
		company, err := s.companies.FindByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidLogin
		}
		if err != nil {
			return "", err
		}
		if bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(password)) != nil {
			return "", ErrInvalidLogin
		}
		return company.ID, nil

	case domain.RoleCustomer:
		customer, err := s.customers.FindByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrInvalidLogin
		}
		if err != nil {
			return "", err
		}
		if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)) != nil {
			return "", ErrInvalidLogin
		}
		return customer.ID, nil
	}
	return "", ErrInvalidLogin
}

// Logout destruye la sesion; destruir un token ausente no es error.
func (s *LoginService) Logout(token string) {
	s.registry.Destroy(token)
}
