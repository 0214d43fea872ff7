package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"coupon-api/internal/domain"
)

// CompanyRepository define el contrato de persistencia para companias.
type CompanyRepository interface {
	FindAll(ctx context.Context) ([]domain.Company, error)
	FindByID(ctx context.Context, id string) (domain.Company, error)
	FindByEmail(ctx context.Context, email string) (domain.Company, error)
	FindByName(ctx context.Context, name string) (domain.Company, error)
	Save(ctx context.Context, company domain.Company) error
	DeleteByID(ctx context.Context, id string) error
}

// PgCompanyRepository implementa CompanyRepository usando pgxpool.
type PgCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewPgCompanyRepository(pool *pgxpool.Pool) *PgCompanyRepository {
	return &PgCompanyRepository{pool: pool}
}

const companyColumns = `id, name, email, password_hash, created_at`

func (r *PgCompanyRepository) FindAll(ctx context.Context) ([]domain.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *PgCompanyRepository) FindByID(ctx context.Context, id string) (domain.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *PgCompanyRepository) FindByEmail(ctx context.Context, email string) (domain.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE LOWER(email) = LOWER($1)
	`
	return r.scanOne(ctx, query, email)
}

func (r *PgCompanyRepository) FindByName(ctx context.Context, name string) (domain.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE LOWER(name) = LOWER($1)
	`
	return r.scanOne(ctx, query, name)
}

func (r *PgCompanyRepository) scanOne(ctx context.Context, query string, arg any) (domain.Company, error) {
	var c domain.Company
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	return c, err
}

func (r *PgCompanyRepository) Save(ctx context.Context, company domain.Company) error {
	const query = `
		INSERT INTO companies (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash
	`
	_, err := r.pool.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Email,
		company.PasswordHash,
		company.CreatedAt,
	)
	return err
}

func (r *PgCompanyRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM companies WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
