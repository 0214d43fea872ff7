package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"coupon-api/internal/domain"
)

// CouponRepository define el contrato de persistencia para cupones.
type CouponRepository interface {
	FindAll(ctx context.Context) ([]domain.Coupon, error)
	FindByID(ctx context.Context, id string) (domain.Coupon, error)
	FindByCompany(ctx context.Context, companyID string) ([]domain.Coupon, error)
	Save(ctx context.Context, coupon domain.Coupon) error
	DeleteByID(ctx context.Context, id string) error
}

// PgCouponRepository implementa CouponRepository usando pgxpool.
type PgCouponRepository struct {
	pool *pgxpool.Pool
}

func NewPgCouponRepository(pool *pgxpool.Pool) *PgCouponRepository {
	return &PgCouponRepository{pool: pool}
}

const couponColumns = `id, company_id, category, title, description, start_date, end_date, amount, price, image, created_at`

func (r *PgCouponRepository) FindAll(ctx context.Context) ([]domain.Coupon, error) {
	const query = `
		SELECT ` + couponColumns + `
		FROM coupons
		ORDER BY created_at
	`
	return r.scanMany(ctx, query)
}

func (r *PgCouponRepository) FindByID(ctx context.Context, id string) (domain.Coupon, error) {
	const query = `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE id = $1
	`
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.CompanyID, &c.Category, &c.Title, &c.Description,
		&c.StartDate, &c.EndDate, &c.Amount, &c.Price, &c.Image, &c.CreatedAt,
	)
	return c, err
}

func (r *PgCouponRepository) FindByCompany(ctx context.Context, companyID string) ([]domain.Coupon, error) {
	const query = `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE company_id = $1
		ORDER BY created_at
	`
	return r.scanMany(ctx, query, companyID)
}

func (r *PgCouponRepository) scanMany(ctx context.Context, query string, args ...any) ([]domain.Coupon, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		if err := rows.Scan(
			&c.ID, &c.CompanyID, &c.Category, &c.Title, &c.Description,
			&c.StartDate, &c.EndDate, &c.Amount, &c.Price, &c.Image, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *PgCouponRepository) Save(ctx context.Context, coupon domain.Coupon) error {
	const query = `
		INSERT INTO coupons (id, company_id, category, title, description, start_date, end_date, amount, price, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			amount = EXCLUDED.amount,
			price = EXCLUDED.price,
			image = EXCLUDED.image
	`
	_, err := r.pool.Exec(ctx, query,
		coupon.ID,
		coupon.CompanyID,
		coupon.Category,
		coupon.Title,
		coupon.Description,
		coupon.StartDate,
		coupon.EndDate,
		coupon.Amount,
		coupon.Price,
		coupon.Image,
		coupon.CreatedAt,
	)
	return err
}

func (r *PgCouponRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM coupons WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
