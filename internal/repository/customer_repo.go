package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"coupon-api/internal/domain"
)

// CustomerRepository define el contrato de persistencia para clientes.
// Save persiste solo los campos de perfil; el set de compras se muta de
// a una asociacion con AddPurchase/RemovePurchase, nunca reescribiendo
// el set completo desde un snapshot del caller.
type CustomerRepository interface {
	FindAll(ctx context.Context) ([]domain.Customer, error)
	FindByID(ctx context.Context, id string) (domain.Customer, error)
	FindByEmail(ctx context.Context, email string) (domain.Customer, error)
	FindByCoupon(ctx context.Context, couponID string) ([]domain.Customer, error)
	Save(ctx context.Context, customer domain.Customer) error
	AddPurchase(ctx context.Context, customerID, couponID string) error
	RemovePurchase(ctx context.Context, customerID, couponID string) error
	DeleteByID(ctx context.Context, id string) error
}

// PgCustomerRepository implementa CustomerRepository usando pgxpool.
type PgCustomerRepository struct {
	pool *pgxpool.Pool
}

func NewPgCustomerRepository(pool *pgxpool.Pool) *PgCustomerRepository {
	return &PgCustomerRepository{pool: pool}
}

const customerColumns = `id, first_name, last_name, email, password_hash, created_at`

func (r *PgCustomerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	const query = `
		SELECT ` + customerColumns + `
		FROM customers
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range customers {
		couponIDs, err := r.loadPurchases(ctx, customers[i].ID)
		if err != nil {
			return nil, err
		}
		customers[i].CouponIDs = couponIDs
	}
	return customers, nil
}

func (r *PgCustomerRepository) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	const query = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE id = $1
	`
	return r.scanOne(ctx, query, id)
}

func (r *PgCustomerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	const query = `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE LOWER(email) = LOWER($1)
	`
	return r.scanOne(ctx, query, email)
}

// FindByCoupon devuelve los clientes que compraron el cupon dado.
func (r *PgCustomerRepository) FindByCoupon(ctx context.Context, couponID string) ([]domain.Customer, error) {
	const query = `
		SELECT c.id, c.first_name, c.last_name, c.email, c.password_hash, c.created_at
		FROM customers c
		JOIN purchases p ON p.customer_id = c.id
		WHERE p.coupon_id = $1
	`
	rows, err := r.pool.Query(ctx, query, couponID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range customers {
		couponIDs, err := r.loadPurchases(ctx, customers[i].ID)
		if err != nil {
			return nil, err
		}
		customers[i].CouponIDs = couponIDs
	}
	return customers, nil
}

func (r *PgCustomerRepository) scanOne(ctx context.Context, query string, arg any) (domain.Customer, error) {
	var c domain.Customer
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PasswordHash, &c.CreatedAt)
	if err != nil {
		return domain.Customer{}, err
	}
	c.CouponIDs, err = r.loadPurchases(ctx, c.ID)
	return c, err
}

func (r *PgCustomerRepository) loadPurchases(ctx context.Context, customerID string) ([]string, error) {
	const query = `
		SELECT coupon_id
		FROM purchases
		WHERE customer_id = $1
		ORDER BY purchased_at
	`
	rows, err := r.pool.Query(ctx, query, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var couponIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		couponIDs = append(couponIDs, id)
	}
	return couponIDs, rows.Err()
}

// Save hace upsert del perfil del cliente. Las filas de purchases no se
// tocan: un snapshot de CouponIDs en el struct nunca pisa compras que
// otra operacion committeo despues de la lectura del caller.
func (r *PgCustomerRepository) Save(ctx context.Context, customer domain.Customer) error {
	const upsert = `
		INSERT INTO customers (id, first_name, last_name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash
	`
	_, err := r.pool.Exec(ctx, upsert,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.PasswordHash,
		customer.CreatedAt,
	)
	return err
}

// AddPurchase inserta una asociacion de compra; repetirla es no-op.
func (r *PgCustomerRepository) AddPurchase(ctx context.Context, customerID, couponID string) error {
	const insert = `
		INSERT INTO purchases (customer_id, coupon_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, insert, customerID, couponID)
	return err
}

// RemovePurchase borra una asociacion puntual; ausente tambien es no-op.
func (r *PgCustomerRepository) RemovePurchase(ctx context.Context, customerID, couponID string) error {
	const query = `DELETE FROM purchases WHERE customer_id = $1 AND coupon_id = $2`
	_, err := r.pool.Exec(ctx, query, customerID, couponID)
	return err
}

func (r *PgCustomerRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM customers WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}
