package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zuricart/api/internal/platform/postgres"
	"github.com/zuricart/api/internal/repositories"
)

// Store bundles the pgx-backed repositories behind repositories.Registry.
type Store struct {
	pool *pgxpool.Pool

	catalog   *catalogRepository
	addresses *addressRepository
	carts     *cartRepository
	coupons   *couponRepository
	orders    *orderRepository
	payments  *paymentRepository
	health    *healthRepository
}

// NewStore constructs the repository registry over the given pool.
func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("postgres store: pool is required")
	}
	return &Store{
		pool:      pool,
		catalog:   &catalogRepository{pool: pool},
		addresses: &addressRepository{pool: pool},
		carts:     &cartRepository{pool: pool},
		coupons:   &couponRepository{pool: pool},
		orders:    &orderRepository{pool: pool},
		payments:  &paymentRepository{pool: pool},
		health:    &healthRepository{pool: pool},
	}, nil
}

// Catalog returns the catalog repository.
func (s *Store) Catalog() repositories.CatalogRepository { return s.catalog }

// Addresses returns the address repository.
func (s *Store) Addresses() repositories.AddressRepository { return s.addresses }

// Carts returns the cart repository.
func (s *Store) Carts() repositories.CartRepository { return s.carts }

// Coupons returns the coupon repository.
func (s *Store) Coupons() repositories.CouponRepository { return s.coupons }

// Orders returns the order repository.
func (s *Store) Orders() repositories.OrderRepository { return s.orders }

// Payments returns the payment repository.
func (s *Store) Payments() repositories.PaymentRepository { return s.payments }

// Health returns the health repository.
func (s *Store) Health() repositories.HealthRepository { return s.health }

// RunInTx executes fn inside a single database transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return postgres.RunInTx(ctx, s.pool, fn)
}

type healthRepository struct {
	pool *pgxpool.Pool
}

func (r *healthRepository) Ping(ctx context.Context) error {
	var one int
	err := postgres.Querier(ctx, r.pool).QueryRow(ctx, "SELECT 1").Scan(&one)
	return postgres.Translate("health.ping", err)
}
