package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/postgres"
)

type addressRepository struct {
	pool *pgxpool.Pool
}

const addressColumns = `id, user_id, label, recipient, phone, line1, line2, city, state, country, is_default, created_at, updated_at`

func (r *addressRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := postgres.Querier(ctx, r.pool).Query(ctx,
		fmt.Sprintf("SELECT %s FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC", addressColumns),
		userID)
	if err != nil {
		return nil, postgres.Translate("addresses.list", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, postgres.Translate("addresses.scan", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Translate("addresses.list", err)
	}
	return addresses, nil
}

func (r *addressRepository) FindForOwner(ctx context.Context, addressID uuid.UUID, userID string) (domain.Address, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM addresses WHERE id = $1 AND user_id = $2", addressColumns),
		addressID, userID)
	address, err := scanAddress(row)
	if err != nil {
		return domain.Address{}, postgres.Translate("addresses.find", err)
	}
	return address, nil
}

func (r *addressRepository) Insert(ctx context.Context, address domain.Address) (domain.Address, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO addresses (id, user_id, label, recipient, phone, line1, line2, city, state, country, is_default)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING %s`, addressColumns),
		address.ID, address.UserID, address.Label, address.Recipient, address.Phone,
		address.Line1, address.Line2, address.City, address.State, address.Country, address.IsDefault)
	inserted, err := scanAddress(row)
	if err != nil {
		return domain.Address{}, postgres.Translate("addresses.insert", err)
	}
	return inserted, nil
}

func (r *addressRepository) Update(ctx context.Context, address domain.Address) (domain.Address, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`UPDATE addresses
		 SET label = $3, recipient = $4, phone = $5, line1 = $6, line2 = $7,
		     city = $8, state = $9, country = $10, is_default = $11, updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING %s`, addressColumns),
		address.ID, address.UserID, address.Label, address.Recipient, address.Phone,
		address.Line1, address.Line2, address.City, address.State, address.Country, address.IsDefault)
	updated, err := scanAddress(row)
	if err != nil {
		return domain.Address{}, postgres.Translate("addresses.update", err)
	}
	return updated, nil
}

func (r *addressRepository) Delete(ctx context.Context, addressID uuid.UUID, userID string) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"DELETE FROM addresses WHERE id = $1 AND user_id = $2", addressID, userID)
	if err != nil {
		return postgres.Translate("addresses.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("addresses.delete")
	}
	return nil
}

func scanAddress(row pgx.Row) (domain.Address, error) {
	var a domain.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.Recipient, &a.Phone, &a.Line1, &a.Line2,
		&a.City, &a.State, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
