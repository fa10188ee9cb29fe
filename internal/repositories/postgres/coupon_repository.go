package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/postgres"
	"github.com/zuricart/api/internal/repositories"
)

type couponRepository struct {
	pool *pgxpool.Pool
}

const couponColumns = `id, code, kind, value, min_order_amount, starts_at, expires_at, max_uses, used_count, active, created_at, updated_at`

func (r *couponRepository) FindByID(ctx context.Context, couponID uuid.UUID) (domain.Coupon, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM coupons WHERE id = $1", couponColumns), couponID)
	coupon, err := scanCoupon(row)
	if err != nil {
		return domain.Coupon{}, postgres.Translate("coupons.find_by_id", err)
	}
	return coupon, nil
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM coupons WHERE code = $1", couponColumns),
		strings.ToUpper(strings.TrimSpace(code)))
	coupon, err := scanCoupon(row)
	if err != nil {
		return domain.Coupon{}, postgres.Translate("coupons.find_by_code", err)
	}
	return coupon, nil
}

func (r *couponRepository) List(ctx context.Context, filter repositories.ListFilter) (repositories.Page[domain.Coupon], error) {
	q := postgres.Querier(ctx, r.pool)

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM coupons").Scan(&total); err != nil {
		return repositories.Page[domain.Coupon]{}, postgres.Translate("coupons.count", err)
	}

	rows, err := q.Query(ctx,
		fmt.Sprintf("SELECT %s FROM coupons ORDER BY created_at DESC, id LIMIT $1 OFFSET $2", couponColumns),
		filter.Limit, filter.Offset)
	if err != nil {
		return repositories.Page[domain.Coupon]{}, postgres.Translate("coupons.list", err)
	}
	defer rows.Close()

	items := make([]domain.Coupon, 0, filter.Limit)
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return repositories.Page[domain.Coupon]{}, postgres.Translate("coupons.scan", err)
		}
		items = append(items, coupon)
	}
	if err := rows.Err(); err != nil {
		return repositories.Page[domain.Coupon]{}, postgres.Translate("coupons.list", err)
	}
	return repositories.Page[domain.Coupon]{Items: items, Total: total}, nil
}

func (r *couponRepository) Insert(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO coupons (id, code, kind, value, min_order_amount, starts_at, expires_at, max_uses, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING %s`, couponColumns),
		coupon.ID, coupon.Code, string(coupon.Kind), coupon.Value, coupon.MinOrderAmount,
		coupon.StartsAt, coupon.ExpiresAt, coupon.MaxUses, coupon.Active)
	inserted, err := scanCoupon(row)
	if err != nil {
		return domain.Coupon{}, postgres.Translate("coupons.insert", err)
	}
	return inserted, nil
}

func (r *couponRepository) Update(ctx context.Context, coupon domain.Coupon) (domain.Coupon, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`UPDATE coupons
		 SET code = $2, kind = $3, value = $4, min_order_amount = $5, starts_at = $6,
		     expires_at = $7, max_uses = $8, active = $9, updated_at = NOW()
		 WHERE id = $1
		 RETURNING %s`, couponColumns),
		coupon.ID, coupon.Code, string(coupon.Kind), coupon.Value, coupon.MinOrderAmount,
		coupon.StartsAt, coupon.ExpiresAt, coupon.MaxUses, coupon.Active)
	updated, err := scanCoupon(row)
	if err != nil {
		return domain.Coupon{}, postgres.Translate("coupons.update", err)
	}
	return updated, nil
}

func (r *couponRepository) Delete(ctx context.Context, couponID uuid.UUID) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"DELETE FROM coupons WHERE id = $1", couponID)
	if err != nil {
		return postgres.Translate("coupons.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("coupons.delete")
	}
	return nil
}

// IncrementUsage bumps used_count only while the cap allows it, so two
// concurrent checkouts cannot push a coupon past max_uses.
func (r *couponRepository) IncrementUsage(ctx context.Context, couponID uuid.UUID) (bool, error) {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		`UPDATE coupons
		 SET used_count = used_count + 1, updated_at = NOW()
		 WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)`,
		couponID)
	if err != nil {
		return false, postgres.Translate("coupons.increment_usage", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanCoupon(row pgx.Row) (domain.Coupon, error) {
	var c domain.Coupon
	var kind string
	err := row.Scan(&c.ID, &c.Code, &kind, &c.Value, &c.MinOrderAmount, &c.StartsAt, &c.ExpiresAt,
		&c.MaxUses, &c.UsedCount, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Coupon{}, err
	}
	c.Kind = domain.CouponKind(kind)
	return c, nil
}
