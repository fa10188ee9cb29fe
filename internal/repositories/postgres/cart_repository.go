package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/postgres"
)

type cartRepository struct {
	pool *pgxpool.Pool
}

const cartColumns = `id, user_id, coupon_id, expires_at, created_at, updated_at`

const cartItemColumns = `id, cart_id, variant_id, quantity, created_at, updated_at`

func (r *cartRepository) FindByOwner(ctx context.Context, userID string) (domain.Cart, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM carts WHERE user_id = $1", cartColumns), userID)
	cart, err := scanCart(row)
	if err != nil {
		return domain.Cart{}, postgres.Translate("carts.find_by_owner", err)
	}
	return cart, nil
}

func (r *cartRepository) Insert(ctx context.Context, cart domain.Cart) (domain.Cart, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO carts (id, user_id, coupon_id, expires_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING %s`, cartColumns),
		cart.ID, cart.UserID, cart.CouponID, cart.ExpiresAt)
	inserted, err := scanCart(row)
	if err != nil {
		return domain.Cart{}, postgres.Translate("carts.insert", err)
	}
	return inserted, nil
}

func (r *cartRepository) SetCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"UPDATE carts SET coupon_id = $2, updated_at = NOW() WHERE id = $1", cartID, couponID)
	if err != nil {
		return postgres.Translate("carts.set_coupon", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("carts.set_coupon")
	}
	return nil
}

func (r *cartRepository) SetExpiry(ctx context.Context, cartID uuid.UUID, expiresAt time.Time) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"UPDATE carts SET expires_at = $2, updated_at = NOW() WHERE id = $1", cartID, expiresAt)
	if err != nil {
		return postgres.Translate("carts.set_expiry", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("carts.set_expiry")
	}
	return nil
}

// Lines joins cart items with the current catalog rows so prices and stock
// always reflect the catalog, never a cached copy.
func (r *cartRepository) Lines(ctx context.Context, cartID uuid.UUID) ([]domain.CartLine, error) {
	rows, err := postgres.Querier(ctx, r.pool).Query(ctx,
		`SELECT ci.id, ci.cart_id, ci.variant_id, ci.quantity, ci.created_at, ci.updated_at,
		        p.id, p.name, v.sku, v.color, v.size,
		        GREATEST(p.base_price + v.price_modifier, 0), v.stock_quantity
		 FROM cart_items ci
		 JOIN product_variants v ON v.id = ci.variant_id
		 JOIN products p ON p.id = v.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.created_at, ci.id`,
		cartID)
	if err != nil {
		return nil, postgres.Translate("carts.lines", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		err := rows.Scan(
			&line.Item.ID, &line.Item.CartID, &line.Item.VariantID, &line.Item.Quantity,
			&line.Item.CreatedAt, &line.Item.UpdatedAt,
			&line.ProductID, &line.ProductName, &line.SKU, &line.Color, &line.Size,
			&line.UnitPrice, &line.Stock,
		)
		if err != nil {
			return nil, postgres.Translate("carts.scan_line", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Translate("carts.lines", err)
	}
	return lines, nil
}

func (r *cartRepository) FindItem(ctx context.Context, cartID, itemID uuid.UUID) (domain.CartItem, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM cart_items WHERE id = $1 AND cart_id = $2", cartItemColumns),
		itemID, cartID)
	item, err := scanCartItem(row)
	if err != nil {
		return domain.CartItem{}, postgres.Translate("carts.find_item", err)
	}
	return item, nil
}

func (r *cartRepository) FindItemByVariant(ctx context.Context, cartID, variantID uuid.UUID) (domain.CartItem, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM cart_items WHERE cart_id = $1 AND variant_id = $2", cartItemColumns),
		cartID, variantID)
	item, err := scanCartItem(row)
	if err != nil {
		return domain.CartItem{}, postgres.Translate("carts.find_item_by_variant", err)
	}
	return item, nil
}

func (r *cartRepository) InsertItem(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO cart_items (id, cart_id, variant_id, quantity)
		 VALUES ($1, $2, $3, $4)
		 RETURNING %s`, cartItemColumns),
		item.ID, item.CartID, item.VariantID, item.Quantity)
	inserted, err := scanCartItem(row)
	if err != nil {
		return domain.CartItem{}, postgres.Translate("carts.insert_item", err)
	}
	return inserted, nil
}

func (r *cartRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"UPDATE cart_items SET quantity = $2, updated_at = NOW() WHERE id = $1", itemID, quantity)
	if err != nil {
		return postgres.Translate("carts.update_item_quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("carts.update_item_quantity")
	}
	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"DELETE FROM cart_items WHERE id = $1", itemID)
	if err != nil {
		return postgres.Translate("carts.delete_item", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("carts.delete_item")
	}
	return nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	_, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1", cartID)
	return postgres.Translate("carts.clear_items", err)
}

func scanCart(row pgx.Row) (domain.Cart, error) {
	var c domain.Cart
	err := row.Scan(&c.ID, &c.UserID, &c.CouponID, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanCartItem(row pgx.Row) (domain.CartItem, error) {
	var i domain.CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.VariantID, &i.Quantity, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}
