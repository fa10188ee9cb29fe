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

type orderRepository struct {
	pool *pgxpool.Pool
}

const orderColumns = `id, order_number, user_id, status, subtotal, discount, shipping_fee, vat, total,
	coupon_code, notes, ship_recipient, ship_phone, ship_line1, ship_line2, ship_city, ship_state, ship_country,
	created_at, updated_at`

const orderItemColumns = `id, order_id, variant_id, product_name, sku, color, size, quantity, unit_price, total_price, created_at`

func (r *orderRepository) Insert(ctx context.Context, order domain.Order, items []domain.OrderItem) (domain.Order, error) {
	q := postgres.Querier(ctx, r.pool)

	row := q.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO orders (id, order_number, user_id, status, subtotal, discount, shipping_fee, vat, total,
		   coupon_code, notes, ship_recipient, ship_phone, ship_line1, ship_line2, ship_city, ship_state, ship_country)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING %s`, orderColumns),
		order.ID, order.OrderNumber, order.UserID, string(order.Status),
		order.Subtotal, order.Discount, order.ShippingFee, order.VAT, order.Total,
		order.CouponCode, order.Notes,
		order.Shipping.Recipient, order.Shipping.Phone, order.Shipping.Line1, order.Shipping.Line2,
		order.Shipping.City, order.Shipping.State, order.Shipping.Country)
	inserted, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, postgres.Translate("orders.insert", err)
	}

	for _, item := range items {
		_, err := q.Exec(ctx,
			`INSERT INTO order_items (id, order_id, variant_id, product_name, sku, color, size, quantity, unit_price, total_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			item.ID, inserted.ID, item.VariantID, item.ProductName, item.SKU, item.Color, item.Size,
			item.Quantity, item.UnitPrice, item.TotalPrice)
		if err != nil {
			return domain.Order{}, postgres.Translate("orders.insert_item", err)
		}
	}
	return inserted, nil
}

func (r *orderRepository) FindByID(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM orders WHERE id = $1", orderColumns), orderID)
	order, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, postgres.Translate("orders.find_by_id", err)
	}
	return order, nil
}

func (r *orderRepository) FindForOwner(ctx context.Context, orderID uuid.UUID, userID string) (domain.Order, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM orders WHERE id = $1 AND user_id = $2", orderColumns), orderID, userID)
	order, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, postgres.Translate("orders.find_for_owner", err)
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (repositories.Page[domain.Order], error) {
	q := postgres.Querier(ctx, r.pool)

	where := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		args = append(args, userID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM orders"+clause, args...).Scan(&total); err != nil {
		return repositories.Page[domain.Order]{}, postgres.Translate("orders.count", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf("SELECT %s FROM orders%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		orderColumns, clause, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return repositories.Page[domain.Order]{}, postgres.Translate("orders.list", err)
	}
	defer rows.Close()

	items := make([]domain.Order, 0, filter.Limit)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return repositories.Page[domain.Order]{}, postgres.Translate("orders.scan", err)
		}
		items = append(items, order)
	}
	if err := rows.Err(); err != nil {
		return repositories.Page[domain.Order]{}, postgres.Translate("orders.list", err)
	}
	return repositories.Page[domain.Order]{Items: items, Total: total}, nil
}

func (r *orderRepository) Items(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := postgres.Querier(ctx, r.pool).Query(ctx,
		fmt.Sprintf("SELECT %s FROM order_items WHERE order_id = $1 ORDER BY created_at, id", orderItemColumns),
		orderID)
	if err != nil {
		return nil, postgres.Translate("orders.items", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.VariantID, &item.ProductName, &item.SKU,
			&item.Color, &item.Size, &item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, postgres.Translate("orders.scan_item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Translate("orders.items", err)
	}
	return items, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1", orderID, string(status))
	if err != nil {
		return postgres.Translate("orders.update_status", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("orders.update_status")
	}
	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &status,
		&o.Subtotal, &o.Discount, &o.ShippingFee, &o.VAT, &o.Total,
		&o.CouponCode, &o.Notes,
		&o.Shipping.Recipient, &o.Shipping.Phone, &o.Shipping.Line1, &o.Shipping.Line2,
		&o.Shipping.City, &o.Shipping.State, &o.Shipping.Country,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}
