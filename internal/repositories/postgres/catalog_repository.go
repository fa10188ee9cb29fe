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

type catalogRepository struct {
	pool *pgxpool.Pool
}

const productColumns = `id, name, slug, description, base_price, currency, active, created_at, updated_at`

const variantColumns = `id, product_id, sku, color, size, price_modifier, stock_quantity, active, created_at, updated_at`

func (r *catalogRepository) ListProducts(ctx context.Context, filter repositories.ProductListFilter) (repositories.Page[domain.Product], error) {
	q := postgres.Querier(ctx, r.pool)

	where := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if filter.ActiveOnly {
		where = append(where, "active = TRUE")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		where = append(where, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM products"+clause, args...).Scan(&total); err != nil {
		return repositories.Page[domain.Product]{}, postgres.Translate("catalog.count_products", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		productColumns, clause, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return repositories.Page[domain.Product]{}, postgres.Translate("catalog.list_products", err)
	}
	defer rows.Close()

	items := make([]domain.Product, 0, filter.Limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return repositories.Page[domain.Product]{}, postgres.Translate("catalog.scan_product", err)
		}
		items = append(items, product)
	}
	if err := rows.Err(); err != nil {
		return repositories.Page[domain.Product]{}, postgres.Translate("catalog.list_products", err)
	}
	return repositories.Page[domain.Product]{Items: items, Total: total}, nil
}

func (r *catalogRepository) FindProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns), productID)
	product, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, postgres.Translate("catalog.find_product", err)
	}
	return product, nil
}

func (r *catalogRepository) VariantsByProduct(ctx context.Context, productID uuid.UUID) ([]domain.ProductVariant, error) {
	rows, err := postgres.Querier(ctx, r.pool).Query(ctx,
		fmt.Sprintf("SELECT %s FROM product_variants WHERE product_id = $1 ORDER BY sku", variantColumns), productID)
	if err != nil {
		return nil, postgres.Translate("catalog.variants_by_product", err)
	}
	defer rows.Close()

	var variants []domain.ProductVariant
	for rows.Next() {
		variant, err := scanVariant(rows)
		if err != nil {
			return nil, postgres.Translate("catalog.scan_variant", err)
		}
		variants = append(variants, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Translate("catalog.variants_by_product", err)
	}
	return variants, nil
}

func (r *catalogRepository) FindVariant(ctx context.Context, variantID uuid.UUID) (domain.ProductVariant, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM product_variants WHERE id = $1", variantColumns), variantID)
	variant, err := scanVariant(row)
	if err != nil {
		return domain.ProductVariant{}, postgres.Translate("catalog.find_variant", err)
	}
	return variant, nil
}

// DecrementStock performs the availability check and decrement as one
// conditional write; zero affected rows means insufficient stock (or an
// unknown variant) and nothing was mutated.
func (r *catalogRepository) DecrementStock(ctx context.Context, variantID uuid.UUID, quantity int) (bool, error) {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		`UPDATE product_variants
		 SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND stock_quantity >= $2`,
		variantID, quantity)
	if err != nil {
		return false, postgres.Translate("catalog.decrement_stock", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *catalogRepository) RestoreStock(ctx context.Context, variantID uuid.UUID, quantity int) error {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		`UPDATE product_variants
		 SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		 WHERE id = $1`,
		variantID, quantity)
	if err != nil {
		return postgres.Translate("catalog.restore_stock", err)
	}
	if tag.RowsAffected() == 0 {
		return postgres.NotFound("catalog.restore_stock")
	}
	return nil
}

func (r *catalogRepository) AdjustStock(ctx context.Context, variantID uuid.UUID, delta int) (domain.ProductVariant, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`UPDATE product_variants
		 SET stock_quantity = stock_quantity + $2, updated_at = NOW()
		 WHERE id = $1 AND stock_quantity + $2 >= 0
		 RETURNING %s`, variantColumns),
		variantID, delta)
	variant, err := scanVariant(row)
	if err != nil {
		return domain.ProductVariant{}, postgres.Translate("catalog.adjust_stock", err)
	}
	return variant, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.BasePrice, &p.Currency, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanVariant(row pgx.Row) (domain.ProductVariant, error) {
	var v domain.ProductVariant
	err := row.Scan(&v.ID, &v.ProductID, &v.SKU, &v.Color, &v.Size, &v.PriceModifier, &v.StockQuantity, &v.Active, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}
