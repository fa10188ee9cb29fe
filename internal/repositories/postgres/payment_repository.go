package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/zuricart/api/internal/domain"
	"github.com/zuricart/api/internal/platform/postgres"
)

type paymentRepository struct {
	pool *pgxpool.Pool
}

const paymentColumns = `id, order_id, reference, provider, amount, currency, status, provider_ref, paid_at, created_at, updated_at`

func (r *paymentRepository) Insert(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO payments (id, order_id, reference, provider, amount, currency, status, provider_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING %s`, paymentColumns),
		payment.ID, payment.OrderID, payment.Reference, payment.Provider,
		payment.Amount, payment.Currency, string(payment.Status), payment.ProviderRef)
	inserted, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, postgres.Translate("payments.insert", err)
	}
	return inserted, nil
}

func (r *paymentRepository) FindByID(ctx context.Context, paymentID uuid.UUID) (domain.Payment, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM payments WHERE id = $1", paymentColumns), paymentID)
	payment, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, postgres.Translate("payments.find_by_id", err)
	}
	return payment, nil
}

func (r *paymentRepository) FindByReference(ctx context.Context, reference string) (domain.Payment, error) {
	row := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM payments WHERE reference = $1", paymentColumns),
		strings.TrimSpace(reference))
	payment, err := scanPayment(row)
	if err != nil {
		return domain.Payment{}, postgres.Translate("payments.find_by_reference", err)
	}
	return payment, nil
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]domain.Payment, error) {
	rows, err := postgres.Querier(ctx, r.pool).Query(ctx,
		fmt.Sprintf("SELECT %s FROM payments WHERE order_id = $1 ORDER BY created_at DESC, id", paymentColumns),
		orderID)
	if err != nil {
		return nil, postgres.Translate("payments.list_by_order", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, postgres.Translate("payments.scan", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Translate("payments.list_by_order", err)
	}
	return payments, nil
}

func (r *paymentRepository) HasSuccessForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var exists bool
	err := postgres.Querier(ctx, r.pool).QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND status = $2)",
		orderID, string(domain.PaymentStatusSuccess)).Scan(&exists)
	if err != nil {
		return false, postgres.Translate("payments.has_success", err)
	}
	return exists, nil
}

func (r *paymentRepository) Settle(ctx context.Context, paymentID uuid.UUID, status domain.PaymentStatus, providerRef string, paidAt *time.Time) (bool, error) {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		`UPDATE payments
		 SET status = $2, provider_ref = COALESCE(NULLIF($3, ''), provider_ref), paid_at = $4, updated_at = NOW()
		 WHERE id = $1 AND status IN ($5, $6)`,
		paymentID, string(status), strings.TrimSpace(providerRef), paidAt,
		string(domain.PaymentStatusPending), string(domain.PaymentStatusFailed))
	if err != nil {
		return false, postgres.Translate("payments.settle", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *paymentRepository) MarkRefunded(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	tag, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3",
		paymentID, string(domain.PaymentStatusRefunded), string(domain.PaymentStatusSuccess))
	if err != nil {
		return false, postgres.Translate("payments.mark_refunded", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *paymentRepository) InsertEvent(ctx context.Context, event domain.PaymentEvent) error {
	_, err := postgres.Querier(ctx, r.pool).Exec(ctx,
		"INSERT INTO payment_events (id, payment_id, payload) VALUES ($1, $2, $3)",
		event.ID, event.PaymentID, event.Payload)
	return postgres.Translate("payments.insert_event", err)
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	var status string
	err := row.Scan(&p.ID, &p.OrderID, &p.Reference, &p.Provider, &p.Amount, &p.Currency,
		&status, &p.ProviderRef, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Payment{}, err
	}
	p.Status = domain.PaymentStatus(status)
	return p, nil
}
