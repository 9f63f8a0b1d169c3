package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/foodshop/internal/domain"
)

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository создаёт PostgreSQL-реализацию PaymentRepository.
func NewPaymentRepository(store *Store) domain.PaymentRepository {
	return &paymentRepository{db: store.DB()}
}

const paymentColumns = `id, order_id, method, amount_minor, status, transaction_id, reference_number, card_last_four, notes, version, created_at, updated_at`

func (r *paymentRepository) Create(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		payment.ID, payment.OrderID, string(payment.Method), payment.AmountMinor,
		string(payment.Status), payment.TransactionID, payment.ReferenceNumber,
		payment.CardLastFour, payment.Notes, payment.Version,
		payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		if uniqueViolationConstraint(err) == "payments_transaction_id_key" {
			return domain.ErrDuplicateTransactionID
		}
		if isUniqueViolation(err) {
			return domain.ErrVersionConflict
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) Get(id string) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	payment, err := r.scanPayment(r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Payment{}, domain.ErrPaymentNotFound
		}
		return domain.Payment{}, fmt.Errorf("select payment: %w", err)
	}
	return payment, nil
}

func (r *paymentRepository) List(skip, limit int) ([]domain.Payment, error) {
	return r.listWhere("", nil, skip, limit)
}

func (r *paymentRepository) ListByOrder(orderID string) ([]domain.Payment, error) {
	return r.listWhere("WHERE order_id = $1", []interface{}{orderID}, 0, 0)
}

func (r *paymentRepository) ListByStatus(status domain.PaymentStatus, skip, limit int) ([]domain.Payment, error) {
	return r.listWhere("WHERE status = $1", []interface{}{string(status)}, skip, limit)
}

func (r *paymentRepository) ListByMethod(method domain.PaymentMethod, skip, limit int) ([]domain.Payment, error) {
	return r.listWhere("WHERE method = $1", []interface{}{string(method)}, skip, limit)
}

func (r *paymentRepository) listWhere(where string, args []interface{}, skip, limit int) ([]domain.Payment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `SELECT ` + paymentColumns + ` FROM payments ` + where + ` ORDER BY created_at ASC, id ASC`
	query, args = appendPagination(query, args, skip, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		payment, err := r.scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}

	return payments, nil
}

// Save обновляет платёж с optimistic lock по version.
func (r *paymentRepository) Save(payment domain.Payment) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET method = $1,
		    amount_minor = $2,
		    status = $3,
		    transaction_id = $4,
		    card_last_four = $5,
		    notes = $6,
		    version = version + 1,
		    updated_at = $7
		WHERE id = $8
		  AND version = $9
	`,
		string(payment.Method), payment.AmountMinor, string(payment.Status),
		payment.TransactionID, payment.CardLastFour, payment.Notes,
		payment.UpdatedAt, payment.ID, payment.Version,
	)
	if err != nil {
		if uniqueViolationConstraint(err) == "payments_transaction_id_key" {
			return domain.ErrDuplicateTransactionID
		}
		return fmt.Errorf("update payment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.paymentExists(ctx, payment.ID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrPaymentNotFound
		}
		return domain.ErrVersionConflict
	}

	return nil
}

func (r *paymentRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *paymentRepository) scanPayment(row rowScanner) (domain.Payment, error) {
	var payment domain.Payment
	var method, status string
	if err := row.Scan(
		&payment.ID, &payment.OrderID, &method, &payment.AmountMinor, &status,
		&payment.TransactionID, &payment.ReferenceNumber, &payment.CardLastFour,
		&payment.Notes, &payment.Version, &payment.CreatedAt, &payment.UpdatedAt,
	); err != nil {
		return domain.Payment{}, err
	}
	payment.Method = domain.PaymentMethod(method)
	payment.Status = domain.PaymentStatus(status)
	return payment, nil
}

func (r *paymentRepository) paymentExists(ctx context.Context, id string) (bool, error) {
	var found string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM payments WHERE id = $1`, id).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check payment exists: %w", err)
}

var _ domain.PaymentRepository = (*paymentRepository)(nil)
