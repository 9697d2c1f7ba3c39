package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

// Create writes the order row and its items in one transaction; the items
// never exist without the order.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (id,user_id,status,total,created_at,updated_at)
VALUES (?,?,?,?,?,?)
`, o.ID, o.UserID, string(o.Status), o.Total, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (order_id,product_id,quantity,unit_price)
VALUES (?,?,?,?)
`, o.ID, it.ProductID, it.Quantity, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order item %s: %w", it.ProductID, err)
		}
	}

	return tx.Commit()
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,status,total,created_at,updated_at,
       pay_order_ref,pay_auth_code,pay_response_code,pay_card_tail,pay_card_type,pay_installments,paid_at
FROM orders WHERE id=?`, id)

	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return r.list(ctx, `
SELECT id,user_id,status,total,created_at,updated_at,
       pay_order_ref,pay_auth_code,pay_response_code,pay_card_tail,pay_card_type,pay_installments,paid_at
FROM orders WHERE user_id=? ORDER BY created_at DESC`, userID)
}

func (r *MySQLOrderRepo) ListByStatus(ctx context.Context, st domain.Status) ([]*domain.Order, error) {
	return r.list(ctx, `
SELECT id,user_id,status,total,created_at,updated_at,
       pay_order_ref,pay_auth_code,pay_response_code,pay_card_tail,pay_card_type,pay_installments,paid_at
FROM orders WHERE status=? ORDER BY created_at DESC`, string(st))
}

// UpdateIf persists status and payment fields, guarded by the status the
// caller read: rows match only while the stored status still equals from.
// Zero rows means another transition won the race (or the order is gone);
// the caller decides which. Items are immutable after creation and are
// deliberately not touched here.
func (r *MySQLOrderRepo) UpdateIf(ctx context.Context, o *domain.Order, from domain.Status) (bool, error) {
	var ref, auth, resp, tail, card sql.NullString
	var installments sql.NullInt64
	var paidAt sql.NullTime
	if p := o.Payment; p != nil {
		ref = sql.NullString{String: p.OrderRef, Valid: true}
		auth = sql.NullString{String: p.AuthCode, Valid: true}
		resp = sql.NullString{String: p.ResponseCode, Valid: true}
		tail = sql.NullString{String: p.CardTail, Valid: true}
		card = sql.NullString{String: p.CardType, Valid: true}
		installments = sql.NullInt64{Int64: int64(p.Installments), Valid: true}
		paidAt = sql.NullTime{Time: p.PaidAt, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status=?, updated_at=?,
    pay_order_ref=?, pay_auth_code=?, pay_response_code=?, pay_card_tail=?, pay_card_type=?, pay_installments=?, paid_at=?
WHERE id=? AND status=?`,
		string(o.Status), o.UpdatedAt, ref, auth, resp, tail, card, installments, paidAt, o.ID, string(from))
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLOrderRepo) list(ctx context.Context, query string, arg any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id,quantity,unit_price FROM order_items WHERE order_id=? ORDER BY product_id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var status string
	var total decimal.Decimal
	var ref, auth, resp, tail, card sql.NullString
	var installments sql.NullInt64
	var paidAt sql.NullTime

	err := row.Scan(&o.ID, &o.UserID, &status, &total, &o.CreatedAt, &o.UpdatedAt,
		&ref, &auth, &resp, &tail, &card, &installments, &paidAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	o.Status = domain.Status(status)
	o.Total = total
	if ref.Valid {
		o.Payment = &domain.PaymentRecord{
			OrderRef:     ref.String,
			AuthCode:     auth.String,
			ResponseCode: resp.String,
			CardTail:     tail.String,
			CardType:     card.String,
			Installments: int(installments.Int64),
			PaidAt:       paidAt.Time,
		}
	}
	return &o, nil
}

var _ usecase.Orders = (*MySQLOrderRepo)(nil)
