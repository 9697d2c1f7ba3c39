package repo

import (
	"context"
	"database/sql"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

// MySQLCart reads the cart the cart component maintains. Checkout only
// consumes lines and clears them; it never adds or edits them.
type MySQLCart struct{ db *sql.DB }

func NewMySQLCart(db *sql.DB) *MySQLCart { return &MySQLCart{db: db} }

func (r *MySQLCart) Lines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id, quantity FROM cart_items WHERE user_id = ? ORDER BY product_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ProductID, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *MySQLCart) Clear(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}

var _ usecase.CartReader = (*MySQLCart)(nil)
