package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	domain "github.com/francoabl/HuertoHogar/internal/entity"
	"github.com/francoabl/HuertoHogar/internal/usecase"
)

// MySQLInventory is the authoritative stock ledger. Reserve locks every
// product row, checks the whole batch, then applies it inside one
// transaction, so two racing checkouts can never both pass the check and
// drive stock negative.
type MySQLInventory struct{ db *sql.DB }

func NewMySQLInventory(db *sql.DB) *MySQLInventory { return &MySQLInventory{db: db} }

func (r *MySQLInventory) Reserve(ctx context.Context, lines []domain.CartLine) error {
	if len(lines) == 0 {
		return nil
	}

	// Fixed order avoids lock cycles between concurrent batches.
	sorted := append([]domain.CartLine(nil), lines...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// First pass: lock each row and check availability while the locks pin
	// the values, so the shortage list reflects exactly the stock this
	// reservation saw and a concurrent restock cannot hollow it out.
	var shortages []domain.Shortage
	for _, l := range sorted {
		var available int
		err := tx.QueryRowContext(ctx, `
SELECT stock FROM products WHERE id = ? FOR UPDATE`, l.ProductID).Scan(&available)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %s: %w", l.ProductID, domain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if available < l.Quantity {
			shortages = append(shortages, domain.Shortage{
				ProductID: l.ProductID,
				Requested: l.Quantity,
				Available: available,
			})
		}
	}
	if len(shortages) > 0 {
		return &domain.InsufficientStockError{Shortages: shortages}
	}

	// Second pass: apply. Every row is already locked and checked.
	for _, l := range sorted {
		if _, err := tx.ExecContext(ctx, `
UPDATE products SET stock = stock - ? WHERE id = ?`, l.Quantity, l.ProductID); err != nil {
			return fmt.Errorf("reserve %s: %w", l.ProductID, err)
		}
	}
	return tx.Commit()
}

func (r *MySQLInventory) Restore(ctx context.Context, lines []domain.CartLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, l := range lines {
		res, err := tx.ExecContext(ctx, `
UPDATE products SET stock = stock + ? WHERE id = ?`, l.Quantity, l.ProductID)
		if err != nil {
			return fmt.Errorf("restore %s: %w", l.ProductID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("product %s: %w", l.ProductID, domain.ErrNotFound)
		}
	}
	return tx.Commit()
}

// PriceAndStock serves the catalog port from the same products table.
func (r *MySQLInventory) PriceAndStock(ctx context.Context, productID string) (decimal.Decimal, int, error) {
	var price decimal.Decimal
	var stock int
	err := r.db.QueryRowContext(ctx, `SELECT price, stock FROM products WHERE id = ?`, productID).Scan(&price, &stock)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, 0, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	if err != nil {
		return decimal.Zero, 0, err
	}
	return price, stock, nil
}

var (
	_ usecase.Ledger  = (*MySQLInventory)(nil)
	_ usecase.Catalog = (*MySQLInventory)(nil)
)
