package domain

import "github.com/shopspring/decimal"

// Product is owned by the catalog; referenced read-only here. Stock only
// moves through the inventory ledger's Reserve/Restore.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
	Stock int
}

// CartLine is one (product, quantity) pair of a user's pre-purchase
// selection. The cart itself is owned and mutated elsewhere; checkout only
// reads and clears it.
type CartLine struct {
	ProductID string
	Quantity  int
}
