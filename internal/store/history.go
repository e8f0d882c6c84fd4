package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultHistoryLimit caps ListStockHistory when no limit is given.
const DefaultHistoryLimit = 100

// InsertStockHistory appends one entry to the stock history log.
func (s *Store) InsertStockHistory(ctx context.Context, e inventory.StockHistoryEntry) error {
	return insertStockHistory(ctx, s.pool, e)
}

func insertStockHistory(ctx context.Context, db DBTX, e inventory.StockHistoryEntry) error {
	productID := ToPgUUID(e.ProductID)
	if !productID.Valid {
		return fmt.Errorf("insert stock history: invalid product id %q", e.ProductID)
	}

	_, err := db.Exec(ctx, `
		INSERT INTO stock_history (product_id, movement_type, quantity, previous_stock, new_stock, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		productID, e.MovementType, int32(e.Quantity), int32(e.PreviousStock), int32(e.NewStock), ToPgText(e.Notes),
	)
	if err != nil {
		return fmt.Errorf("insert stock history: %w", err)
	}
	return nil
}

// ListStockHistory returns a product's most recent movements, newest first.
func (s *Store) ListStockHistory(ctx context.Context, productID string, limit int) ([]inventory.StockHistoryEntry, error) {
	pgID := ToPgUUID(productID)
	if !pgID.Valid {
		return nil, inventory.ErrNotFound
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, movement_type, quantity, previous_stock, new_stock, notes, created_at
		FROM stock_history
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		pgID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.StockHistoryEntry, error) {
		var (
			e                       inventory.StockHistoryEntry
			id, product             pgtype.UUID
			qty, previous, newStock int32
			notes                   pgtype.Text
		)
		if err := row.Scan(&id, &product, &e.MovementType, &qty, &previous, &newStock, &notes, &e.CreatedAt); err != nil {
			return e, err
		}
		e.ID = PgUUIDToString(id)
		e.ProductID = PgUUIDToString(product)
		e.Quantity = int(qty)
		e.PreviousStock = int(previous)
		e.NewStock = int(newStock)
		e.Notes = notes.String
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}
	return entries, nil
}
