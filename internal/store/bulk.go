package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/jackc/pgx/v5"
)

// ErrNoProducts is returned when a bulk action is called without ids.
var ErrNoProducts = errors.New("no products selected")

// AdjustPrices scales price and wholesale price of every listed product by
// (1 + percent/100), rounded to cents. Either all products are updated or,
// if any id is unknown, none are.
func (s *Store) AdjustPrices(ctx context.Context, ids []string, percent float64) (int64, error) {
	pgIDs, err := uuidList(ids)
	if err != nil {
		return 0, err
	}
	if len(pgIDs) == 0 {
		return 0, ErrNoProducts
	}

	factor := 1 + percent/100

	var affected int64
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET price = ROUND(price * $1::numeric, 2),
			    wholesale_price = ROUND(wholesale_price * $1::numeric, 2),
			    updated_at = now()
			WHERE id = ANY($2)`,
			factor, pgIDs,
		)
		if err != nil {
			return fmt.Errorf("adjust prices: %w", err)
		}
		affected = tag.RowsAffected()
		return requireAll(affected, len(pgIDs))
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// DeleteProducts removes every listed product and its stock history. Either
// all products are deleted or, if any id is unknown, none are.
func (s *Store) DeleteProducts(ctx context.Context, ids []string) (int64, error) {
	pgIDs, err := uuidList(ids)
	if err != nil {
		return 0, err
	}
	if len(pgIDs) == 0 {
		return 0, ErrNoProducts
	}

	var affected int64
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = ANY($1)`, pgIDs)
		if err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		affected = tag.RowsAffected()
		return requireAll(affected, len(pgIDs))
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// AdjustStock moves a product's stock by delta and records the movement in
// the same transaction. Stock is clamped at zero.
func (s *Store) AdjustStock(ctx context.Context, productID string, delta int, notes string) (inventory.StockHistoryEntry, error) {
	pgID := ToPgUUID(productID)
	if !pgID.Valid {
		return inventory.StockHistoryEntry{}, inventory.ErrNotFound
	}

	var entry inventory.StockHistoryEntry
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var current int32
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, pgID).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock product stock: %w", err)
		}

		entry = inventory.StockMove(productID, int(current), delta, notes)

		_, err = tx.Exec(ctx,
			`UPDATE products SET stock = $1, updated_at = now() WHERE id = $2`,
			int32(entry.NewStock), pgID,
		)
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		return insertStockHistory(ctx, tx, entry)
	})
	if err != nil {
		return inventory.StockHistoryEntry{}, err
	}
	return entry, nil
}

// requireAll fails the transaction when fewer rows were touched than asked.
func requireAll(affected int64, want int) error {
	if affected != int64(want) {
		return fmt.Errorf("%d of %d products not found: %w", int64(want)-affected, want, inventory.ErrNotFound)
	}
	return nil
}
