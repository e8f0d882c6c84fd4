package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/JonMunkholm/inventario/internal/logging"
)

// Bulk edit validation errors.
var (
	ErrNoSelection    = errors.New("no products selected")
	ErrInvalidPercent = errors.New("invalid percent: must be greater than -100")
	ErrZeroDelta      = errors.New("invalid stock delta: must not be zero")
)

// NoteManualAdjustment is the history note used when none is given.
const NoteManualAdjustment = "Ajuste manual"

// BulkAdjustPrices scales the retail and wholesale prices of every selected
// product by percent. Either all products change or none do.
func (s *Service) BulkAdjustPrices(ctx context.Context, ids []string, percent float64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent <= -100 {
		return 0, fmt.Errorf("%w (got %v)", ErrInvalidPercent, percent)
	}

	n, err := s.catalog.AdjustPrices(ctx, ids, percent)
	if err != nil {
		logging.FromContext(ctx).Warn("bulk price change failed", "products", len(ids), "percent", percent, "error", err)
		return 0, err
	}

	logging.FromContext(ctx).Info("bulk price change",
		append([]any{"products", n, "percent", percent}, clientAttrs(ctx)...)...,
	)
	return n, nil
}

// BulkDelete removes the selected products together with their stock
// history. Either all products are removed or none are.
func (s *Service) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}

	n, err := s.catalog.DeleteProducts(ctx, ids)
	if err != nil {
		logging.FromContext(ctx).Warn("bulk delete failed", "products", len(ids), "error", err)
		return 0, err
	}

	logging.FromContext(ctx).Info("bulk delete",
		append([]any{"products", n}, clientAttrs(ctx)...)...,
	)
	return n, nil
}

// AdjustStock moves a product's stock by delta units and records the
// movement. Stock is clamped at zero.
func (s *Service) AdjustStock(ctx context.Context, productID string, delta int, notes string) (inventory.StockHistoryEntry, error) {
	if delta == 0 {
		return inventory.StockHistoryEntry{}, ErrZeroDelta
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		notes = NoteManualAdjustment
	}

	entry, err := s.catalog.AdjustStock(ctx, productID, delta, notes)
	if err != nil {
		return inventory.StockHistoryEntry{}, err
	}

	logging.FromContext(ctx).Info("stock adjusted",
		append([]any{
			"product_id", productID,
			"movement", entry.MovementType,
			"previous_stock", entry.PreviousStock,
			"new_stock", entry.NewStock,
		}, clientAttrs(ctx)...)...,
	)
	return entry, nil
}

// ListProducts returns the products matching filter.
func (s *Service) ListProducts(ctx context.Context, filter inventory.Filter) ([]inventory.Product, error) {
	return s.catalog.ListProducts(ctx, filter)
}

// StockHistory returns the most recent stock movements of a product.
func (s *Service) StockHistory(ctx context.Context, productID string, limit int) ([]inventory.StockHistoryEntry, error) {
	if _, err := s.catalog.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.history.ListStockHistory(ctx, productID, limit)
}
