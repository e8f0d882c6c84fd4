// Package inventory reconciles uploaded inventory spreadsheets against the
// product catalogue.
//
// Everything in this package is free of I/O: callers hand in the CSV text and
// a Lookup over existing products, and get back operations to execute plus a
// report. The same row planner backs both the live import (which executes
// each operation before planning the next row) and the dry-run Reconcile.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by a Lookup when no single product matches.
var ErrNotFound = errors.New("product not found")

// Stock movement types recorded in the stock history.
const (
	MovementEntry      = "entrada"
	MovementAdjustment = "ajuste"
	MovementExit       = "salida"
)

// Notes attached to stock history entries written by the importer.
const (
	NoteBulkUpdate   = "Actualización masiva desde CSV"
	NoteInitialStock = "Stock inicial desde CSV"
)

// Product is a catalogue record.
type Product struct {
	ID                string    `json:"id"`
	SKU               string    `json:"sku"`
	Name              string    `json:"name"`
	CategoryID        string    `json:"categoryId,omitempty"`
	CategoryName      string    `json:"categoryName,omitempty"`
	Stock             int       `json:"stock"`
	LowStockThreshold int       `json:"lowStockThreshold"`
	Price             float64   `json:"price"`
	WholesalePrice    float64   `json:"wholesalePrice"`
	Active            bool      `json:"active"`
	Sizes             []string  `json:"sizes"`
	Colors            []string  `json:"colors"`
	Images            []string  `json:"images"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// LowStock reports whether the product is at or below its alert threshold.
func (p Product) LowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Name              *string  `json:"name,omitempty"`
	CategoryID        *string  `json:"categoryId,omitempty"`
	Stock             *int     `json:"stock,omitempty"`
	LowStockThreshold *int     `json:"lowStockThreshold,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	WholesalePrice    *float64 `json:"wholesalePrice,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.CategoryID == nil && p.Stock == nil &&
		p.LowStockThreshold == nil && p.Price == nil && p.WholesalePrice == nil
}

// Apply returns a copy of prod with the patch applied.
func (p ProductPatch) Apply(prod Product) Product {
	if p.Name != nil {
		prod.Name = *p.Name
	}
	if p.CategoryID != nil {
		prod.CategoryID = *p.CategoryID
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	if p.LowStockThreshold != nil {
		prod.LowStockThreshold = *p.LowStockThreshold
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.WholesalePrice != nil {
		prod.WholesalePrice = *p.WholesalePrice
	}
	return prod
}

// StockHistoryEntry is one row of the append-only stock audit log.
type StockHistoryEntry struct {
	ID            string    `json:"id,omitempty"`
	ProductID     string    `json:"productId"`
	MovementType  string    `json:"movementType"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// OpKind distinguishes creates from updates.
type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
)

// Operation is one planned write produced from an input row.
type Operation struct {
	Kind OpKind `json:"kind"`
	Line int    `json:"line"`
	Key  string `json:"key,omitempty"`

	// ProductID is the update target. Empty for creates.
	ProductID string `json:"productId,omitempty"`

	// Product is the record to insert (OpCreate).
	Product *Product `json:"product,omitempty"`

	// Patch is the partial update (OpUpdate).
	Patch *ProductPatch `json:"patch,omitempty"`

	// History is written after the product write succeeds. For creates the
	// ProductID is filled in once the new record's id is known.
	History *StockHistoryEntry `json:"history,omitempty"`
}

// RowError describes why one input row was skipped.
type RowError struct {
	Line    int    `json:"line"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("Línea %d: %s", e.Line, e.Message)
}

// FileError aborts an import before any row is processed.
type FileError struct {
	Message string
	Err     error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *FileError) Unwrap() error { return e.Err }

// Lookup finds existing products. Both methods return ErrNotFound when zero
// or several products match.
type Lookup interface {
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByID(ctx context.Context, id string) (*Product, error)
}

// Report aggregates the outcome of a batch.
type Report struct {
	Created  int        `json:"created"`
	Updated  int        `json:"updated"`
	Errors   []RowError `json:"errors"`
	Warnings []string   `json:"warnings,omitempty"`
}

// AddError records a skipped row.
func (r *Report) AddError(e RowError) {
	r.Errors = append(r.Errors, e)
}

// Count records a successful operation.
func (r *Report) Count(kind OpKind) {
	switch kind {
	case OpCreate:
		r.Created++
	case OpUpdate:
		r.Updated++
	}
}

// Summary renders the one-line result shown to the admin.
func (r Report) Summary() string {
	return fmt.Sprintf("%d creados, %d actualizados, %d errores", r.Created, r.Updated, len(r.Errors))
}

// ErrorMessages renders every row error as "Línea N: message".
func (r Report) ErrorMessages() []string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// StockMove plans a manual stock movement of delta units on a product that
// currently holds previous units. Stock never drops below zero, so the
// recorded quantity is what was actually applied.
func StockMove(productID string, previous, delta int, notes string) StockHistoryEntry {
	next := previous + delta
	if next < 0 {
		next = 0
	}

	movement := MovementAdjustment
	switch {
	case delta > 0:
		movement = MovementEntry
	case delta < 0:
		movement = MovementExit
	}

	return StockHistoryEntry{
		ProductID:     productID,
		MovementType:  movement,
		Quantity:      next - previous,
		PreviousStock: previous,
		NewStock:      next,
		Notes:         notes,
	}
}
