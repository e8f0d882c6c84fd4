package core

import (
	"context"
	"time"

	"github.com/JonMunkholm/inventario/internal/inventory"
)

// Catalog is the product store the service reads and writes.
// Satisfied by *store.Store.
type Catalog interface {
	inventory.Lookup

	InsertProduct(ctx context.Context, p inventory.Product) (inventory.Product, error)
	UpdateProduct(ctx context.Context, id string, patch inventory.ProductPatch) error
	ListProducts(ctx context.Context, f inventory.Filter) ([]inventory.Product, error)

	AdjustPrices(ctx context.Context, ids []string, percent float64) (int64, error)
	DeleteProducts(ctx context.Context, ids []string) (int64, error)
	AdjustStock(ctx context.Context, productID string, delta int, notes string) (inventory.StockHistoryEntry, error)
}

// HistoryLog is the append-only stock history sink.
// Satisfied by *store.Store.
type HistoryLog interface {
	InsertStockHistory(ctx context.Context, e inventory.StockHistoryEntry) error
	ListStockHistory(ctx context.Context, productID string, limit int) ([]inventory.StockHistoryEntry, error)
}

// ImportResult is what an import reports back to the admin.
type ImportResult struct {
	ImportID string `json:"importId"`
	FileName string `json:"fileName"`
	Created  int    `json:"created"`
	Updated  int    `json:"updated"`

	// ErrorCount counts every skipped row; Errors lists only the first few.
	ErrorCount int      `json:"errorCount"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`

	// HistoryFailures counts stock history entries that could not be written.
	HistoryFailures int `json:"historyFailures,omitempty"`

	Summary    string        `json:"summary"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"durationMs"`
}

// PreviewResult is a dry run of an import: what every row would do.
type PreviewResult struct {
	FileName   string                `json:"fileName"`
	Operations []inventory.Operation `json:"operations"`
	Created    int                   `json:"created"`
	Updated    int                   `json:"updated"`
	Errors     []inventory.RowError  `json:"errors"`
	Warnings   []string              `json:"warnings,omitempty"`
	Summary    string                `json:"summary"`
}

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts "csv", "xlsx" or empty (csv).
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(s) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	default:
		return "", false
	}
}

// ContentType is the MIME type of an export in this format.
func (f ExportFormat) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Export is a rendered inventory export.
type Export struct {
	FileName string
	Format   ExportFormat
	Data     []byte
	Count    int
}
