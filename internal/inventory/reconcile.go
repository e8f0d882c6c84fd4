package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/inventario/internal/csvtext"
	"github.com/google/uuid"
)

// Defaults applied to products created from a spreadsheet.
const (
	DefaultLowStockThreshold = 10
	DefaultWholesaleRatio    = 0.8
)

// Row error messages shown to the admin.
const (
	MsgMissingKeyAndName  = "Falta SKU/ID y Nombre"
	MsgCreateWithoutPrice = "No se puede crear producto sin precio"
	MsgCreateWithoutName  = "No se puede crear producto sin nombre"
)

// MsgCategoryNameIgnored is reported when a file carries categories by
// display name. Only category identifiers are imported.
const MsgCategoryNameIgnored = "La columna de categoría por nombre se ignoró; use el identificador de categoría"

// Options tunes product creation. Zero values fall back to the defaults.
type Options struct {
	LowStockThreshold int
	WholesaleRatio    float64
	Now               func() time.Time
	NewSKU            func(now time.Time) string
}

func (o Options) withDefaults() Options {
	if o.LowStockThreshold <= 0 {
		o.LowStockThreshold = DefaultLowStockThreshold
	}
	if o.WholesaleRatio <= 0 {
		o.WholesaleRatio = DefaultWholesaleRatio
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewSKU == nil {
		o.NewSKU = GenerateSKU
	}
	return o
}

// GenerateSKU returns a placeholder SKU from a millisecond timestamp and a
// random suffix, e.g. SKU-1760540000000-4F9A2.
func GenerateSKU(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:5])
	return fmt.Sprintf("SKU-%d-%s", now.UnixMilli(), suffix)
}

// Row is one data record positioned in the source file.
type Row struct {
	Line   int
	Fields []string
}

// File is a parsed upload: the resolved header and its data rows.
type File struct {
	Header   HeaderIndex
	Rows     []Row
	Warnings []string
}

// ParseFile tokenizes text and resolves its header. Blank records are
// dropped; a file needs a header and at least one data row.
func ParseFile(text string) (*File, error) {
	records, err := csvtext.SplitRecords(text)
	if err != nil {
		return nil, &FileError{Message: "El archivo CSV tiene comillas sin cerrar", Err: err}
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{Line: rec.Line, Fields: csvtext.ParseLine(rec.Text)})
	}
	return NewFile(rows)
}

// NewFile builds a File from already tokenized rows, the first non-blank one
// being the header. Spreadsheet imports enter here.
func NewFile(all []Row) (*File, error) {
	var rows []Row
	for _, r := range all {
		if blankRow(r.Fields) {
			continue
		}
		rows = append(rows, r)
	}

	if len(rows) < 2 {
		return nil, &FileError{Message: "El archivo CSV está vacío o no tiene filas de datos"}
	}

	header, err := BuildHeaderIndex(rows[0].Fields)
	if err != nil {
		return nil, err
	}

	f := &File{Header: header, Rows: rows[1:]}
	if header.Has(FieldCategoryName) && !header.Has(FieldCategoryID) {
		f.Warnings = append(f.Warnings, MsgCategoryNameIgnored)
	}
	return f, nil
}

// blankRow reports an empty line. A line of bare separators (",,") is not
// blank: it is a data row with every cell empty.
func blankRow(fields []string) bool {
	return len(fields) == 0 || (len(fields) == 1 && strings.TrimSpace(fields[0]) == "")
}

// CanonicalRow is a typed view of one data row. Optional fields are nil when
// the column is absent, empty or does not hold a valid non-negative value.
type CanonicalRow struct {
	Line    int
	Key     string
	KeyIsID bool
	Name    string

	CategoryID     *string
	Stock          *int
	Threshold      *int
	Price          *float64
	WholesalePrice *float64

	// CategoryNameIgnored is set when the row named a category by display name.
	CategoryNameIgnored bool
}

// ExtractRow reads a row through the header index. Short rows are padded
// with empty cells and surplus trailing cells are ignored.
func ExtractRow(row Row, idx HeaderIndex) CanonicalRow {
	fields := row.Fields
	if len(fields) < idx.Width() {
		padded := make([]string, idx.Width())
		copy(padded, fields)
		fields = padded
	}

	cell := func(f Field) (string, bool) {
		pos, ok := idx.Column(f)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(fields[pos]), true
	}

	out := CanonicalRow{Line: row.Line, KeyIsID: idx.UsingIDAsSKU}
	out.Key, _ = cell(idx.KeyField())
	out.Name, _ = cell(FieldName)

	if v, ok := cell(FieldCategoryID); ok && v != "" {
		out.CategoryID = &v
	}
	if v, ok := cell(FieldCategoryName); ok && v != "" {
		out.CategoryNameIgnored = true
	}
	if v, ok := cell(FieldStock); ok {
		out.Stock = parseCount(v)
	}
	if v, ok := cell(FieldThreshold); ok {
		out.Threshold = parseCount(v)
	}
	if v, ok := cell(FieldPrice); ok {
		out.Price = parseAmount(v)
	}
	if v, ok := cell(FieldWholesalePrice); ok {
		out.WholesalePrice = parseAmount(v)
	}

	return out
}

// parseCount accepts whole numbers ("12", "12.0") that fit a Postgres integer.
func parseCount(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f := parseFloat(s)
		if f == nil || *f != math.Trunc(*f) || *f < 0 || *f > math.MaxInt32 {
			return nil
		}
		n = int(*f)
	}
	if n < 0 || n > math.MaxInt32 {
		return nil
	}
	return &n
}

// parseAmount accepts non-negative decimals with either decimal separator.
func parseAmount(s string) *float64 {
	f := parseFloat(s)
	if f == nil || *f < 0 {
		return nil
	}
	return f
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// roundCents rounds to two decimals.
func roundCents(f float64) float64 {
	return math.Round(f*100) / 100
}

// patch collects every optional value present in the row.
func (r CanonicalRow) patch() ProductPatch {
	var p ProductPatch
	if r.Name != "" {
		name := r.Name
		p.Name = &name
	}
	p.CategoryID = r.CategoryID
	p.Stock = r.Stock
	p.LowStockThreshold = r.Threshold
	p.Price = r.Price
	p.WholesalePrice = r.WholesalePrice
	return p
}

// PlanRow decides what a row does given the matching existing product, or
// nil when none matched. It performs no I/O.
func PlanRow(row CanonicalRow, existing *Product, opts Options) (Operation, *RowError) {
	opts = opts.withDefaults()

	if existing != nil {
		patch := row.patch()
		op := Operation{
			Kind:      OpUpdate,
			Line:      row.Line,
			Key:       row.Key,
			ProductID: existing.ID,
			Patch:     &patch,
		}
		if patch.Stock != nil && *patch.Stock != existing.Stock {
			op.History = &StockHistoryEntry{
				ProductID:     existing.ID,
				MovementType:  MovementAdjustment,
				Quantity:      *patch.Stock - existing.Stock,
				PreviousStock: existing.Stock,
				NewStock:      *patch.Stock,
				Notes:         NoteBulkUpdate,
			}
		}
		return op, nil
	}

	if row.Name == "" {
		return Operation{}, &RowError{Line: row.Line, Key: row.Key, Message: MsgCreateWithoutName}
	}
	if row.Price == nil || *row.Price <= 0 {
		return Operation{}, &RowError{Line: row.Line, Key: row.Key, Message: MsgCreateWithoutPrice}
	}

	now := opts.Now()
	prod := Product{
		SKU:               row.Key,
		Name:              row.Name,
		Stock:             0,
		LowStockThreshold: opts.LowStockThreshold,
		Price:             *row.Price,
		WholesalePrice:    roundCents(*row.Price * opts.WholesaleRatio),
		Active:            true,
		Sizes:             []string{},
		Colors:            []string{},
		Images:            []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if row.KeyIsID || prod.SKU == "" {
		prod.SKU = opts.NewSKU(now)
	}
	if row.CategoryID != nil {
		prod.CategoryID = *row.CategoryID
	}
	if row.WholesalePrice != nil {
		prod.WholesalePrice = *row.WholesalePrice
	}
	if row.Stock != nil {
		prod.Stock = *row.Stock
	}
	if row.Threshold != nil {
		prod.LowStockThreshold = *row.Threshold
	}

	op := Operation{Kind: OpCreate, Line: row.Line, Key: row.Key, Product: &prod}
	if prod.Stock > 0 {
		op.History = &StockHistoryEntry{
			MovementType:  MovementEntry,
			Quantity:      prod.Stock,
			PreviousStock: 0,
			NewStock:      prod.Stock,
			Notes:         NoteInitialStock,
		}
	}
	return op, nil
}

// Find looks up the product a row refers to. An empty key never matches.
// ErrNotFound is translated to a nil product.
func Find(ctx context.Context, lookup Lookup, row CanonicalRow) (*Product, error) {
	if row.Key == "" {
		return nil, nil
	}

	var (
		p   *Product
		err error
	)
	if row.KeyIsID {
		p, err = lookup.FindByID(ctx, row.Key)
	} else {
		p, err = lookup.FindBySKU(ctx, row.Key)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Plan runs the full per-row decision: key check, lookup, PlanRow.
// Lookup failures come back as row errors carrying the underlying message.
func Plan(ctx context.Context, row CanonicalRow, lookup Lookup, opts Options) (Operation, *RowError) {
	if row.Key == "" && row.Name == "" {
		return Operation{}, &RowError{Line: row.Line, Message: MsgMissingKeyAndName}
	}

	existing, err := Find(ctx, lookup, row)
	if err != nil {
		return Operation{}, &RowError{Line: row.Line, Key: row.Key, Message: err.Error()}
	}

	return PlanRow(row, existing, opts)
}

// Reconcile plans every row of f in file order without writing anything.
// Each planned operation is folded into an overlay on top of lookup, so a
// later row for the same SKU sees the earlier create or update exactly as
// the live import would.
func Reconcile(ctx context.Context, f *File, lookup Lookup, opts Options) ([]Operation, Report) {
	overlay := newOverlay(lookup)
	report := Report{Warnings: append([]string(nil), f.Warnings...)}

	var ops []Operation
	for _, raw := range f.Rows {
		row := ExtractRow(raw, f.Header)

		op, rowErr := Plan(ctx, row, overlay, opts)
		if rowErr != nil {
			report.AddError(*rowErr)
			continue
		}

		overlay.apply(op)
		ops = append(ops, op)
		report.Count(op.Kind)
	}

	return ops, report
}
