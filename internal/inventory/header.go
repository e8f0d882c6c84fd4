package inventory

import (
	"fmt"
	"strings"
)

// Field is a canonical import column.
type Field int

const (
	FieldSKU Field = iota
	FieldID
	FieldName
	FieldCategoryID
	FieldCategoryName
	FieldStock
	FieldThreshold
	FieldPrice
	FieldWholesalePrice
)

var fieldNames = map[Field]string{
	FieldSKU:            "sku",
	FieldID:             "id",
	FieldName:           "name",
	FieldCategoryID:     "category_id",
	FieldCategoryName:   "category_name",
	FieldStock:          "stock",
	FieldThreshold:      "low_stock_threshold",
	FieldPrice:          "price",
	FieldWholesalePrice: "wholesale_price",
}

func (f Field) String() string {
	if n, ok := fieldNames[f]; ok {
		return n
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// Aliases lists the accepted header spellings per field, Spanish and English.
// Matching is case and whitespace insensitive but not accent insensitive, so
// accented and plain spellings are both listed.
var Aliases = map[Field][]string{
	FieldSKU:            {"sku", "código", "codigo", "código sku", "codigo sku", "code"},
	FieldID:             {"id"},
	FieldName:           {"nombre", "producto", "name", "nombre del producto", "product"},
	FieldCategoryID:     {"category_id", "categoria_id", "categoría_id", "category id", "id categoría", "id categoria"},
	FieldCategoryName:   {"categoría", "categoria", "category"},
	FieldStock:          {"stock", "stock actual", "cantidad", "existencias", "quantity"},
	FieldThreshold:      {"umbral bajo", "umbral", "low_stock_threshold", "low stock threshold", "stock mínimo", "stock minimo"},
	FieldPrice:          {"precio", "price", "precio unitario", "precio de referencia"},
	FieldWholesalePrice: {"precio mayorista", "wholesale_price", "wholesale price", "precio por mayor"},
}

// maxListedHeaders bounds the header list quoted in a file-level error.
const maxListedHeaders = 10

// NormalizeHeader trims, lowercases and collapses runs of whitespace.
func NormalizeHeader(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ResolveColumn returns the position of the first header cell matching any
// candidate, or -1.
func ResolveColumn(header []string, candidates []string) int {
	want := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		want[NormalizeHeader(c)] = true
	}
	for i, h := range header {
		if want[NormalizeHeader(h)] {
			return i
		}
	}
	return -1
}

// HeaderIndex maps canonical fields to column positions. It is built once
// per file and never modified.
type HeaderIndex struct {
	cols    map[Field]int
	headers []string

	// UsingIDAsSKU is set when no SKU column exists and the id column is
	// used as the row key instead. Rows are then matched by primary key.
	UsingIDAsSKU bool
}

// BuildHeaderIndex resolves every canonical field in header. It fails when
// neither a key column (SKU or id) nor a name column is present.
func BuildHeaderIndex(header []string) (HeaderIndex, error) {
	idx := HeaderIndex{
		cols:    make(map[Field]int),
		headers: append([]string(nil), header...),
	}

	for field, aliases := range Aliases {
		if pos := ResolveColumn(header, aliases); pos >= 0 {
			idx.cols[field] = pos
		}
	}

	_, hasSKU := idx.cols[FieldSKU]
	_, hasID := idx.cols[FieldID]
	_, hasName := idx.cols[FieldName]

	if !hasSKU && hasID {
		idx.UsingIDAsSKU = true
	}

	if !hasSKU && !hasID && !hasName {
		listed := header
		if len(listed) > maxListedHeaders {
			listed = listed[:maxListedHeaders]
		}
		return HeaderIndex{}, &FileError{
			Message: fmt.Sprintf(
				"No se encontraron columnas de SKU o Nombre. Columnas detectadas: %s",
				strings.Join(listed, ", "),
			),
		}
	}

	return idx, nil
}

// Column returns the position of field, if present.
func (h HeaderIndex) Column(field Field) (int, bool) {
	pos, ok := h.cols[field]
	return pos, ok
}

// Has reports whether field is present.
func (h HeaderIndex) Has(field Field) bool {
	_, ok := h.cols[field]
	return ok
}

// KeyField is the column rows are matched on: FieldSKU, or FieldID when
// the id fallback is active.
func (h HeaderIndex) KeyField() Field {
	if h.UsingIDAsSKU {
		return FieldID
	}
	return FieldSKU
}

// Width is the number of header columns.
func (h HeaderIndex) Width() int {
	return len(h.headers)
}

// Headers returns a copy of the raw header row.
func (h HeaderIndex) Headers() []string {
	return append([]string(nil), h.headers...)
}
