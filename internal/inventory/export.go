package inventory

import "github.com/JonMunkholm/inventario/internal/csvtext"

// ExportHeader is the fixed column order of inventory exports. Every header
// here is also an import alias, so an edited export imports cleanly.
var ExportHeader = []string{
	"SKU",
	"Nombre",
	"Categoría",
	"Stock Actual",
	"Umbral Bajo",
	"Precio",
	"Precio Mayorista",
}

// ExportRow snapshots one product in ExportHeader order.
func ExportRow(p Product) []csvtext.Value {
	var category csvtext.Value = csvtext.Null{}
	if p.CategoryName != "" {
		category = csvtext.String(p.CategoryName)
	}

	return []csvtext.Value{
		csvtext.String(p.SKU),
		csvtext.String(p.Name),
		category,
		csvtext.Number(float64(p.Stock)),
		csvtext.Number(float64(p.LowStockThreshold)),
		csvtext.Number(p.Price),
		csvtext.Number(p.WholesalePrice),
	}
}

// ExportRows snapshots products in order.
func ExportRows(products []Product) [][]csvtext.Value {
	rows := make([][]csvtext.Value, len(products))
	for i, p := range products {
		rows[i] = ExportRow(p)
	}
	return rows
}

// ExportCSV renders products as a BOM-prefixed, CRLF-terminated CSV.
func ExportCSV(products []Product) string {
	return csvtext.Encode(ExportHeader, ExportRows(products))
}
