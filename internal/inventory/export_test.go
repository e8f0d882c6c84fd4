package inventory

import (
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/inventario/internal/csvtext"
)

func TestExportCSV_HeaderAndFraming(t *testing.T) {
	out := ExportCSV(nil)

	want := csvtext.BOM + "SKU,Nombre,Categoría,Stock Actual,Umbral Bajo,Precio,Precio Mayorista"
	if out != want {
		t.Errorf("ExportCSV(nil) = %q, want %q", out, want)
	}
}

func TestExportRow(t *testing.T) {
	p := Product{
		SKU:               "BOD-01",
		Name:              "Body manga larga, algodón",
		CategoryName:      "Bodies",
		Stock:             12,
		LowStockThreshold: 5,
		Price:             1500.5,
		WholesalePrice:    1200,
	}

	got := csvtext.WriteLine(ExportRow(p))
	want := `BOD-01,"Body manga larga, algodón",Bodies,12,5,1500.5,1200`
	if got != want {
		t.Errorf("WriteLine(ExportRow()) = %q, want %q", got, want)
	}

	p.CategoryName = ""
	if cell := ExportRow(p)[2]; csvtext.Text(cell) != "" {
		t.Errorf("missing category should export empty, got %q", csvtext.Text(cell))
	}
}

func TestExportCSV_ReimportUpdatesInPlace(t *testing.T) {
	products := []Product{
		{ID: "p-1", SKU: "BOD-01", Name: "Body \"Osito\"", CategoryName: "Bodies", Stock: 12, LowStockThreshold: 5, Price: 1500, WholesalePrice: 1200},
		{ID: "p-2", SKU: "ENT-02", Name: "Enterito\nplush", Stock: 0, LowStockThreshold: 10, Price: 2300.75, WholesalePrice: 1840.6},
	}

	f, err := ParseFile(ExportCSV(products))
	if err != nil {
		t.Fatalf("ParseFile(ExportCSV()) error = %v", err)
	}

	ops, report := Reconcile(context.Background(), f, NewSnapshot(products), Options{})
	if report.Created != 0 || report.Updated != 2 || len(report.Errors) != 0 {
		t.Fatalf("report = %+v", report)
	}

	for i, op := range ops {
		want := products[i]
		if op.ProductID != want.ID {
			t.Errorf("row %d matched %q, want %q", i, op.ProductID, want.ID)
		}
		if op.History != nil {
			t.Errorf("row %d: unchanged stock wrote history", i)
		}
		got := op.Patch.Apply(want)
		if got.Name != want.Name || got.Stock != want.Stock || got.Price != want.Price ||
			got.WholesalePrice != want.WholesalePrice || got.LowStockThreshold != want.LowStockThreshold {
			t.Errorf("row %d round trip = %+v, want %+v", i, got, want)
		}
	}

	if len(report.Warnings) != 1 || !strings.Contains(report.Warnings[0], "categoría") {
		t.Errorf("export carries category names, expected the ignore warning: %q", report.Warnings)
	}
}

func TestFilter(t *testing.T) {
	products := []Product{
		{ID: "1", SKU: "BOD-01", Name: "Body", CategoryID: "c1", Stock: 2, LowStockThreshold: 5, Active: true},
		{ID: "2", SKU: "ENT-02", Name: "Enterito", CategoryID: "c2", Stock: 50, LowStockThreshold: 5, Active: true},
		{ID: "3", SKU: "MED-03", Name: "Medias", CategoryID: "c1", Stock: 50, LowStockThreshold: 5, Active: false},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero value", Filter{}, []string{"1", "2", "3"}},
		{"category", Filter{CategoryID: "c1"}, []string{"1", "3"}},
		{"low stock", Filter{LowStock: true}, []string{"1"}},
		{"active only", Filter{ActiveOnly: true}, []string{"1", "2"}},
		{"search by name", Filter{Search: "enter"}, []string{"2"}},
		{"search by sku", Filter{Search: "med-"}, []string{"3"}},
		{"ids", Filter{IDs: []string{"3", "1"}}, []string{"1", "3"}},
		{"combined", Filter{CategoryID: "c1", ActiveOnly: true}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(products)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d products, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p.ID != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, p.ID, tt.want[i])
				}
			}
		})
	}
}

func TestStockMove(t *testing.T) {
	tests := []struct {
		name              string
		previous, delta   int
		wantMovement      string
		wantQty, wantNext int
	}{
		{"entry", 5, 10, MovementEntry, 10, 15},
		{"exit", 5, -3, MovementExit, -3, 2},
		{"exit clamps at zero", 5, -9, MovementExit, -5, 0},
		{"zero delta", 5, 0, MovementAdjustment, 0, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := StockMove("p-1", tt.previous, tt.delta, "venta mostrador")
			if e.MovementType != tt.wantMovement || e.Quantity != tt.wantQty || e.NewStock != tt.wantNext {
				t.Errorf("StockMove() = %+v", e)
			}
			if e.PreviousStock != tt.previous || e.ProductID != "p-1" || e.Notes != "venta mostrador" {
				t.Errorf("StockMove() = %+v", e)
			}
		})
	}
}
