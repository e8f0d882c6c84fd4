package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/inventario/internal/config"
	"github.com/JonMunkholm/inventario/internal/csvtext"
	"github.com/JonMunkholm/inventario/internal/inventory"
)

// ----------------------------------------------------------------------------
// In-memory catalogue
// ----------------------------------------------------------------------------

// memCatalog implements Catalog and HistoryLog over slices.
type memCatalog struct {
	mu       sync.Mutex
	products []inventory.Product
	history  []inventory.StockHistoryEntry
	nextID   int

	failInsertSKU string
	failHistory   bool
}

func newMemCatalog(products ...inventory.Product) *memCatalog {
	c := &memCatalog{}
	for _, p := range products {
		if p.ID == "" {
			p.ID = c.newID()
		}
		c.products = append(c.products, p)
	}
	return c
}

func (c *memCatalog) newID() string {
	c.nextID++
	return fmt.Sprintf("p-%d", c.nextID)
}

func (c *memCatalog) find(match func(inventory.Product) bool) (*inventory.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var found *inventory.Product
	for i := range c.products {
		if match(c.products[i]) {
			if found != nil {
				return nil, inventory.ErrNotFound
			}
			p := c.products[i]
			found = &p
		}
	}
	if found == nil {
		return nil, inventory.ErrNotFound
	}
	return found, nil
}

func (c *memCatalog) FindBySKU(_ context.Context, sku string) (*inventory.Product, error) {
	return c.find(func(p inventory.Product) bool { return p.SKU == sku })
}

func (c *memCatalog) FindByID(_ context.Context, id string) (*inventory.Product, error) {
	return c.find(func(p inventory.Product) bool { return p.ID == id })
}

func (c *memCatalog) InsertProduct(_ context.Context, p inventory.Product) (inventory.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.SKU == c.failInsertSKU {
		return inventory.Product{}, errors.New("insert product: connection reset by peer")
	}
	p.ID = c.newID()
	c.products = append(c.products, p)
	return p, nil
}

func (c *memCatalog) UpdateProduct(_ context.Context, id string, patch inventory.ProductPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.products {
		if c.products[i].ID == id {
			c.products[i] = patch.Apply(c.products[i])
			return nil
		}
	}
	return inventory.ErrNotFound
}

func (c *memCatalog) ListProducts(_ context.Context, f inventory.Filter) ([]inventory.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return f.Apply(c.products), nil
}

func (c *memCatalog) indexes(ids []string) ([]int, error) {
	var idx []int
	for _, id := range ids {
		found := false
		for i := range c.products {
			if c.products[i].ID == id {
				idx = append(idx, i)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", id, inventory.ErrNotFound)
		}
	}
	return idx, nil
}

func (c *memCatalog) AdjustPrices(_ context.Context, ids []string, percent float64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, err := c.indexes(ids)
	if err != nil {
		return 0, err
	}
	for _, i := range idx {
		c.products[i].Price = math.Round(c.products[i].Price*(1+percent/100)*100) / 100
		c.products[i].WholesalePrice = math.Round(c.products[i].WholesalePrice*(1+percent/100)*100) / 100
	}
	return int64(len(idx)), nil
}

func (c *memCatalog) DeleteProducts(_ context.Context, ids []string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.indexes(ids); err != nil {
		return 0, err
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := c.products[:0]
	for _, p := range c.products {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	c.products = kept
	return int64(len(drop)), nil
}

func (c *memCatalog) AdjustStock(_ context.Context, productID string, delta int, notes string) (inventory.StockHistoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, err := c.indexes([]string{productID})
	if err != nil {
		return inventory.StockHistoryEntry{}, err
	}
	p := &c.products[idx[0]]
	entry := inventory.StockMove(p.ID, p.Stock, delta, notes)
	p.Stock = entry.NewStock
	c.history = append(c.history, entry)
	return entry, nil
}

func (c *memCatalog) InsertStockHistory(_ context.Context, e inventory.StockHistoryEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failHistory {
		return errors.New("insert stock history: connection reset by peer")
	}
	c.history = append(c.history, e)
	return nil
}

func (c *memCatalog) ListStockHistory(_ context.Context, productID string, limit int) ([]inventory.StockHistoryEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []inventory.StockHistoryEntry
	for i := len(c.history) - 1; i >= 0 && len(out) < limit; i-- {
		if c.history[i].ProductID == productID {
			out = append(out, c.history[i])
		}
	}
	return out, nil
}

func (c *memCatalog) product(t *testing.T, sku string) inventory.Product {
	t.Helper()
	p, err := c.FindBySKU(context.Background(), sku)
	if err != nil {
		t.Fatalf("product %q: %v", sku, err)
	}
	return *p
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

var testNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		MaxFileSize:       1 << 20,
		MaxConcurrent:     2,
		MaxWaitTime:       time.Second,
		Timeout:           time.Minute,
		MaxReportedErrors: 5,
		DefaultThreshold:  10,
		WholesaleRatio:    0.8,
	}
}

func newTestService(t *testing.T, catalog *memCatalog, mutate ...func(*config.ImportConfig)) *Service {
	t.Helper()
	cfg := testImportConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	svc, err := NewService(catalog, catalog, cfg)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	svc.now = func() time.Time { return testNow }
	svc.newSKU = func(time.Time) string { return "SKU-GEN" }
	return svc
}

func seedProduct(sku, name string, stock int, price float64) inventory.Product {
	return inventory.Product{
		SKU:               sku,
		Name:              name,
		Stock:             stock,
		LowStockThreshold: 10,
		Price:             price,
		WholesalePrice:    price * 0.8,
		Active:            true,
	}
}

func runImport(t *testing.T, svc *Service, name, text string) *ImportResult {
	t.Helper()
	res, err := svc.ImportInventory(context.Background(), name, strings.NewReader(text))
	if err != nil {
		t.Fatalf("ImportInventory() error = %v", err)
	}
	return res
}

// ----------------------------------------------------------------------------
// Service Construction
// ----------------------------------------------------------------------------

func TestNewService_RequiresStores(t *testing.T) {
	if _, err := NewService(nil, newMemCatalog(), testImportConfig()); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("NewService(nil catalog) error = %v, want ErrNoCatalog", err)
	}
	if _, err := NewService(newMemCatalog(), nil, testImportConfig()); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("NewService(nil history) error = %v, want ErrNoCatalog", err)
	}
}

func TestService_OptionsFromConfig(t *testing.T) {
	svc := newTestService(t, newMemCatalog(), func(c *config.ImportConfig) {
		c.DefaultThreshold = 4
		c.WholesaleRatio = 0.5
	})

	opts := svc.options()
	if opts.LowStockThreshold != 4 || opts.WholesaleRatio != 0.5 {
		t.Errorf("options() = %+v, want threshold 4 ratio 0.5", opts)
	}
	if !opts.Now().Equal(testNow) {
		t.Errorf("options().Now() = %v, want %v", opts.Now(), testNow)
	}
}

// ----------------------------------------------------------------------------
// Import Tests
// ----------------------------------------------------------------------------

func TestImportInventory_CreatesAndUpdates(t *testing.T) {
	catalog := newMemCatalog(seedProduct("A1", "Body manga larga", 10, 1500))
	svc := newTestService(t, catalog)

	res := runImport(t, svc, "stock.csv", "SKU,Nombre,Stock,Precio\nA1,,25,\nB2,Remera rayada,5,1000\n")

	if res.Created != 1 || res.Updated != 1 || res.ErrorCount != 0 {
		t.Fatalf("result = %+v, want 1 created 1 updated", res)
	}
	if res.Summary != "1 creados, 1 actualizados, 0 errores" {
		t.Errorf("Summary = %q", res.Summary)
	}
	if res.ImportID == "" {
		t.Error("ImportID is empty")
	}

	a1 := catalog.product(t, "A1")
	if a1.Stock != 25 || a1.Name != "Body manga larga" || a1.Price != 1500 {
		t.Errorf("A1 = %+v, want stock 25 with name and price untouched", a1)
	}

	b2 := catalog.product(t, "B2")
	if b2.Stock != 5 || b2.WholesalePrice != 800 || b2.LowStockThreshold != 10 || !b2.Active {
		t.Errorf("B2 = %+v, want stock 5 wholesale 800 threshold 10 active", b2)
	}

	if len(catalog.history) != 2 {
		t.Fatalf("history = %+v, want 2 entries", catalog.history)
	}
	adj, entry := catalog.history[0], catalog.history[1]
	if adj.ProductID != a1.ID || adj.MovementType != inventory.MovementAdjustment ||
		adj.PreviousStock != 10 || adj.NewStock != 25 || adj.Quantity != 15 {
		t.Errorf("adjustment entry = %+v", adj)
	}
	if entry.ProductID != b2.ID || entry.MovementType != inventory.MovementEntry ||
		entry.NewStock != 5 || entry.Notes != inventory.NoteInitialStock {
		t.Errorf("initial stock entry = %+v", entry)
	}
}

func TestImportInventory_RowErrorsDoNotStopImport(t *testing.T) {
	catalog := newMemCatalog()
	svc := newTestService(t, catalog, func(c *config.ImportConfig) { c.MaxReportedErrors = 1 })

	text := "SKU,Nombre,Precio\n" +
		"N1,Pantalón,2000\n" +
		"N2,,900\n" +
		",,\n" +
		"N3,Gorro,450\n"
	res := runImport(t, svc, "nuevos.csv", text)

	if res.Created != 2 || res.ErrorCount != 2 {
		t.Fatalf("result = %+v, want 2 created 2 errors", res)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("Errors = %v, want only the first one reported", res.Errors)
	}
	if want := "Línea 3: " + inventory.MsgCreateWithoutName; res.Errors[0] != want {
		t.Errorf("Errors[0] = %q, want %q", res.Errors[0], want)
	}
	if got := len(catalog.products); got != 2 {
		t.Errorf("catalogue has %d products, want 2", got)
	}
}

func TestImportInventory_WriteFailureIsRowError(t *testing.T) {
	catalog := newMemCatalog()
	catalog.failInsertSKU = "BAD"
	svc := newTestService(t, catalog)

	res := runImport(t, svc, "x.csv", "SKU,Nombre,Precio\nBAD,Campera,5000\nOK,Campera,5000\n")

	if res.Created != 1 || res.ErrorCount != 1 {
		t.Fatalf("result = %+v, want 1 created 1 error", res)
	}
	if !strings.HasPrefix(res.Errors[0], "Línea 2: ") || !strings.Contains(res.Errors[0], "connection reset") {
		t.Errorf("Errors[0] = %q, want line 2 with the write error", res.Errors[0])
	}
}

func TestImportInventory_LaterRowSeesEarlierCreate(t *testing.T) {
	catalog := newMemCatalog()
	svc := newTestService(t, catalog)

	res := runImport(t, svc, "dup.csv", "SKU,Nombre,Stock,Precio\nN1,Enterito,5,1200\nN1,,8,\n")

	if res.Created != 1 || res.Updated != 1 {
		t.Fatalf("result = %+v, want 1 created 1 updated", res)
	}
	if got := catalog.product(t, "N1").Stock; got != 8 {
		t.Errorf("N1 stock = %d, want 8", got)
	}
	if len(catalog.history) != 2 || catalog.history[1].PreviousStock != 5 || catalog.history[1].NewStock != 8 {
		t.Errorf("history = %+v, want entry 5 then adjustment 5->8", catalog.history)
	}
}

func TestImportInventory_HistoryFailureKeepsProductWrite(t *testing.T) {
	catalog := newMemCatalog(seedProduct("A1", "Body", 10, 1500))
	catalog.failHistory = true
	svc := newTestService(t, catalog)

	res := runImport(t, svc, "stock.csv", "SKU,Stock\nA1,3\n")

	if res.Updated != 1 || res.ErrorCount != 0 || res.HistoryFailures != 1 {
		t.Fatalf("result = %+v, want 1 updated 0 errors 1 history failure", res)
	}
	if got := catalog.product(t, "A1").Stock; got != 3 {
		t.Errorf("A1 stock = %d, want 3", got)
	}
}

func TestImportInventory_FileErrorsWriteNothing(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		text     string
		mutate   func(*config.ImportConfig)
		wantCode string
	}{
		{
			name:     "no key or name column",
			file:     "a.csv",
			text:     "Color,Talle\nrojo,2\n",
			wantCode: "CSV001",
		},
		{
			name:     "header only",
			file:     "a.csv",
			text:     "SKU,Nombre\n",
			wantCode: "CSV001",
		},
		{
			name:     "unterminated quote",
			file:     "a.csv",
			text:     "SKU,Nombre\nA,\"abierto\n",
			wantCode: "CSV003",
		},
		{
			name:     "too large",
			file:     "a.csv",
			text:     "SKU,Nombre\nA1,Body\n",
			mutate:   func(c *config.ImportConfig) { c.MaxFileSize = 8 },
			wantCode: "CSV002",
		},
		{
			name:     "unsupported extension",
			file:     "a.pdf",
			text:     "SKU,Nombre\nA1,Body\n",
			wantCode: "CSV005",
		},
		{
			name:     "broken workbook",
			file:     "a.xlsx",
			text:     "not a zip",
			wantCode: "CSV001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newMemCatalog(seedProduct("A1", "Body", 10, 1500))
			var mutate []func(*config.ImportConfig)
			if tt.mutate != nil {
				mutate = append(mutate, tt.mutate)
			}
			svc := newTestService(t, catalog, mutate...)

			res, err := svc.ImportInventory(context.Background(), tt.file, strings.NewReader(tt.text))
			if err == nil {
				t.Fatalf("ImportInventory() = %+v, want error", res)
			}
			if code := MapError(err).Code; code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", err, code, tt.wantCode)
			}
			if len(catalog.products) != 1 || len(catalog.history) != 0 {
				t.Errorf("catalogue changed: %d products, %d history", len(catalog.products), len(catalog.history))
			}
		})
	}
}

func TestImportInventory_NoFile(t *testing.T) {
	svc := newTestService(t, newMemCatalog())
	if _, err := svc.ImportInventory(context.Background(), "a.csv", nil); !errors.Is(err, ErrNoFile) {
		t.Errorf("ImportInventory(nil) error = %v, want ErrNoFile", err)
	}
}

func TestImportInventory_TooManyImports(t *testing.T) {
	svc := newTestService(t, newMemCatalog())
	svc.limiter = NewImportLimiter(1, 20*time.Millisecond)
	svc.limiter.TryAcquire()
	defer svc.limiter.Release()

	_, err := svc.ImportInventory(context.Background(), "a.csv", strings.NewReader("SKU,Nombre\nA,B\n"))
	if !errors.Is(err, ErrTooManyImports) {
		t.Errorf("ImportInventory() error = %v, want ErrTooManyImports", err)
	}
}

func TestImportInventory_ReleasesSlot(t *testing.T) {
	svc := newTestService(t, newMemCatalog())
	runImport(t, svc, "a.csv", "SKU,Nombre,Precio\nA,Body,100\n")

	if got := svc.LimiterStatus().Active; got != 0 {
		t.Errorf("active imports after completion = %d, want 0", got)
	}
}

func TestImportInventory_XLSXRoundTrip(t *testing.T) {
	source := newMemCatalog(
		seedProduct("A1", "Body", 12, 1500),
		seedProduct("B2", "Remera", 3, 990.5),
	)
	exporter := newTestService(t, source)

	export, err := exporter.ExportInventory(context.Background(), inventory.Filter{}, FormatXLSX)
	if err != nil {
		t.Fatalf("ExportInventory() error = %v", err)
	}

	target := newMemCatalog(seedProduct("A1", "Body", 4, 1500))
	importer := newTestService(t, target)

	res, err := importer.ImportInventory(context.Background(), export.FileName, bytes.NewReader(export.Data))
	if err != nil {
		t.Fatalf("ImportInventory() error = %v", err)
	}
	if res.Created != 1 || res.Updated != 1 || res.ErrorCount != 0 {
		t.Fatalf("result = %+v, want 1 created 1 updated", res)
	}
	if got := target.product(t, "A1").Stock; got != 12 {
		t.Errorf("A1 stock = %d, want 12", got)
	}
	b2 := target.product(t, "B2")
	if b2.Price != 990.5 || b2.Stock != 3 {
		t.Errorf("B2 = %+v, want price 990.5 stock 3", b2)
	}
}

// ----------------------------------------------------------------------------
// Preview Tests
// ----------------------------------------------------------------------------

func TestPreviewImport_WritesNothing(t *testing.T) {
	catalog := newMemCatalog(seedProduct("A1", "Body", 10, 1500))
	svc := newTestService(t, catalog)

	text := "SKU,Nombre,Stock,Precio\nA1,,25,\nN1,Nuevo,2,300\nN1,,7,\nX,,,\n"
	res, err := svc.PreviewImport(context.Background(), "p.csv", strings.NewReader(text))
	if err != nil {
		t.Fatalf("PreviewImport() error = %v", err)
	}

	if res.Created != 1 || res.Updated != 2 || len(res.Errors) != 1 {
		t.Fatalf("preview = %+v, want 1 created 2 updated 1 error", res)
	}
	if res.Errors[0].Line != 5 {
		t.Errorf("error line = %d, want 5", res.Errors[0].Line)
	}
	if len(res.Operations) != 3 {
		t.Errorf("operations = %d, want 3", len(res.Operations))
	}

	if len(catalog.products) != 1 || catalog.products[0].Stock != 10 || len(catalog.history) != 0 {
		t.Errorf("catalogue changed by preview: %+v", catalog.products)
	}
}

// ----------------------------------------------------------------------------
// Export Tests
// ----------------------------------------------------------------------------

func TestExportInventory_CSV(t *testing.T) {
	catalog := newMemCatalog(
		seedProduct("A1", "Body", 2, 1500),
		seedProduct("B2", "Remera", 30, 990),
	)
	svc := newTestService(t, catalog)

	export, err := svc.ExportInventory(context.Background(), inventory.Filter{LowStock: true}, FormatCSV)
	if err != nil {
		t.Fatalf("ExportInventory() error = %v", err)
	}

	if export.FileName != "inventario_2026-10-15.csv" {
		t.Errorf("FileName = %q", export.FileName)
	}
	if export.Count != 1 {
		t.Errorf("Count = %d, want 1", export.Count)
	}
	text := string(export.Data)
	if !strings.HasPrefix(text, csvtext.BOM) {
		t.Error("CSV export is missing the BOM")
	}
	if !strings.HasSuffix(text, "\r\nA1,Body,,2,10,1500,1200") {
		t.Errorf("CSV export = %q", text)
	}
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   ExportFormat
		wantOK bool
	}{
		{"", FormatCSV, true},
		{"csv", FormatCSV, true},
		{"xlsx", FormatXLSX, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseExportFormat(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseExportFormat(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

// ----------------------------------------------------------------------------
// Bulk Edit Tests
// ----------------------------------------------------------------------------

func TestBulkAdjustPrices(t *testing.T) {
	tests := []struct {
		name    string
		ids     func(c *memCatalog) []string
		percent float64
		wantErr error
		want    float64
	}{
		{"raise ten percent", func(c *memCatalog) []string { return []string{c.products[0].ID} }, 10, nil, 1650},
		{"lower half", func(c *memCatalog) []string { return []string{c.products[0].ID} }, -50, nil, 750},
		{"no selection", func(*memCatalog) []string { return nil }, 10, ErrNoSelection, 1500},
		{"minus hundred", func(c *memCatalog) []string { return []string{c.products[0].ID} }, -100, ErrInvalidPercent, 1500},
		{"not a number", func(c *memCatalog) []string { return []string{c.products[0].ID} }, math.NaN(), ErrInvalidPercent, 1500},
		{"unknown product", func(c *memCatalog) []string { return []string{c.products[0].ID, "nope"} }, 10, inventory.ErrNotFound, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := newMemCatalog(seedProduct("A1", "Body", 1, 1500))
			svc := newTestService(t, catalog)

			_, err := svc.BulkAdjustPrices(context.Background(), tt.ids(catalog), tt.percent)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BulkAdjustPrices() error = %v, want %v", err, tt.wantErr)
			}
			if got := catalog.products[0].Price; got != tt.want {
				t.Errorf("price = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBulkDelete(t *testing.T) {
	catalog := newMemCatalog(seedProduct("A1", "Body", 1, 1), seedProduct("B2", "Gorro", 1, 1))
	svc := newTestService(t, catalog)

	if _, err := svc.BulkDelete(context.Background(), nil); !errors.Is(err, ErrNoSelection) {
		t.Errorf("BulkDelete(nil) error = %v, want ErrNoSelection", err)
	}

	n, err := svc.BulkDelete(context.Background(), []string{catalog.products[0].ID})
	if err != nil || n != 1 {
		t.Fatalf("BulkDelete() = %d, %v; want 1, nil", n, err)
	}
	if len(catalog.products) != 1 || catalog.products[0].SKU != "B2" {
		t.Errorf("remaining = %+v, want only B2", catalog.products)
	}
}

func TestAdjustStock(t *testing.T) {
	catalog := newMemCatalog(seedProduct("A1", "Body", 10, 1500))
	svc := newTestService(t, catalog)
	id := catalog.products[0].ID

	if _, err := svc.AdjustStock(context.Background(), id, 0, ""); !errors.Is(err, ErrZeroDelta) {
		t.Errorf("AdjustStock(0) error = %v, want ErrZeroDelta", err)
	}

	entry, err := svc.AdjustStock(context.Background(), id, -30, "  ")
	if err != nil {
		t.Fatalf("AdjustStock() error = %v", err)
	}
	if entry.NewStock != 0 || entry.Quantity != -10 || entry.MovementType != inventory.MovementExit {
		t.Errorf("entry = %+v, want clamp to 0 as salida of 10", entry)
	}
	if entry.Notes != NoteManualAdjustment {
		t.Errorf("Notes = %q, want %q", entry.Notes, NoteManualAdjustment)
	}
}

func TestStockHistory(t *testing.T) {
	catalog := newMemCatalog(seedProduct("A1", "Body", 10, 1500))
	svc := newTestService(t, catalog)
	id := catalog.products[0].ID

	for _, d := range []int{5, -2, 7} {
		if _, err := svc.AdjustStock(context.Background(), id, d, "conteo"); err != nil {
			t.Fatalf("AdjustStock(%d) error = %v", d, err)
		}
	}

	entries, err := svc.StockHistory(context.Background(), id, 2)
	if err != nil {
		t.Fatalf("StockHistory() error = %v", err)
	}
	got := make([]int, len(entries))
	for i, e := range entries {
		got[i] = e.NewStock
	}
	if len(got) != 2 || got[0] != 20 || got[1] != 13 {
		t.Errorf("newest stock levels = %v, want [20 13]", got)
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i] > got[j] }) {
		t.Errorf("entries not newest first: %v", got)
	}

	if _, err := svc.StockHistory(context.Background(), "missing", 10); !errors.Is(err, inventory.ErrNotFound) {
		t.Errorf("StockHistory(missing) error = %v, want ErrNotFound", err)
	}
}
