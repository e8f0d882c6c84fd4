package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/JonMunkholm/inventario/internal/logging"
)

// ExportInventory renders the products matching filter in the given format.
// CSV exports carry a BOM and CRLF line endings so spreadsheet tools open
// them correctly.
func (s *Service) ExportInventory(ctx context.Context, filter inventory.Filter, format ExportFormat) (*Export, error) {
	products, err := s.catalog.ListProducts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var data []byte
	switch format {
	case FormatXLSX:
		data, err = renderWorkbook(products)
		if err != nil {
			return nil, err
		}
	default:
		format = FormatCSV
		data = []byte(inventory.ExportCSV(products))
	}

	export := &Export{
		FileName: fmt.Sprintf("inventario_%s.%s", s.now().Format("2006-01-02"), format),
		Format:   format,
		Data:     data,
		Count:    len(products),
	}

	logging.FromContext(ctx).Info("inventory exported",
		"format", format,
		"products", export.Count,
		"bytes", len(data),
	)
	return export, nil
}
