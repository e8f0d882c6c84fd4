package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/inventario/internal/csvtext"
	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/JonMunkholm/inventario/internal/logging"
	"github.com/google/uuid"
)

// ErrNoFile is returned when an import is started without a file.
var ErrNoFile = errors.New("no file provided")

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ImportInventory reconciles an uploaded spreadsheet against the catalogue.
//
// Rows are processed one at a time in file order. Each row is looked up,
// planned and written before the next row is read, so a later row always
// sees the effect of an earlier one. A failing row is reported and skipped;
// only file-level problems (unreadable file, missing key and name columns,
// no data rows) abort the import, and they do so before anything is written.
//
// Stock history is a side channel: a failed history write is logged and
// counted but never undoes the product write it belongs to.
//
// The import keeps running if the caller's context is cancelled and stops
// only at the configured import timeout.
func (s *Service) ImportInventory(ctx context.Context, fileName string, r io.Reader) (*ImportResult, error) {
	if r == nil {
		return nil, ErrNoFile
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.ImportTimeout())
	defer cancel()

	start := time.Now()
	importID := uuid.NewString()
	ctx, logger := logging.WithImport(ctx, importID, fileName)

	f, err := s.readFile(fileName, r)
	if err != nil {
		logger.Warn("import rejected", "error", err)
		return nil, err
	}

	logger.Info("import started",
		append([]any{
			"rows", len(f.Rows),
			"key", f.Header.KeyField().String(),
			"columns", f.Header.Headers(),
		}, clientAttrs(ctx)...)...,
	)
	for _, w := range f.Warnings {
		logger.Warn("import warning", "warning", w)
	}

	report := inventory.Report{Warnings: f.Warnings}
	historyFailures := 0
	opts := s.options()

	for _, raw := range f.Rows {
		if err := ctx.Err(); err != nil {
			result := s.importResult(importID, fileName, report, historyFailures, start)
			logger.Error("import interrupted", "line", raw.Line, "summary", result.Summary, "error", err)
			return result, fmt.Errorf("import interrupted at line %d: %w", raw.Line, err)
		}

		row := inventory.ExtractRow(raw, f.Header)
		op, rowErr := inventory.Plan(ctx, row, s.catalog, opts)
		if rowErr == nil {
			rowErr = s.apply(ctx, &op)
		}
		if rowErr != nil {
			report.AddError(*rowErr)
			logger.Warn("row skipped", "line", rowErr.Line, "key", rowErr.Key, "error", rowErr.Message)
			continue
		}

		report.Count(op.Kind)
		logger.Debug("row applied", "line", op.Line, "kind", op.Kind, "product_id", op.ProductID)

		if op.History != nil && !s.recordHistory(ctx, logger, op) {
			historyFailures++
		}
	}

	result := s.importResult(importID, fileName, report, historyFailures, start)
	logger.Info("import finished",
		"created", result.Created,
		"updated", result.Updated,
		"errors", result.ErrorCount,
		"history_failures", historyFailures,
		"duration_ms", result.DurationMS,
	)
	return result, nil
}

// apply executes one planned operation. Failures become row errors carrying
// the underlying message.
func (s *Service) apply(ctx context.Context, op *inventory.Operation) *inventory.RowError {
	switch op.Kind {
	case inventory.OpCreate:
		created, err := s.catalog.InsertProduct(ctx, *op.Product)
		if err != nil {
			return &inventory.RowError{Line: op.Line, Key: op.Key, Message: err.Error()}
		}
		op.ProductID = created.ID
		op.Product = &created

	case inventory.OpUpdate:
		if err := s.catalog.UpdateProduct(ctx, op.ProductID, *op.Patch); err != nil {
			return &inventory.RowError{Line: op.Line, Key: op.Key, Message: err.Error()}
		}
	}
	return nil
}

// recordHistory writes the stock movement of an applied operation.
func (s *Service) recordHistory(ctx context.Context, logger *slog.Logger, op inventory.Operation) bool {
	entry := *op.History
	entry.ProductID = op.ProductID

	if err := s.history.InsertStockHistory(ctx, entry); err != nil {
		logger.Warn("stock history not recorded",
			"line", op.Line,
			"product_id", entry.ProductID,
			"previous_stock", entry.PreviousStock,
			"new_stock", entry.NewStock,
			"error", err,
		)
		return false
	}
	return true
}

func (s *Service) importResult(importID, fileName string, report inventory.Report, historyFailures int, start time.Time) *ImportResult {
	msgs := report.ErrorMessages()
	if len(msgs) > s.cfg.MaxReportedErrors {
		msgs = msgs[:s.cfg.MaxReportedErrors]
	}

	d := time.Since(start)
	return &ImportResult{
		ImportID:        importID,
		FileName:        fileName,
		Created:         report.Created,
		Updated:         report.Updated,
		ErrorCount:      len(report.Errors),
		Errors:          msgs,
		Warnings:        report.Warnings,
		HistoryFailures: historyFailures,
		Summary:         report.Summary(),
		Duration:        d,
		DurationMS:      d.Milliseconds(),
	}
}

// PreviewImport plans an import without writing anything. Every row is
// reconciled against a snapshot of the current catalogue, including rows
// that refer to products created earlier in the same file.
func (s *Service) PreviewImport(ctx context.Context, fileName string, r io.Reader) (*PreviewResult, error) {
	if r == nil {
		return nil, ErrNoFile
	}

	f, err := s.readFile(fileName, r)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.ListProducts(ctx, inventory.Filter{})
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}

	ops, report := inventory.Reconcile(ctx, f, inventory.NewSnapshot(products), s.options())

	logging.FromContext(ctx).Info("import previewed",
		"file", fileName,
		"rows", len(f.Rows),
		"summary", report.Summary(),
	)

	if ops == nil {
		ops = []inventory.Operation{}
	}
	errs := report.Errors
	if errs == nil {
		errs = []inventory.RowError{}
	}
	return &PreviewResult{
		FileName:   fileName,
		Operations: ops,
		Created:    report.Created,
		Updated:    report.Updated,
		Errors:     errs,
		Warnings:   report.Warnings,
		Summary:    report.Summary(),
	}, nil
}

// readFile loads and tokenizes an upload according to its extension.
func (s *Service) readFile(fileName string, r io.Reader) (*inventory.File, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		rows, err := readWorkbook(r, s.cfg.MaxFileSize)
		if err != nil {
			return nil, err
		}
		return inventory.NewFile(rows)

	case ".csv", ".txt", "":
		text, err := csvtext.ReadText(r, s.cfg.MaxFileSize)
		if err != nil {
			return nil, err
		}
		return inventory.ParseFile(text)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
}
