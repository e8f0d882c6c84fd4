package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/inventario/internal/config"
	"github.com/JonMunkholm/inventario/internal/inventory"
)

// ErrNoCatalog is returned by NewService when no catalogue is given.
var ErrNoCatalog = errors.New("core: catalog is required")

// Service provides the inventory import, export and bulk-edit operations.
type Service struct {
	catalog Catalog
	history HistoryLog
	cfg     config.ImportConfig
	limiter *ImportLimiter

	// now and newSKU are replaced in tests.
	now    func() time.Time
	newSKU func(time.Time) string
}

// NewService creates a Service over a catalogue and a stock history log.
func NewService(catalog Catalog, history HistoryLog, cfg config.ImportConfig) (*Service, error) {
	if catalog == nil || history == nil {
		return nil, ErrNoCatalog
	}
	if cfg.MaxReportedErrors < 0 {
		cfg.MaxReportedErrors = 0
	}

	return &Service{
		catalog: catalog,
		history: history,
		cfg:     cfg,
		limiter: NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		now:     time.Now,
		newSKU:  inventory.GenerateSKU,
	}, nil
}

// options returns the reconciler settings derived from configuration.
func (s *Service) options() inventory.Options {
	return inventory.Options{
		LowStockThreshold: s.cfg.DefaultThreshold,
		WholesaleRatio:    s.cfg.WholesaleRatio,
		Now:               s.now,
		NewSKU:            s.newSKU,
	}
}

// ImportTimeout returns the maximum duration of one import.
func (s *Service) ImportTimeout() time.Duration {
	if s.cfg.Timeout <= 0 {
		return 10 * time.Minute
	}
	return s.cfg.Timeout
}

// MaxFileSize returns the largest accepted upload in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// LimiterStatus reports how many imports are running.
func (s *Service) LimiterStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
