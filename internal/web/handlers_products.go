package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/inventario/internal/core"
	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/go-chi/chi/v5"
)

const (
	// maxJSONBody bounds bulk-edit request bodies.
	maxJSONBody = 1 << 20

	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// BulkPriceRequest is the body of POST /api/products/bulk-price.
type BulkPriceRequest struct {
	IDs     []string `json:"ids"`
	Percent *float64 `json:"percent"`
}

// BulkDeleteRequest is the body of POST /api/products/bulk-delete.
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// AdjustStockRequest is the body of POST /api/products/{id}/stock.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

// handleListProducts returns the products matching the query filter.
func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	products, err := s.service.ListProducts(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if products == nil {
		products = []inventory.Product{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

// handleStockHistory returns the newest stock movements of one product.
func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit := parseIntParam(r, "limit", defaultHistoryLimit)
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := s.service.StockHistory(r.Context(), id, limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []inventory.StockHistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"productId": id,
		"entries":   entries,
	})
}

// handleAdjustStock applies a manual stock movement.
func (s *Server) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req AdjustStockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	entry, err := s.service.AdjustStock(ctx, chi.URLParam(r, "id"), req.Delta, req.Reason)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// handleBulkPrice scales the prices of the selected products.
func (s *Server) handleBulkPrice(w http.ResponseWriter, r *http.Request) {
	var req BulkPriceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Percent == nil {
		respondError(w, r, badRequest("percent is required"))
		return
	}

	ctx, cancel := detached(r)
	defer cancel()

	n, err := s.service.BulkAdjustPrices(ctx, req.IDs, *req.Percent)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"updated": n,
		"percent": *req.Percent,
	})
}

// handleBulkDelete removes the selected products.
func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	ctx, cancel := detached(r)
	defer cancel()

	n, err := s.service.BulkDelete(ctx, req.IDs)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": n})
}

// detached returns a context for a bulk edit that survives the client
// disconnecting, so the transaction is either committed or rolled back by
// the server rather than by a dropped connection.
func detached(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := WithRequestMetadata(context.WithoutCancel(r.Context()), r)
	return context.WithTimeout(ctx, time.Minute)
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest("invalid JSON body")
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]any{
		"status":  "ok",
		"imports": s.service.LimiterStatus(),
	}
	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
			body["database"] = core.MapError(err).Code
		}
	}

	writeJSON(w, status, body)
}
