package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/inventario/internal/core"
	"github.com/JonMunkholm/inventario/internal/csvtext"
	"github.com/JonMunkholm/inventario/internal/inventory"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// maxMemory is how much of a multipart form is kept in memory before
// spilling to disk.
const maxMemory = 8 << 20

// handleImport reconciles an uploaded CSV or XLSX file against the
// catalogue and returns the import report.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.ImportInventory(ctx, header.Filename, file)
	if err != nil {
		respondImportError(w, r, err, result)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handlePreview returns what an import of the uploaded file would do.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.service.PreviewImport(r.Context(), header.Filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// formFile extracts the "file" part of a multipart upload, enforcing the
// configured size limit on the whole body.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	maxSize := s.service.MaxFileSize()
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("%w: limit is %d bytes", csvtext.ErrFileTooLarge, maxSize)
		}
		return nil, nil, badRequest("invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, core.ErrNoFile
	}
	if maxSize > 0 && header.Size > maxSize {
		file.Close()
		return nil, nil, fmt.Errorf("%w: limit is %d bytes", csvtext.ErrFileTooLarge, maxSize)
	}
	return file, header, nil
}

// handleExport downloads the filtered catalogue as CSV or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, ok := core.ParseExportFormat(r.URL.Query().Get("format"))
	if !ok {
		respondError(w, r, badRequest("format must be csv or xlsx"))
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	export, err := s.service.ExportInventory(r.Context(), filter, format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FileName))
	w.Header().Set("X-Total-Count", strconv.Itoa(export.Count))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}

// handleImportStatus returns the state of the import limiter. Used for
// monitoring and to check whether another import can start.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// parseFilter reads the product filter from query parameters:
// category, low_stock, active, q and repeated id.
func parseFilter(r *http.Request) (inventory.Filter, error) {
	q := r.URL.Query()
	f := inventory.Filter{
		CategoryID: q.Get("category"),
		Search:     q.Get("q"),
		IDs:        q["id"],
	}

	var err error
	if f.LowStock, err = parseBoolParam(r, "low_stock"); err != nil {
		return f, err
	}
	if f.ActiveOnly, err = parseBoolParam(r, "active"); err != nil {
		return f, err
	}
	return f, nil
}

func parseBoolParam(r *http.Request, name string) (bool, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, badRequest(name + " must be true or false")
	}
	return b, nil
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
