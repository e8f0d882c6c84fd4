// # Error Codes Reference
//
// This file turns technical errors into messages for the admin panel. Each
// message carries a code the admin can quote to support.
//
// Codes are grouped by category:
//
// # File Errors (CSV001-CSV099)
//
// Problems with the uploaded file itself. Nothing is written when one of
// these occurs.
//
//	CSV001 - File structure: header or row layout is unusable
//	         Message: the file-level reason (e.g. no key column)
//	CSV002 - File too large: upload exceeds IMPORT_MAX_FILE_SIZE
//	         Matches: csvtext.ErrFileTooLarge, "file too large"
//	CSV003 - Unterminated quote: a quoted field never closes
//	         Matches: csvtext.ErrUnterminatedQuote
//	CSV004 - No file: the request carried no file
//	         Matches: ErrNoFile, "no file provided"
//	CSV005 - Unsupported format: extension is not .csv or .xlsx
//	         Matches: ErrUnsupportedFormat
//
// # Inventory Errors (IMP001-IMP099)
//
//	IMP001 - System busy: all import slots are taken
//	         Matches: ErrTooManyImports
//	IMP002 - Nothing selected: a bulk edit received no product ids
//	         Matches: ErrNoSelection, "no products selected"
//	IMP003 - Invalid percent: price change at or below -100%
//	         Matches: ErrInvalidPercent
//	IMP004 - Zero delta: stock adjustment of zero units
//	         Matches: ErrZeroDelta
//	IMP005 - Product not found: a referenced product does not exist
//	         Matches: inventory.ErrNotFound
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key          Patterns: "duplicate key"
//	DB002 - Check constraint       Patterns: "check constraint"
//	DB003 - Foreign key            Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused     Patterns: "connection refused"
//	DB005 - Connection reset       Patterns: "connection reset"
//	DB006 - Deadlock               Patterns: "deadlock"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Rate limited          Patterns: "rate limit"
//	REQ002 - Cancelled             Matches: context.Canceled
//	REQ003 - Timed out             Matches: context.DeadlineExceeded, "timeout"
//	REQ004 - Invalid identifier    Patterns: "invalid product id", "invalid category id"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application logs for the
// technical error when an admin reports ERR000.
//
// # Matching Order
//
// Sentinel errors are checked first with errors.Is, then file-level errors
// with errors.As, then the message patterns. Patterns are matched
// case-insensitively with strings.Contains and the first match wins.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/inventario/internal/csvtext"
	"github.com/JonMunkholm/inventario/internal/inventory"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorSentinel maps a sentinel error to its user message.
type errorSentinel struct {
	target error
	msg    UserMessage
}

// errorSentinels are checked with errors.Is before any pattern.
var errorSentinels = []errorSentinel{
	{
		target: csvtext.ErrFileTooLarge,
		msg: UserMessage{
			Message: "El archivo supera el tamaño máximo permitido",
			Action:  "Divida el archivo en partes más pequeñas",
			Code:    "CSV002",
		},
	},
	{
		target: csvtext.ErrUnterminatedQuote,
		msg: UserMessage{
			Message: "El archivo tiene un campo entre comillas sin cerrar",
			Action:  "Revise las comillas del archivo y vuelva a exportarlo",
			Code:    "CSV003",
		},
	},
	{
		target: ErrNoFile,
		msg: UserMessage{
			Message: "No se seleccionó ningún archivo",
			Action:  "Seleccione un archivo CSV o Excel",
			Code:    "CSV004",
		},
	},
	{
		target: ErrUnsupportedFormat,
		msg: UserMessage{
			Message: "Formato de archivo no soportado",
			Action:  "Suba un archivo .csv o .xlsx",
			Code:    "CSV005",
		},
	},
	{
		target: ErrTooManyImports,
		msg: UserMessage{
			Message: "Hay demasiadas importaciones en curso",
			Action:  "Espere un momento e intente de nuevo",
			Code:    "IMP001",
		},
	},
	{
		target: ErrNoSelection,
		msg: UserMessage{
			Message: "No se seleccionaron productos",
			Action:  "Seleccione al menos un producto",
			Code:    "IMP002",
		},
	},
	{
		target: ErrInvalidPercent,
		msg: UserMessage{
			Message: "Porcentaje de ajuste inválido",
			Action:  "Use un porcentaje mayor a -100",
			Code:    "IMP003",
		},
	},
	{
		target: ErrZeroDelta,
		msg: UserMessage{
			Message: "La cantidad a ajustar no puede ser cero",
			Action:  "Indique una cantidad positiva o negativa",
			Code:    "IMP004",
		},
	},
	{
		target: inventory.ErrNotFound,
		msg: UserMessage{
			Message: "Producto no encontrado",
			Action:  "Actualice la lista de productos e intente de nuevo",
			Code:    "IMP005",
		},
	},
	{
		target: context.Canceled,
		msg: UserMessage{
			Message: "La solicitud fue cancelada",
			Action:  "Intente de nuevo",
			Code:    "REQ002",
		},
	},
	{
		target: context.DeadlineExceeded,
		msg: UserMessage{
			Message: "La operación excedió el tiempo límite",
			Action:  "Intente con un archivo más pequeño o más tarde",
			Code:    "REQ003",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "Ya existe un registro con este identificador",
			Action:  "Revise los identificadores duplicados",
			Code:    "DB001",
		},
	},
	{
		pattern: "check constraint",
		msg: UserMessage{
			Message: "Un valor está fuera del rango permitido",
			Action:  "Revise que el stock y los precios no sean negativos",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "La categoría indicada no existe",
			Action:  "Cree la categoría antes de asignarla",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "La categoría indicada no existe",
			Action:  "Cree la categoría antes de asignarla",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "No se pudo conectar a la base de datos",
			Action:  "Intente de nuevo en unos momentos",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Se interrumpió la conexión con la base de datos",
			Action:  "Intente de nuevo",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "La base de datos estaba ocupada con operaciones en conflicto",
			Action:  "Intente de nuevo",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ004)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Demasiadas solicitudes",
			Action:  "Espere un momento antes de intentar de nuevo",
			Code:    "REQ001",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "La operación excedió el tiempo límite",
			Action:  "Intente con un archivo más pequeño o más tarde",
			Code:    "REQ003",
		},
	},
	{
		pattern: "invalid product id",
		msg: UserMessage{
			Message: "Identificador de producto inválido",
			Action:  "Use el identificador tal como aparece en el sistema",
			Code:    "REQ004",
		},
	},
	{
		pattern: "invalid category id",
		msg: UserMessage{
			Message: "Identificador de categoría inválido",
			Action:  "Use el identificador tal como aparece en el sistema",
			Code:    "REQ004",
		},
	},

	// Messages of sentinels that may arrive stringified, e.g. across the
	// store boundary.
	{
		pattern: "no products selected",
		msg: UserMessage{
			Message: "No se seleccionaron productos",
			Action:  "Seleccione al menos un producto",
			Code:    "IMP002",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "El archivo supera el tamaño máximo permitido",
			Action:  "Divida el archivo en partes más pequeñas",
			Code:    "CSV002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No se seleccionó ningún archivo",
			Action:  "Seleccione un archivo CSV o Excel",
			Code:    "CSV004",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocurrió un error inesperado",
	Action:  "Intente de nuevo o contacte a soporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("read: %w", csvtext.ErrFileTooLarge))
//	// msg.Code == "CSV002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, es := range errorSentinels {
		if errors.Is(err, es.target) {
			return es.msg
		}
	}

	var fe *inventory.FileError
	if errors.As(err, &fe) {
		return UserMessage{
			Message: fe.Message,
			Action:  "Corrija el archivo y vuelva a subirlo",
			Code:    "CSV001",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Código: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback. Errors that are not user facing should be logged at
// error level.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown to the admin.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return FormatUserError(e.Technical)
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
