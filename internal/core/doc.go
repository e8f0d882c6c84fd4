// Package core provides the inventory back-office operations: spreadsheet
// import and preview, export, and bulk edits.
//
// The package sits between the transports (HTTP handlers in internal/web and
// the inventario CLI) and the product store. It holds no SQL; storage is
// reached through the [Catalog] and [HistoryLog] interfaces, which
// *store.Store satisfies.
//
// # Import
//
// [Service.ImportInventory] accepts a CSV or XLSX upload:
//
//  1. The file is read up to the configured size limit and tokenized
//  2. The header is resolved against the column aliases; a file without a
//     key column (SKU or ID) or a name column is rejected before any write
//  3. Rows are planned and executed one by one in file order
//  4. Stock changes are appended to the stock history
//  5. An [ImportResult] reports created, updated and skipped rows
//
// A row that fails is reported as "Línea N: reason" and the import moves on.
// Concurrent imports are bounded by an [ImportLimiter].
//
// [Service.PreviewImport] runs the same planner against an in-memory
// snapshot of the catalogue and writes nothing.
//
// # Export
//
// [Service.ExportInventory] renders the filtered catalogue as CSV (BOM
// prefixed, CRLF terminated) or as an XLSX workbook. Exports use column
// names the importer recognises, so an edited export can be imported back.
//
// # Bulk Edits
//
// [Service.BulkAdjustPrices], [Service.BulkDelete] and [Service.AdjustStock]
// each run in a single transaction.
//
// # Errors
//
// [MapError] turns any error returned here into a [UserMessage] with a
// support code. See error_messages.go for the code reference.
package core
