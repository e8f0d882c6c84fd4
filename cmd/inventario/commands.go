package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/inventario/internal/core"
	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/spf13/cobra"
)

func newImportCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Apply a CSV or XLSX inventory file to the catalogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			defer f.Close()

			result, err := a.service.ImportInventory(cmd.Context(), filepath.Base(args[0]), f)
			if result != nil {
				if perr := printResult(cmd.OutOrStdout(), g.jsonOutput, result, func(w io.Writer) {
					printImport(w, result)
				}); perr != nil {
					return perr
				}
			}
			return err
		},
	}
}

func newPreviewCmd(g *globalOptions) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show what importing FILE would do without writing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			defer f.Close()

			result, err := a.service.PreviewImport(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), g.jsonOutput, result, func(w io.Writer) {
				printPreview(w, result, verbose)
			})
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List every planned operation")
	return cmd
}

type exportOptions struct {
	output     string
	format     string
	category   string
	search     string
	lowStock   bool
	activeOnly bool
}

func newExportCmd(g *globalOptions) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalogue as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, ok := core.ParseExportFormat(exportFormatName(opts))
			if !ok {
				return withCode(exitUsage, fmt.Errorf("unsupported --format: %s", opts.format))
			}

			a, err := openApp(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer a.Close()

			filter := inventory.Filter{
				CategoryID: opts.category,
				Search:     opts.search,
				LowStock:   opts.lowStock,
				ActiveOnly: opts.activeOnly,
			}
			export, err := a.service.ExportInventory(cmd.Context(), filter, format)
			if err != nil {
				return err
			}

			if opts.output == "" || opts.output == "-" {
				_, err = cmd.OutOrStdout().Write(export.Data)
				return err
			}
			if opts.output == "." {
				opts.output = export.FileName
			}
			if err := os.WriteFile(opts.output, export.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d productos exportados a %s\n", export.Count, opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `Output file ("." for the default name, "-" or empty for stdout)`)
	cmd.Flags().StringVar(&opts.format, "format", "", "Export format: csv or xlsx (default: from --output extension, else csv)")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only products in this category id")
	cmd.Flags().StringVarP(&opts.search, "search", "q", "", "Only products whose SKU or name contains this text")
	cmd.Flags().BoolVar(&opts.lowStock, "low-stock", false, "Only products at or below their low-stock threshold")
	cmd.Flags().BoolVar(&opts.activeOnly, "active", false, "Only active products")
	return cmd
}

// exportFormatName picks the format flag, falling back to the output
// file's extension.
func exportFormatName(opts exportOptions) string {
	if opts.format != "" {
		return strings.ToLower(opts.format)
	}
	if strings.EqualFold(filepath.Ext(opts.output), ".xlsx") {
		return string(core.FormatXLSX)
	}
	return ""
}

func newBulkPriceCmd(g *globalOptions) *cobra.Command {
	var percent float64

	cmd := &cobra.Command{
		Use:   "bulk-price --percent P ID...",
		Short: "Scale price and wholesale price of the given products by P percent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("percent") {
				return withCode(exitUsage, errors.New("--percent is required"))
			}

			a, err := openApp(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.service.BulkAdjustPrices(cmd.Context(), args, percent)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), g.jsonOutput, map[string]any{"updated": n, "percent": percent}, func(w io.Writer) {
				fmt.Fprintf(w, "%d productos actualizados (%+g%%)\n", n, percent)
			})
		},
	}

	cmd.Flags().Float64Var(&percent, "percent", 0, "Percentage change, e.g. 10 or -15 (must be greater than -100)")
	return cmd
}

func newBulkDeleteCmd(g *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "bulk-delete ID...",
		Short: "Delete the given products",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return withCode(exitUsage, fmt.Errorf("refusing to delete %d products without --yes", len(args)))
			}

			a, err := openApp(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.service.BulkDelete(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), g.jsonOutput, map[string]any{"deleted": n}, func(w io.Writer) {
				fmt.Fprintf(w, "%d productos eliminados\n", n)
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm the deletion")
	return cmd
}

// printResult writes v as indented JSON or through the text renderer.
func printResult(w io.Writer, asJSON bool, v any, text func(io.Writer)) error {
	if !asJSON {
		text(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printImport(w io.Writer, r *core.ImportResult) {
	fmt.Fprintf(w, "%s: %s\n", r.FileName, r.Summary)
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "  aviso: %s\n", msg)
	}
	for _, msg := range r.Errors {
		fmt.Fprintf(w, "  %s\n", msg)
	}
	if hidden := r.ErrorCount - len(r.Errors); hidden > 0 {
		fmt.Fprintf(w, "  ... y %d errores más (ver log)\n", hidden)
	}
	if r.HistoryFailures > 0 {
		fmt.Fprintf(w, "  %d movimientos de stock no se registraron en el historial\n", r.HistoryFailures)
	}
}

func printPreview(w io.Writer, r *core.PreviewResult, verbose bool) {
	fmt.Fprintf(w, "%s (vista previa): %s\n", r.FileName, r.Summary)
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "  aviso: %s\n", msg)
	}
	if verbose {
		for _, op := range r.Operations {
			fmt.Fprintf(w, "  Línea %d: %s %s\n", op.Line, op.Kind, op.Key)
		}
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e.Error())
	}
}
