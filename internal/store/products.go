package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/inventario/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const productSelect = `SELECT p.id, p.sku, p.name, p.category_id, c.name,
       p.stock, p.low_stock_threshold, p.price, p.wholesale_price,
       p.active, p.sizes, p.colors, p.images, p.created_at, p.updated_at
FROM products p
LEFT JOIN categories c ON c.id = p.category_id`

// scanProduct reads one row selected with productSelect.
func scanProduct(row pgx.Row) (inventory.Product, error) {
	var (
		p              inventory.Product
		id, categoryID pgtype.UUID
		categoryName   pgtype.Text
		stock          int32
		threshold      int32
		price, whole   pgtype.Numeric
	)

	err := row.Scan(
		&id, &p.SKU, &p.Name, &categoryID, &categoryName,
		&stock, &threshold, &price, &whole,
		&p.Active, &p.Sizes, &p.Colors, &p.Images, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return inventory.Product{}, err
	}

	p.ID = PgUUIDToString(id)
	p.CategoryID = PgUUIDToString(categoryID)
	p.CategoryName = categoryName.String
	p.Stock = int(stock)
	p.LowStockThreshold = int(threshold)
	p.Price = NumericToFloat(price)
	p.WholesalePrice = NumericToFloat(whole)
	return p, nil
}

func collectProducts(rows pgx.Rows) ([]inventory.Product, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.Product, error) {
		return scanProduct(row)
	})
}

// FindBySKU implements inventory.Lookup. Zero or several matches are both
// reported as inventory.ErrNotFound.
func (s *Store) FindBySKU(ctx context.Context, sku string) (*inventory.Product, error) {
	rows, err := s.pool.Query(ctx, productSelect+" WHERE p.sku = $1 LIMIT 2", sku)
	if err != nil {
		return nil, fmt.Errorf("find product by sku: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("find product by sku: %w", err)
	}
	if len(products) != 1 {
		return nil, inventory.ErrNotFound
	}
	return &products[0], nil
}

// FindByID implements inventory.Lookup. Ids that are not UUIDs cannot match.
func (s *Store) FindByID(ctx context.Context, id string) (*inventory.Product, error) {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return nil, inventory.ErrNotFound
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, productSelect+" WHERE p.id = $1", pgID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, inventory.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return &p, nil
}

// InsertProduct stores a new product and returns it with its id and
// timestamps filled in.
func (s *Store) InsertProduct(ctx context.Context, p inventory.Product) (inventory.Product, error) {
	category, err := categoryParam(p.CategoryID)
	if err != nil {
		return inventory.Product{}, err
	}

	var id pgtype.UUID
	err = s.pool.QueryRow(ctx, `
		INSERT INTO products (sku, name, category_id, stock, low_stock_threshold,
		                      price, wholesale_price, active, sizes, colors, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`,
		p.SKU, p.Name, category, int32(p.Stock), int32(p.LowStockThreshold),
		ToPgNumeric(p.Price), ToPgNumeric(p.WholesalePrice), p.Active,
		nonNil(p.Sizes), nonNil(p.Colors), nonNil(p.Images),
	).Scan(&id, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return inventory.Product{}, fmt.Errorf("insert product: %w", err)
	}

	p.ID = PgUUIDToString(id)
	return p, nil
}

// UpdateProduct applies a partial update. An empty patch is a no-op.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch inventory.ProductPatch) error {
	if patch.Empty() {
		return nil
	}

	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return inventory.ErrNotFound
	}

	set, args, err := buildUpdate(patch)
	if err != nil {
		return err
	}
	args = append(args, pgID)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", set, len(args))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

// buildUpdate renders the SET list for a patch. Placeholders start at $1 and
// updated_at is always bumped.
func buildUpdate(patch inventory.ProductPatch) (string, []any, error) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.CategoryID != nil {
		category, err := categoryParam(*patch.CategoryID)
		if err != nil {
			return "", nil, err
		}
		add("category_id", category)
	}
	if patch.Stock != nil {
		add("stock", int32(*patch.Stock))
	}
	if patch.LowStockThreshold != nil {
		add("low_stock_threshold", int32(*patch.LowStockThreshold))
	}
	if patch.Price != nil {
		add("price", ToPgNumeric(*patch.Price))
	}
	if patch.WholesalePrice != nil {
		add("wholesale_price", ToPgNumeric(*patch.WholesalePrice))
	}

	sets = append(sets, "updated_at = now()")
	return strings.Join(sets, ", "), args, nil
}

// ListProducts returns every product matching f, ordered by name then SKU.
func (s *Store) ListProducts(ctx context.Context, f inventory.Filter) ([]inventory.Product, error) {
	where, args, err := buildFilter(f)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, productSelect+where+" ORDER BY p.name, p.sku", args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition; "?" in cond is replaced by the next placeholder.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *whereBuilder) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) build() (string, []any) {
	if len(w.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(w.conds, " AND "), w.args
}

// buildFilter renders f as a WHERE clause.
func buildFilter(f inventory.Filter) (string, []any, error) {
	var wb whereBuilder

	if f.CategoryID != "" {
		category, err := categoryParam(f.CategoryID)
		if err != nil {
			return "", nil, err
		}
		wb.add("p.category_id = ?", category)
	}
	if f.LowStock {
		wb.addRaw("p.stock <= p.low_stock_threshold")
	}
	if f.ActiveOnly {
		wb.addRaw("p.active")
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		wb.args = append(wb.args, pattern)
		n := len(wb.args)
		wb.addRaw(fmt.Sprintf("(p.sku ILIKE $%d OR p.name ILIKE $%d)", n, n))
	}
	if len(f.IDs) > 0 {
		ids, err := uuidList(f.IDs)
		if err != nil {
			return "", nil, err
		}
		wb.add("p.id = ANY(?)", ids)
	}

	where, args := wb.build()
	return where, args, nil
}

// escapeLike escapes ILIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
