package inventory

import (
	"context"
	"fmt"
)

// Snapshot is an in-memory Lookup over a fixed set of products.
type Snapshot struct {
	products []Product
	bySKU    map[string][]int
	byID     map[string]int
}

// NewSnapshot indexes products by SKU and id.
func NewSnapshot(products []Product) *Snapshot {
	s := &Snapshot{
		products: append([]Product(nil), products...),
		bySKU:    make(map[string][]int),
		byID:     make(map[string]int),
	}
	for i, p := range s.products {
		s.index(i, p)
	}
	return s
}

func (s *Snapshot) index(i int, p Product) {
	if p.SKU != "" {
		s.bySKU[p.SKU] = append(s.bySKU[p.SKU], i)
	}
	if p.ID != "" {
		s.byID[p.ID] = i
	}
}

// FindBySKU implements Lookup. Duplicate SKUs count as not found.
func (s *Snapshot) FindBySKU(_ context.Context, sku string) (*Product, error) {
	hits := s.bySKU[sku]
	if len(hits) != 1 {
		return nil, ErrNotFound
	}
	p := s.products[hits[0]]
	return &p, nil
}

// FindByID implements Lookup.
func (s *Snapshot) FindByID(_ context.Context, id string) (*Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := s.products[i]
	return &p, nil
}

// Len is the number of products in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.products)
}

// overlay layers planned-but-unwritten operations over a Lookup.
type overlay struct {
	base    Lookup
	pending *Snapshot
	patches map[string][]ProductPatch
}

func newOverlay(base Lookup) *overlay {
	return &overlay{
		base:    base,
		pending: NewSnapshot(nil),
		patches: make(map[string][]ProductPatch),
	}
}

func (o *overlay) FindBySKU(ctx context.Context, sku string) (*Product, error) {
	if p, err := o.pending.FindBySKU(ctx, sku); err == nil {
		return o.latest(p), nil
	}
	p, err := o.base.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return o.latest(p), nil
}

func (o *overlay) FindByID(ctx context.Context, id string) (*Product, error) {
	if p, err := o.pending.FindByID(ctx, id); err == nil {
		return o.latest(p), nil
	}
	p, err := o.base.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.latest(p), nil
}

// latest replays the patches earlier rows planned for p.
func (o *overlay) latest(p *Product) *Product {
	out := *p
	for _, patch := range o.patches[p.ID] {
		out = patch.Apply(out)
	}
	return &out
}

func (o *overlay) apply(op Operation) {
	switch op.Kind {
	case OpCreate:
		p := *op.Product
		p.ID = fmt.Sprintf("pending:%d", op.Line)
		o.pending.products = append(o.pending.products, p)
		o.pending.index(len(o.pending.products)-1, p)
	case OpUpdate:
		o.patches[op.ProductID] = append(o.patches[op.ProductID], *op.Patch)
	}
}
