// Package memory holds process-local implementations of the usecase ports.
// They back the "memory" storage driver for local runs and the tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/aq2208/gstore-api/internal/entity"
	"github.com/aq2208/gstore-api/internal/usecase"
	"github.com/shopspring/decimal"
)

type itemRow struct {
	id        int64
	productID int64 // 0 once the product is deleted
	unitPrice decimal.Decimal
	quantity  int
}

type orderRow struct {
	order domain.Order // Items left empty; rebuilt from items on read
	items []itemRow
}

type outboxRow struct {
	rec         usecase.OutboxRecord
	sent        bool
	nextAttempt time.Time
}

type state struct {
	categories []domain.Category
	products   map[int64]domain.Product
	orders     map[int64]*orderRow
	outbox     []*outboxRow
	nextOrder  int64
	nextItem   int64
	nextEvent  int64
}

func (s *state) clone() *state {
	c := &state{
		categories: append([]domain.Category(nil), s.categories...),
		products:   make(map[int64]domain.Product, len(s.products)),
		orders:     make(map[int64]*orderRow, len(s.orders)),
		outbox:     make([]*outboxRow, len(s.outbox)),
		nextOrder:  s.nextOrder,
		nextItem:   s.nextItem,
		nextEvent:  s.nextEvent,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		r := *v
		r.items = append([]itemRow(nil), v.items...)
		c.orders[k] = &r
	}
	for i, v := range s.outbox {
		r := *v
		c.outbox[i] = &r
	}
	return c
}

// Store is the catalog, order ledger and outbox in one guarded struct so
// WithinTx can roll all three back together.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   *state
}

func NewStore() *Store {
	return &Store{st: &state{
		products:  map[int64]domain.Product{},
		orders:    map[int64]*orderRow{},
		nextOrder: 1,
		nextItem:  1,
		nextEvent: 1,
	}}
}

type txKey struct{}

func inTx(ctx context.Context) bool { return ctx.Value(txKey{}) != nil }

// WithinTx serialises transactions and restores the pre-transaction state
// when fn fails. A ctx already inside WithinTx joins the outer transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snap
		s.mu.Unlock()
		return err
	}
	return nil
}

// writeLock orders a write made outside WithinTx against running
// transactions, so a rollback can never discard it.
func (s *Store) writeLock(ctx context.Context) func() {
	if inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

// --- catalog

func (s *Store) AddCategory(c domain.Category) {
	defer s.writeLock(context.Background())()
	s.st.categories = append(s.st.categories, c)
}

func (s *Store) AddProduct(p domain.Product) {
	defer s.writeLock(context.Background())()
	if p.TaxPercent.IsZero() {
		p.TaxPercent = domain.DefaultTaxPercent
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	s.st.products[p.ID] = p
}

// DeleteProduct removes a product and nulls the reference on any order item,
// like ON DELETE SET NULL.
func (s *Store) DeleteProduct(id int64) {
	defer s.writeLock(context.Background())()
	delete(s.st.products, id)
	for _, o := range s.st.orders {
		for i := range o.items {
			if o.items[i].productID == id {
				o.items[i].productID = 0
			}
		}
	}
}

func (s *Store) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return nil, usecase.ErrProductNotFound
	}
	return &p, nil
}

func (s *Store) ListProducts(_ context.Context, categorySlug string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var catID int64
	if categorySlug != "" {
		for _, c := range s.st.categories {
			if c.Slug == categorySlug {
				catID = c.ID
			}
		}
		if catID == 0 {
			return []domain.Product{}, nil
		}
	}
	out := make([]domain.Product, 0, len(s.st.products))
	for _, p := range s.st.products {
		if catID != 0 && p.CategoryID != catID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListCategories(context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Category(nil), s.st.categories...), nil
}

// --- orders

func (s *Store) Create(ctx context.Context, o *domain.Order) (int64, error) {
	defer s.writeLock(ctx)()
	id := s.st.nextOrder
	s.st.nextOrder++

	row := &orderRow{order: *o}
	row.order.ID = id
	row.order.Items = nil
	for _, it := range o.Items {
		if it.Product == nil {
			return 0, usecase.ErrMissingProductReference
		}
		row.items = append(row.items, itemRow{
			id:        s.st.nextItem,
			productID: it.Product.ID,
			unitPrice: it.UnitPrice,
			quantity:  it.Quantity,
		})
		s.st.nextItem++
	}
	s.st.orders[id] = row
	return id, nil
}

func (s *Store) materialize(row *orderRow) *domain.Order {
	o := row.order
	o.Items = make([]domain.OrderItem, 0, len(row.items))
	for _, it := range row.items {
		item := domain.OrderItem{ID: it.id, UnitPrice: it.unitPrice, Quantity: it.quantity}
		if p, ok := s.st.products[it.productID]; ok && it.productID != 0 {
			item.Product = &p
		}
		o.Items = append(o.Items, item)
	}
	return &o
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.st.orders[id]
	if !ok {
		return nil, usecase.ErrOrderNotFound
	}
	return s.materialize(row), nil
}

func (s *Store) GetByProviderOrderID(_ context.Context, providerOrderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.st.orders {
		if providerOrderID != "" && row.order.ProviderOrderID == providerOrderID {
			return s.materialize(row), nil
		}
	}
	return nil, usecase.ErrOrderNotFound
}

func (s *Store) AttachProviderOrder(ctx context.Context, id int64, providerOrderID string) (bool, error) {
	defer s.writeLock(ctx)()
	row, ok := s.st.orders[id]
	if !ok || row.order.Paid || row.order.ProviderOrderID != "" {
		return false, nil
	}
	row.order.ProviderOrderID = providerOrderID
	return true, nil
}

func (s *Store) MarkPaidIf(ctx context.Context, id int64, providerPaymentID string) (bool, error) {
	defer s.writeLock(ctx)()
	row, ok := s.st.orders[id]
	if !ok || row.order.Paid {
		return false, nil
	}
	row.order.Paid = true
	row.order.ProviderPaymentID = providerPaymentID
	return true, nil
}

// --- outbox

type Outbox struct{ s *Store }

// Outbox exposes the store's outbox table through usecase.OutboxRepo.
func (s *Store) Outbox() *Outbox { return &Outbox{s: s} }

func (o *Outbox) Insert(ctx context.Context, channel string, payload []byte) error {
	s := o.s
	defer s.writeLock(ctx)()
	now := time.Now().UTC()
	s.st.outbox = append(s.st.outbox, &outboxRow{
		rec: usecase.OutboxRecord{
			ID:        s.st.nextEvent,
			Channel:   channel,
			Payload:   append([]byte(nil), payload...),
			CreatedAt: now,
		},
		nextAttempt: now,
	})
	s.st.nextEvent++
	return nil
}

func (o *Outbox) FetchPending(_ context.Context, limit int) ([]usecase.OutboxRecord, error) {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	var out []usecase.OutboxRecord
	for _, r := range s.st.outbox {
		if len(out) >= limit {
			break
		}
		if !r.sent && !r.nextAttempt.After(now) {
			out = append(out, r.rec)
		}
	}
	return out, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id int64) error {
	return o.update(ctx, id, func(r *outboxRow) { r.sent = true })
}

func (o *Outbox) MarkFailed(ctx context.Context, id int64, nextAttempt time.Time) error {
	return o.update(ctx, id, func(r *outboxRow) {
		r.rec.RetryCount++
		r.nextAttempt = nextAttempt
	})
}

func (o *Outbox) update(ctx context.Context, id int64, fn func(*outboxRow)) error {
	s := o.s
	defer s.writeLock(ctx)()
	for _, r := range s.st.outbox {
		if r.rec.ID == id {
			fn(r)
			return nil
		}
	}
	return nil
}

// Pending lists unsent rows regardless of their next attempt time.
func (o *Outbox) Pending() []usecase.OutboxRecord {
	s := o.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []usecase.OutboxRecord
	for _, r := range s.st.outbox {
		if !r.sent {
			out = append(out, r.rec)
		}
	}
	return out
}

var (
	_ usecase.CatalogRepo = (*Store)(nil)
	_ usecase.OrderRepo   = (*Store)(nil)
	_ usecase.TxRunner    = (*Store)(nil)
	_ usecase.OutboxRepo  = (*Outbox)(nil)
)
