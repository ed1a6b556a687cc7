package marketsaga

import (
	"context"
	"fmt"
	"sync"

	"github.com/evesaga/evesaga/internal/esiclient"
	"github.com/evesaga/evesaga/internal/store"
)

// Result carries one page's orders through to Apply.
type Result struct {
	Work       Work
	Orders     []store.MarketOrder
	TotalPages int
}

// OrderBook accumulates resolved market orders, replacing any prior
// snapshot for the same (region, type, side, page) wholesale — order books are
// refreshed in full each saga run, unlike assets which are merged
// incrementally via implied keys.
type OrderBook struct {
	mu     sync.RWMutex
	orders map[Key][]store.MarketOrder
}

// NewOrderBook builds an empty OrderBook.
func NewOrderBook() *OrderBook {
	return &OrderBook{orders: make(map[Key][]store.MarketOrder)}
}

func (b *OrderBook) set(key Key, orders []store.MarketOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[key] = orders
}

// AllOrders returns every order currently held, across every region/type/
// side/page fetched so far.
func (b *OrderBook) AllOrders() []store.MarketOrder {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []store.MarketOrder
	for _, orders := range b.orders {
		out = append(out, orders...)
	}
	return out
}

// Processor implements saga.Processor[Work, Key, Result]: pagination-only
// expansion, no cross-resource discovery.
type Processor struct {
	esi  *esiclient.Client
	book *OrderBook
}

// New builds a Processor writing resolved orders into book.
func New(esi *esiclient.Client, book *OrderBook) *Processor {
	return &Processor{esi: esi, book: book}
}

// KeyOf satisfies saga.Processor.
func (p *Processor) KeyOf(w Work) Key { return KeyOf(w) }

// Process fetches one order-book page.
func (p *Processor) Process(ctx context.Context, w Work) (Result, error) {
	page, err := p.esi.MarketOrders(ctx, w.RegionID, w.TypeID, string(w.Side), w.Page)
	if err != nil {
		return Result{}, fmt.Errorf("fetch market orders region=%d type=%d side=%s page=%d: %w",
			w.RegionID, w.TypeID, w.Side, w.Page, err)
	}
	return Result{Work: w, Orders: page.Orders, TotalPages: page.TotalPages}, nil
}

// Apply stores the page's orders and, only from page 1, fans out the
// remaining pages reported by x-pages.
func (p *Processor) Apply(ctx context.Context, result Result) ([]Work, error) {
	p.book.set(KeyOf(result.Work), result.Orders)

	if result.Work.Page != 1 {
		return nil, nil
	}

	var produced []Work
	for page := 2; page <= result.TotalPages; page++ {
		produced = append(produced, Work{
			RegionID: result.Work.RegionID,
			TypeID:   result.Work.TypeID,
			Side:     result.Work.Side,
			Page:     page,
		})
	}
	return produced, nil
}
