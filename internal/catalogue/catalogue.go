package catalogue

import (
	"context"
	"fmt"
	"sort"

	"github.com/steerstone/server/internal/data"
	"github.com/steerstone/server/internal/persist"
	"go.uber.org/zap"
)

// PageSource supplies catalogue pages. *persist.CatalogueRepo satisfies it.
type PageSource interface {
	LoadPages(ctx context.Context) ([]*persist.CataloguePageRow, error)
}

// Offer is a purchasable entry resolved to its furniture definition.
type Offer struct {
	ID     int32
	PageID int32
	Name   string
	Cost   int32
	Amount int32
	Def    *data.FurnitureDef
}

// Page is one catalogue page with its valid offers.
type Page struct {
	ID        int32
	ParentID  int32
	Caption   string
	MinRank   int16
	SortOrder int32
	Offers    []*Offer
}

// Manager holds the loaded catalogue. LoadPages replaces the whole catalogue;
// readers only run on the game loop, so no locking.
type Manager struct {
	source PageSource
	furn   *data.FurnitureTable
	log    *zap.Logger

	pages  map[int32]*Page
	order  []*Page
	offers map[int32]*Offer
}

func NewManager(source PageSource, furn *data.FurnitureTable, log *zap.Logger) *Manager {
	return &Manager{
		source: source,
		furn:   furn,
		log:    log,
		pages:  make(map[int32]*Page),
		offers: make(map[int32]*Offer),
	}
}

// LoadPages loads pages and offers from the source. Offers pointing at
// unknown furniture definitions are skipped.
func (m *Manager) LoadPages(ctx context.Context) error {
	rows, err := m.source.LoadPages(ctx)
	if err != nil {
		return fmt.Errorf("load catalogue pages: %w", err)
	}

	pages := make(map[int32]*Page, len(rows))
	offers := make(map[int32]*Offer)
	order := make([]*Page, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		p := &Page{
			ID:        row.ID,
			ParentID:  row.ParentID,
			Caption:   row.Caption,
			MinRank:   row.MinRank,
			SortOrder: row.SortOrder,
		}
		for _, o := range row.Offers {
			def := m.furn.Get(o.DefID)
			if def == nil {
				m.log.Warn("商品引用未知家具", zap.Int32("offer", o.ID), zap.Int32("def", o.DefID))
				skipped++
				continue
			}
			amount := o.Amount
			if amount <= 0 {
				amount = 1
			}
			off := &Offer{ID: o.ID, PageID: p.ID, Name: o.Name, Cost: o.Cost, Amount: amount, Def: def}
			p.Offers = append(p.Offers, off)
			offers[off.ID] = off
		}
		pages[p.ID] = p
		order = append(order, p)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].SortOrder != order[j].SortOrder {
			return order[i].SortOrder < order[j].SortOrder
		}
		return order[i].ID < order[j].ID
	})

	m.pages = pages
	m.order = order
	m.offers = offers
	m.log.Info("目錄載入完成", zap.Int("pages", len(pages)), zap.Int("offers", len(offers)), zap.Int("skipped", skipped))
	return nil
}

// Page returns a page by ID, or nil.
func (m *Manager) Page(id int32) *Page {
	return m.pages[id]
}

// Pages returns all pages in display order.
func (m *Manager) Pages() []*Page {
	return m.order
}

// PagesForRank returns the pages visible to an account rank.
func (m *Manager) PagesForRank(rank int16) []*Page {
	var out []*Page
	for _, p := range m.order {
		if p.MinRank <= rank {
			out = append(out, p)
		}
	}
	return out
}

// Offer returns an offer by ID, or nil.
func (m *Manager) Offer(id int32) *Offer {
	return m.offers[id]
}

// OfferCount returns the number of valid offers loaded.
func (m *Manager) OfferCount() int {
	return len(m.offers)
}
