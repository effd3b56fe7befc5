package persist

import "context"

// CataloguePageRow is a row of catalogue_pages with its offers attached.
type CataloguePageRow struct {
	ID        int32
	ParentID  int32
	Caption   string
	MinRank   int16
	SortOrder int32
	Enabled   bool
	Offers    []CatalogueOfferRow
}

// CatalogueOfferRow is a row of catalogue_offers.
type CatalogueOfferRow struct {
	ID     int32
	PageID int32
	DefID  int32
	Name   string
	Cost   int32
	Amount int32
}

type CatalogueRepo struct {
	db *DB
}

func NewCatalogueRepo(db *DB) *CatalogueRepo {
	return &CatalogueRepo{db: db}
}

// LoadPages loads every enabled page with its offers, in display order.
func (r *CatalogueRepo) LoadPages(ctx context.Context) ([]*CataloguePageRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, parent_id, caption, min_rank, sort_order, enabled
		 FROM catalogue_pages WHERE enabled ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*CataloguePageRow
	byID := make(map[int32]*CataloguePageRow)
	for rows.Next() {
		p := &CataloguePageRow{}
		if err := rows.Scan(&p.ID, &p.ParentID, &p.Caption, &p.MinRank, &p.SortOrder, &p.Enabled); err != nil {
			return nil, err
		}
		pages = append(pages, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	offerRows, err := r.db.Pool.Query(ctx,
		`SELECT id, page_id, def_id, name, cost, amount FROM catalogue_offers ORDER BY page_id, id`)
	if err != nil {
		return nil, err
	}
	defer offerRows.Close()

	for offerRows.Next() {
		var o CatalogueOfferRow
		if err := offerRows.Scan(&o.ID, &o.PageID, &o.DefID, &o.Name, &o.Cost, &o.Amount); err != nil {
			return nil, err
		}
		if p, ok := byID[o.PageID]; ok {
			p.Offers = append(p.Offers, o)
		}
	}
	return pages, offerRows.Err()
}
