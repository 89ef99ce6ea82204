package domain

import "time"

// Product is the catalog entry an analytics row belongs to.
// Products are owned by the catalog; analytics only reads them.
type Product struct {
	ID           int64
	PhotoURL     string
	Link         string
	Title        string
	Description  *string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductAnalytics is the counter aggregate for one product.
// ViewCount and ClickCount never decrease.
type ProductAnalytics struct {
	ID            int64
	ProductID     int64
	ViewCount     int64
	ClickCount    int64
	LastClickedAt *time.Time // nil until the first counted click
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Product is populated by ranked reads only.
	Product *Product
}

// Totals are sums across all counter aggregates.
// TotalProducts counts products with at least one aggregate row.
type Totals struct {
	TotalViews    int64
	TotalClicks   int64
	TotalProducts int64
}
