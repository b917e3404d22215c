package domain

// CollectionItem represents one element of the user's remote collection
// (favorites) as currently known locally.
type CollectionItem struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	SKU        string   `json:"sku,omitempty"`
	Model      string   `json:"model,omitempty"`
	Price      int64    `json:"price"`
	SalePrice  int64    `json:"sale_price,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	Categories []string `json:"categories,omitempty"`
	ImageURL   string   `json:"image_url,omitempty"`
}

// NewStubItem returns the optimistic placeholder inserted at the front of the
// view while an addition is in flight. Only the ID is known; a successful
// addition triggers a full reload that backfills the remaining fields.
func NewStubItem(id int64) CollectionItem {
	return CollectionItem{ID: id}
}

// IsStub reports whether the item is an optimistic placeholder that has not
// been backfilled yet.
func (i CollectionItem) IsStub() bool {
	return i.Name == "" && i.Price == 0
}

// CollectionView is the snapshot of the local collection observed by
// consumers: items in insertion order (newest first), ids with an operation
// in flight, and whether the initial load has completed.
type CollectionView struct {
	Items   []CollectionItem `json:"items"`
	Pending []int64          `json:"pending,omitempty"`
	Loading bool             `json:"loading"`
}

// ItemCount returns the number of items in the view.
func (v CollectionView) ItemCount() int {
	return len(v.Items)
}

// FindItemIndex returns the index of the item with the given id in items, or
// -1 if not present. O(n), but the slice is small and this centralizes the
// lookup.
func FindItemIndex(items []CollectionItem, id int64) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
