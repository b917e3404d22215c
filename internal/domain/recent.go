package domain

import "time"

// DefaultRecentCapacity is the number of recently-viewed items kept per
// device when no explicit capacity is configured.
const DefaultRecentCapacity = 10

// RecentItem is a snapshot of a viewed product sufficient to render a
// thumbnail later. It mirrors the catalog item's display fields; there is no
// network dependency when reading it back.
type RecentItem struct {
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku,omitempty"`
	Price     int64     `json:"price"`
	SalePrice int64     `json:"sale_price,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// PushRecent returns items with item at the front, any previous entry for the
// same product removed, truncated to capacity. Eviction is purely
// capacity-driven; entries never expire by time.
func PushRecent(items []RecentItem, item RecentItem, capacity int) []RecentItem {
	if capacity <= 0 {
		capacity = DefaultRecentCapacity
	}

	out := make([]RecentItem, 0, len(items)+1)
	out = append(out, item)
	for _, existing := range items {
		if existing.ProductID == item.ProductID {
			continue
		}
		out = append(out, existing)
	}

	if len(out) > capacity {
		out = out[:capacity]
	}
	return out
}

// FindRecent returns the index of the entry for productID and whether it
// exists.
func FindRecent(items []RecentItem, productID int64) (int, bool) {
	for i, it := range items {
		if it.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}
