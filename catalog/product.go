package catalog

// ProductSnapshot captures a product as seen at the moment it entered the
// conversation. It can go stale relative to the live catalog; the remote cart
// is authoritative for pricing once a checkout exists.
type ProductSnapshot struct {
	ID          string `json:"id"`
	VariantID   string `json:"variant_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Price       Price  `json:"price"`
}

// SearchCategory is a curated storefront section the assistant can expand
// into a product listing.
type SearchCategory struct {
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Query       string `json:"query"`
}

// ProductSection groups the results of one category search for display.
type ProductSection struct {
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle"`
	Description string            `json:"description"`
	Products    []ProductSnapshot `json:"products"`
}

// CloneSnapshots returns a copy of a snapshot slice safe to hand across
// component boundaries.
func CloneSnapshots(in []ProductSnapshot) []ProductSnapshot {
	if in == nil {
		return nil
	}
	out := make([]ProductSnapshot, len(in))
	copy(out, in)
	return out
}
