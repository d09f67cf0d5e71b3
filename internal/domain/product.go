package domain

// Product is a catalog entry. Prices are stored in the smallest currency
// unit as int64 to avoid floating point drift.
type Product struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
}
