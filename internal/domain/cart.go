package domain

import "time"

// Page identifies which storefront view the session is currently on.
type Page string

const (
	PageHome            Page = "home"
	PageSearchResults   Page = "search_results"
	PageCart            Page = "cart"
	PageCheckoutSuccess Page = "checkout_success"
)

// CartState is the full per-session storefront state: the cart lines plus
// the current page and the last search query.
type CartState struct {
	SessionID   string     `json:"session_id"`
	Lines       []CartLine `json:"lines"`
	CurrentPage Page       `json:"current_page"`
	LastSearch  string     `json:"last_search"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CartLine is a single product entry in the cart. Title and Price are
// snapshots taken when the line is first added, so later catalog changes
// do not silently reprice a cart.
type CartLine struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// NewCartState returns an empty cart on the home page for the given session.
func NewCartState(sessionID string) *CartState {
	now := time.Now().UTC()
	return &CartState{
		SessionID:   sessionID,
		Lines:       []CartLine{},
		CurrentPage: PageHome,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Subtotal returns the sum of price times quantity over all lines.
func (c *CartState) Subtotal() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.Price * int64(line.Quantity)
	}
	return total
}

// ItemCount returns the total quantity across all lines.
func (c *CartState) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// FindLineIndex returns the index of the line for the given product ID,
// or -1 if the product is not in the cart.
func (c *CartState) FindLineIndex(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
