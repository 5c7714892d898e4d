package domain

// PageState is a page together with its current document.
// Returned to action sources that need to render or inspect the tree.
type PageState struct {
	Page     Page     `json:"page"`
	Document Document `json:"document"`
}
