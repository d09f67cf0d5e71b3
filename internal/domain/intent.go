package domain

// Action is the storefront operation an interpreted utterance resolves to.
type Action string

const (
	ActionAddToCart Action = "add_to_cart"
	ActionRemoveOne Action = "remove_one"
	ActionRemoveAll Action = "remove_all"
	ActionViewCart  Action = "view_cart"
	ActionClearCart Action = "clear_cart"
	ActionSearch    Action = "search"

	// ActionUnrecognized and ActionError never come out of the rule
	// cascade itself; they exist so executors can respond to intents
	// produced by other sources (or future rules) with a clarification
	// instead of failing.
	ActionUnrecognized Action = "unrecognized"
	ActionError        Action = "error"
)

// Intent is the outcome of interpreting a chat utterance. Exactly one of
// ProductID or Query is meaningful depending on the action. Prompt carries
// a clarification message for actions that could not be fully resolved,
// such as a remove request that names no product in the cart.
type Intent struct {
	Action    Action `json:"action"`
	ProductID string `json:"product_id,omitempty"`
	Query     string `json:"query,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
}
