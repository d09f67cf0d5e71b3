// Package assistant turns free-text shopping commands into cart actions.
//
// Interpretation is a deterministic rule cascade over the utterance, the
// current cart, and the catalog. The rule order is part of the contract:
// changing it changes which intent wins for utterances that match several
// rules.
package assistant

import (
	"strings"

	"github.com/utafrali/shopfront/internal/domain"
)

// Clarification prompts attached to ViewCart intents when a remove request
// could not be resolved to a product.
const (
	PromptChooseRemoval   = "Here's your cart. Which item would you like to remove?"
	PromptNothingToRemove = "Your cart is empty, nothing to remove."
	PromptShowCart        = "Here's your current cart:"
)

// utteranceContext is what a rule sees: the lowercased text plus snapshots
// of the cart and catalog taken before interpretation.
type utteranceContext struct {
	utterance string // original text, carried into search queries
	text      string // lowercased for matching
	cartLines []domain.CartLine
	products  []domain.Product
}

// rule is one step of the cascade: a predicate on the utterance and an
// intent builder invoked when the predicate fires.
type rule struct {
	match func(c utteranceContext) bool
	build func(c utteranceContext) domain.Intent
}

// rules is evaluated in order, first match wins. The ordering is an
// observable contract: "remove" is checked before the generic "cart" rule,
// and the clear rule sits after it, so "clear my cart" resolves to viewing
// the cart rather than clearing it. Clearing stays reachable through the
// direct cart API.
var rules = []rule{
	{
		// "add"/"buy" resolves against the catalog; an unresolved target
		// degrades to a search for the whole utterance, never to an error.
		match: containsAny("add", "buy"),
		build: func(c utteranceContext) domain.Intent {
			if id, ok := matchProduct(c.text, c.products); ok {
				return domain.Intent{Action: domain.ActionAddToCart, ProductID: id}
			}
			return domain.Intent{Action: domain.ActionSearch, Query: c.utterance}
		},
	},
	{
		// "remove"/"delete" resolves against cart lines, not the catalog.
		match: containsAny("remove", "delete"),
		build: func(c utteranceContext) domain.Intent {
			removeAll := containsAny("all", "completely", "entirely")(c)

			if id, ok := matchCartLine(c.text, c.cartLines); ok {
				if removeAll {
					return domain.Intent{Action: domain.ActionRemoveAll, ProductID: id}
				}
				return domain.Intent{Action: domain.ActionRemoveOne, ProductID: id}
			}

			if len(c.cartLines) > 0 {
				return domain.Intent{Action: domain.ActionViewCart, Prompt: PromptChooseRemoval}
			}
			return domain.Intent{Action: domain.ActionViewCart, Prompt: PromptNothingToRemove}
		},
	},
	{
		match: containsAny("cart", "show"),
		build: func(c utteranceContext) domain.Intent {
			return domain.Intent{Action: domain.ActionViewCart, Prompt: PromptShowCart}
		},
	},
	{
		match: func(c utteranceContext) bool {
			return strings.Contains(c.text, "clear") && strings.Contains(c.text, "cart")
		},
		build: func(c utteranceContext) domain.Intent {
			return domain.Intent{Action: domain.ActionClearCart}
		},
	},
}

// Interpret resolves an utterance to an Intent by running the rule cascade.
// Free text matching no rule falls through to a search with the whole
// utterance as the query.
func Interpret(utterance string, cartLines []domain.CartLine, products []domain.Product) domain.Intent {
	c := utteranceContext{
		utterance: utterance,
		text:      strings.ToLower(utterance),
		cartLines: cartLines,
		products:  products,
	}

	for _, r := range rules {
		if r.match(c) {
			return r.build(c)
		}
	}
	return domain.Intent{Action: domain.ActionSearch, Query: utterance}
}

// containsAny builds a predicate that fires when any keyword appears in
// the lowercased utterance.
func containsAny(keywords ...string) func(c utteranceContext) bool {
	return func(c utteranceContext) bool {
		for _, kw := range keywords {
			if strings.Contains(c.text, kw) {
				return true
			}
		}
		return false
	}
}

// matchProduct returns the first catalog product whose title contains a
// word that appears in the utterance. Catalog order is the tie-break.
func matchProduct(text string, products []domain.Product) (string, bool) {
	for _, p := range products {
		if titleTokenInText(text, p.Title) {
			return p.ID, true
		}
	}
	return "", false
}

// matchCartLine is matchProduct against the cart, in line order.
func matchCartLine(text string, lines []domain.CartLine) (string, bool) {
	for _, line := range lines {
		if titleTokenInText(text, line.Title) {
			return line.ProductID, true
		}
	}
	return "", false
}

func titleTokenInText(text, title string) bool {
	for _, token := range strings.Fields(strings.ToLower(title)) {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}
