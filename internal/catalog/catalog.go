package catalog

import (
	apperrors "github.com/utafrali/shopfront/pkg/errors"

	"github.com/utafrali/shopfront/internal/domain"
)

// Service holds the product catalog. The catalog is loaded once at startup
// and never mutated afterwards, so reads need no locking.
type Service struct {
	products []domain.Product
	byID     map[string]domain.Product
}

// NewService builds a catalog service over the given products, preserving
// their order.
func NewService(products []domain.Product) *Service {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Service{products: products, byID: byID}
}

// All returns every product in catalog order. The returned slice is a copy;
// callers may reorder or filter it freely.
func (s *Service) All() []domain.Product {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// ByID returns the product with the given ID.
func (s *Service) ByID(id string) (domain.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return p, nil
}

// Len returns the number of products in the catalog.
func (s *Service) Len() int {
	return len(s.products)
}
