package cards

import (
	"context"
	"fmt"

	"github.com/perkwise-dev/perkwise/internal/model"
)

// Catalog reads card product definitions from the store.
type Catalog interface {
	Products(ctx context.Context) ([]model.CardProduct, error)
}

// Service provides in-memory lookup over the card product catalog.
type Service struct {
	products []model.CardProduct
	byID     map[string]model.CardProduct
}

// NewService creates a Service from a slice of products.
func NewService(products []model.CardProduct) *Service {
	byID := make(map[string]model.CardProduct, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Service{products: products, byID: byID}
}

// Load reads the catalog from the store and returns a Service.
func Load(ctx context.Context, catalog Catalog) (*Service, error) {
	products, err := catalog.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading card catalog: %w", err)
	}
	return NewService(products), nil
}

// All returns all card products.
func (s *Service) All() []model.CardProduct {
	return s.products
}

// Get returns a card product by ID.
func (s *Service) Get(id string) (model.CardProduct, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Exists reports whether a product ID exists in the catalog.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Benefit returns a benefit by ID, searching every product.
func (s *Service) Benefit(id string) (model.CardBenefit, bool) {
	for _, p := range s.products {
		for _, b := range p.Benefits {
			if b.ID == id {
				return b, true
			}
		}
	}
	return model.CardBenefit{}, false
}
