package mocks

import (
	"context"

	"affiliate-sync/feature/affiliate/catalog"

	"github.com/stretchr/testify/mock"
)

// Catalog is a mock implementation of catalog.Catalog
type Catalog struct {
	mock.Mock
}

func (m *Catalog) FindCandidates(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if products, ok := args.Get(0).([]catalog.Product); ok {
		return products, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Catalog) Get(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*catalog.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Catalog) Create(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *Catalog) Patch(ctx context.Context, id string, patch catalog.LinkPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}
