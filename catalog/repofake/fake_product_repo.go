package fakeproductrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jrsteele09/storefront-api/catalog"
)

var _ catalog.Repo = (*FakeProductRepo)(nil)

type FakeProductRepo struct {
	products []*catalog.Product
	nextID   int64
	lock     sync.RWMutex
}

func NewFakeProductRepo() *FakeProductRepo {
	return &FakeProductRepo{nextID: 1}
}

func (pr *FakeProductRepo) Create(ctx context.Context, product *catalog.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pr.lock.Lock()
	defer pr.lock.Unlock()

	product.ID = pr.nextID
	pr.nextID++
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	stored := *product
	pr.products = append(pr.products, &stored)
	return nil
}

func (pr *FakeProductRepo) TopSelling(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return pr.filter(ctx, limit, func(p *catalog.Product) bool { return p.IsTopSelling }, nil)
}

func (pr *FakeProductRepo) MostViewed(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return pr.filter(ctx, limit, nil, func(a, b *catalog.Product) bool { return a.ViewsCount > b.ViewsCount })
}

func (pr *FakeProductRepo) BudgetFriendly(ctx context.Context, limit int) ([]*catalog.Product, error) {
	return pr.filter(ctx, limit, func(p *catalog.Product) bool { return p.IsBudgetFriendly }, nil)
}

func (pr *FakeProductRepo) filter(ctx context.Context, limit int, keep func(*catalog.Product) bool, less func(a, b *catalog.Product) bool) ([]*catalog.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pr.lock.RLock()
	defer pr.lock.RUnlock()

	result := make([]*catalog.Product, 0)
	for _, p := range pr.products {
		if keep == nil || keep(p) {
			copied := *p
			result = append(result, &copied)
		}
	}
	if less != nil {
		sort.SliceStable(result, func(i, j int) bool { return less(result[i], result[j]) })
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
