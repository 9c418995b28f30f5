package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
)

func ptr[T any](v T) *T { return &v }

func productIDs(products []model.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

// ==================== ProductService ====================

func TestProductService_CreateValidation(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewProductService(repos.products, repos.clubs, repos.links)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CreateProductReq
	}{
		{"缺少名称", dto.CreateProductReq{Category: "Camisetas", Price: ptr(100.0)}},
		{"缺少分类", dto.CreateProductReq{Name: "Camiseta", Price: ptr(100.0)}},
		{"缺少价格", dto.CreateProductReq{Name: "Camiseta", Category: "Camisetas"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
		})
	}

	// 询价商品可以不填价格
	p, err := svc.Create(ctx, &dto.CreateProductReq{Name: "Kit", Category: "Kits", PriceOnRequest: true})
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Nil(t, p.Price)
}

func TestProductService_CreateDefaults(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewProductService(repos.products, repos.clubs, repos.links)
	ctx := context.Background()

	first, err := svc.Create(ctx, &dto.CreateProductReq{
		Name:     "Camiseta",
		Category: "Camisetas",
		Price:    ptr(20000.0),
		Images:   []string{"https://cdn/a.png", "https://cdn/b.png"},
		Fabrics:  map[string]float64{"Dry-fit": 26000},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/a.png", first.Image)
	assert.Len(t, first.ImagePositions, 2)
	assert.Equal(t, 0, first.OrderIndex)

	second, err := svc.Create(ctx, &dto.CreateProductReq{Name: "Short", Category: "Shorts", Price: ptr(1.0), Active: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 1, second.OrderIndex)
	assert.False(t, second.Active)

	stored, err := svc.Get(ctx, first.ID, repository.ScopeAdmin)
	require.NoError(t, err)
	assert.Equal(t, 26000.0, stored.Fabrics.Data()["Dry-fit"])

	_, err = svc.Get(ctx, second.ID, repository.ScopePublic)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_UpdateAndReorder(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewProductService(repos.products, repos.clubs, repos.links)
	ctx := context.Background()

	a := seedPricedProduct(t, repos.products, "A", 1)
	b := seedPricedProduct(t, repos.products, "B", 2)
	c := seedPricedProduct(t, repos.products, "C", 3)

	updated, err := svc.Update(ctx, a.ID, &dto.UpdateProductReq{Name: ptr("A2"), ClearPrice: true, PriceOnRequest: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, "A2", updated.Name)
	assert.Nil(t, updated.Price)

	// 清空价格但不是询价商品
	_, err = svc.Update(ctx, b.ID, &dto.UpdateProductReq{ClearPrice: true})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	require.NoError(t, svc.Reorder(ctx, []dto.ReorderEntry{
		{ID: c.ID, OrderIndex: 0},
		{ID: a.ID, OrderIndex: 1},
		{ID: b.ID, OrderIndex: 2},
	}))
	list, err := svc.List(ctx, dto.ProductQuery{}, repository.ScopeAdmin)
	require.NoError(t, err)
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, productIDs(list))

	assert.ErrorAs(t, svc.Reorder(ctx, nil), &vErr)
	assert.ErrorAs(t, svc.Reorder(ctx, []dto.ReorderEntry{{ID: a.ID}, {ID: a.ID, OrderIndex: 1}}), &vErr)
	assert.ErrorIs(t, svc.Reorder(ctx, []dto.ReorderEntry{{ID: 999}}), ErrNotFound)
}

func TestProductService_ListByClub(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewProductService(repos.products, repos.clubs, repos.links)
	ctx := context.Background()

	a := seedPricedProduct(t, repos.products, "A", 1)
	seedPricedProduct(t, repos.products, "B", 2)
	club := seedTestClub(t, repos.clubs, "Club Norte", "club-norte", "")

	clubs, err := svc.SetClubs(ctx, a.ID, []int64{club.ID, club.ID})
	require.NoError(t, err)
	require.Len(t, clubs, 1)

	bySlug, err := svc.List(ctx, dto.ProductQuery{Club: "club-norte"}, repository.ScopePublic)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, productIDs(bySlug))

	byID, err := svc.List(ctx, dto.ProductQuery{Club: strconv.FormatInt(club.ID, 10)}, repository.ScopePublic)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, productIDs(byID))

	unknown, err := svc.List(ctx, dto.ProductQuery{Club: "no-existe"}, repository.ScopePublic)
	require.NoError(t, err)
	assert.Empty(t, unknown)

	_, err = svc.SetClubs(ctx, a.ID, []int64{club.ID, 999})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

// ==================== ClubService ====================

func TestClubService_SlugGenerationAndConflict(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewClubService(repos.clubs, repos.products, repos.links)
	ctx := context.Background()

	club, err := svc.Create(ctx, &dto.CreateClubReq{Name: "Club Atlético River!"})
	require.NoError(t, err)
	assert.Equal(t, "club-atletico-river", club.Slug)
	assert.Equal(t, model.ClientTypeClub, club.ClientType)

	_, err = svc.Create(ctx, &dto.CreateClubReq{Name: "Otro", Slug: "club-atletico-river"})
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, msgSlugTaken, cErr.Message)

	_, err = svc.Create(ctx, &dto.CreateClubReq{Name: "  "})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	// slug 传空字符串按名称重新生成
	updated, err := svc.Update(ctx, club.ID, &dto.UpdateClubReq{Name: ptr("Club Ñandú"), Slug: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "club-nandu", updated.Slug)

	found, err := svc.GetBySlug(ctx, "club-nandu", repository.ScopePublic)
	require.NoError(t, err)
	assert.Equal(t, club.ID, found.ID)
}

func TestClubService_Products(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewClubService(repos.clubs, repos.products, repos.links)
	ctx := context.Background()

	club := seedTestClub(t, repos.clubs, "Club Norte", "club-norte", "")
	a := seedPricedProduct(t, repos.products, "A", 1)
	b := seedPricedProduct(t, repos.products, "B", 2)

	products, err := svc.SetProducts(ctx, club.ID, []int64{b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, a.ID}, productIDs(products))

	var cErr *ConflictError
	assert.ErrorAs(t, svc.AddProduct(ctx, club.ID, a.ID), &cErr)

	require.NoError(t, svc.RemoveProduct(ctx, club.ID, a.ID))
	assert.ErrorIs(t, svc.RemoveProduct(ctx, club.ID, a.ID), ErrNotFound)

	var vErr *ValidationError
	_, err = svc.SetProducts(ctx, club.ID, []int64{999})
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.ListProducts(ctx, 999, repository.ScopePublic)
	assert.ErrorIs(t, err, ErrNotFound)
}

// ==================== CategoryService / CarouselService ====================

func TestCategoryService_CreateAndMove(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewCategoryService(repos.categories)
	ctx := context.Background()

	first, err := svc.Create(ctx, &dto.CreateCategoryReq{Name: "Camisetas"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, &dto.CreateCategoryReq{Name: "Shorts"})
	require.NoError(t, err)

	require.NoError(t, svc.Move(ctx, &dto.SwapReq{ID: second.ID, Direction: dto.MoveUp}))

	list, err := svc.List(ctx, repository.ScopePublic)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = svc.Update(ctx, first.ID, &dto.UpdateCategoryReq{Active: ptr(false)})
	require.NoError(t, err)
	list, err = svc.List(ctx, repository.ScopePublic)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.Delete(ctx, 999), ErrNotFound)
}

func TestCarouselService_Create(t *testing.T) {
	repos := newCatalogRepos(setupTestDB(t))
	svc := NewCarouselService(repos.carousel)
	ctx := context.Background()

	_, err := svc.Create(ctx, &dto.CreateCarouselReq{Title: "Sin imagen"})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	img, err := svc.Create(ctx, &dto.CreateCarouselReq{Title: "Temporada", ImageURL: "https://cdn/hero.jpg"})
	require.NoError(t, err)
	assert.True(t, img.Active)

	require.NoError(t, svc.Delete(ctx, img.ID))
	assert.ErrorIs(t, svc.Delete(ctx, img.ID), ErrNotFound)
}
