package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
)

// ==================== ProductService 商品服务 ====================

// ProductService 商品服务
type ProductService struct {
	productRepo repository.ProductRepository
	clubRepo    repository.ClubRepository
	linkRepo    repository.ClubProductRepository
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	clubRepo repository.ClubRepository,
	linkRepo repository.ClubProductRepository,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		clubRepo:    clubRepo,
		linkRepo:    linkRepo,
	}
}

// List 商品列表，club 可以是 slug 或 id
func (s *ProductService) List(ctx context.Context, q dto.ProductQuery, scope repository.Scope) ([]model.Product, error) {
	filter := repository.ProductFilter{
		Scope:    scope,
		Category: strings.TrimSpace(q.Category),
	}

	if club := strings.TrimSpace(q.Club); club != "" {
		clubID, err := s.resolveClubID(ctx, club, scope)
		if err != nil {
			return nil, err
		}
		if clubID == 0 {
			return []model.Product{}, nil
		}
		filter.ClubID = clubID
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("查询商品列表失败: %w", err)
	}
	return products, nil
}

func (s *ProductService) resolveClubID(ctx context.Context, ref string, scope repository.Scope) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		club, err := s.clubRepo.GetByID(ctx, id, scope)
		if err != nil || club == nil {
			return 0, err
		}
		return club.ID, nil
	}
	club, err := s.clubRepo.GetBySlug(ctx, ref, scope)
	if err != nil || club == nil {
		return 0, err
	}
	return club.ID, nil
}

// Get 商品详情
func (s *ProductService) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, req *dto.CreateProductReq) (*model.Product, error) {
	product := &model.Product{
		Name:              strings.TrimSpace(req.Name),
		Category:          strings.TrimSpace(req.Category),
		Description:       req.Description,
		Price:             req.Price,
		PriceOnRequest:    req.PriceOnRequest,
		Images:            stringSlice(req.Images),
		ImagePositions:    datatypes.JSONSlice[model.ImagePosition](req.ImagePositions),
		Sizes:             stringSlice(req.Sizes),
		Fabrics:           model.NewFabrics(req.Fabrics),
		LeadTime:          req.LeadTime,
		AllowCustomName:   req.AllowCustomName,
		AllowCustomNumber: req.AllowCustomNumber,
		Sortable:          model.Sortable{Active: boolOr(req.Active, true)},
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.SyncPrimaryImage()

	if req.OrderIndex != nil {
		product.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.productRepo.NextOrderIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("计算排序失败: %w", err)
		}
		product.OrderIndex = next
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("创建商品失败: %w", err)
	}
	return product, nil
}

// Update 部分更新商品
func (s *ProductService) Update(ctx context.Context, id int64, req *dto.UpdateProductReq) (*model.Product, error) {
	product, err := s.Get(ctx, id, repository.ScopeAdmin)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ClearPrice {
		product.Price = nil
	} else if req.Price != nil {
		product.Price = req.Price
	}
	if req.PriceOnRequest != nil {
		product.PriceOnRequest = *req.PriceOnRequest
	}
	if req.Images != nil {
		product.Images = stringSlice(*req.Images)
	}
	if req.ImagePositions != nil {
		product.ImagePositions = datatypes.JSONSlice[model.ImagePosition](*req.ImagePositions)
	}
	if req.Sizes != nil {
		product.Sizes = stringSlice(*req.Sizes)
	}
	if req.Fabrics != nil {
		product.Fabrics = model.NewFabrics(*req.Fabrics)
	}
	if req.LeadTime != nil {
		product.LeadTime = *req.LeadTime
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if req.AllowCustomName != nil {
		product.AllowCustomName = *req.AllowCustomName
	}
	if req.AllowCustomNumber != nil {
		product.AllowCustomNumber = *req.AllowCustomNumber
	}
	if req.OrderIndex != nil {
		product.OrderIndex = *req.OrderIndex
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}
	product.SyncPrimaryImage()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("更新商品失败: %w", err)
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return storeError(s.productRepo.Delete(ctx, id), "")
}

// Reorder 全量重排
func (s *ProductService) Reorder(ctx context.Context, entries []dto.ReorderEntry) error {
	if len(entries) == 0 {
		return NewValidationError("La lista de orden está vacía")
	}
	seen := make(map[int64]struct{}, len(entries))
	list := make([]repository.OrderEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			return NewValidationError(fmt.Sprintf("Producto %d repetido en la lista de orden", e.ID))
		}
		seen[e.ID] = struct{}{}
		list = append(list, repository.OrderEntry{ID: e.ID, OrderIndex: e.OrderIndex})
	}
	return storeError(s.productRepo.Reorder(ctx, list), "")
}

// ==================== 商品所属俱乐部 ====================

// ListClubs 商品所属俱乐部
func (s *ProductService) ListClubs(ctx context.Context, productID int64) ([]model.Club, error) {
	if _, err := s.Get(ctx, productID, repository.ScopeAdmin); err != nil {
		return nil, err
	}
	ids, err := s.linkRepo.ListClubIDs(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("查询商品俱乐部失败: %w", err)
	}
	return s.clubRepo.ListByIDs(ctx, ids)
}

// SetClubs 替换商品所属俱乐部
func (s *ProductService) SetClubs(ctx context.Context, productID int64, clubIDs []int64) ([]model.Club, error) {
	if _, err := s.Get(ctx, productID, repository.ScopeAdmin); err != nil {
		return nil, err
	}
	clubIDs = uniqueIDs(clubIDs)
	clubs, err := s.clubRepo.ListByIDs(ctx, clubIDs)
	if err != nil {
		return nil, fmt.Errorf("查询俱乐部失败: %w", err)
	}
	if len(clubs) != len(clubIDs) {
		return nil, NewValidationError("Uno o más clubes no existen")
	}
	if err := s.linkRepo.ReplaceForProduct(ctx, productID, clubIDs); err != nil {
		return nil, fmt.Errorf("更新商品俱乐部失败: %w", err)
	}
	return clubs, nil
}

// ==================== 辅助方法 ====================

func validateProduct(p *model.Product) error {
	switch {
	case p.Name == "":
		return NewValidationError("El nombre es obligatorio")
	case p.Category == "":
		return NewValidationError("La categoría es obligatoria")
	case p.Price == nil && !p.PriceOnRequest:
		return NewValidationError("El precio es obligatorio salvo que el producto sea a consultar")
	}
	if len(p.ImagePositions) > len(p.Images) {
		p.ImagePositions = p.ImagePositions[:len(p.Images)]
	}
	return nil
}

func stringSlice(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
