package service

import (
	"context"
	"fmt"
	"strings"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
	"teamwear_shop/pkg/utils"
)

const (
	msgSlugTaken       = "Ya existe un club con ese slug"
	msgLinkExists      = "El producto ya está asociado a este club"
	msgInvalidClubSlug = "El slug no puede quedar vacío"
)

// ClubService 俱乐部服务
type ClubService struct {
	clubRepo    repository.ClubRepository
	productRepo repository.ProductRepository
	linkRepo    repository.ClubProductRepository
}

// NewClubService 创建俱乐部服务
func NewClubService(
	clubRepo repository.ClubRepository,
	productRepo repository.ProductRepository,
	linkRepo repository.ClubProductRepository,
) *ClubService {
	return &ClubService{
		clubRepo:    clubRepo,
		productRepo: productRepo,
		linkRepo:    linkRepo,
	}
}

// List 俱乐部列表
func (s *ClubService) List(ctx context.Context, scope repository.Scope) ([]model.Club, error) {
	clubs, err := s.clubRepo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("查询俱乐部列表失败: %w", err)
	}
	return clubs, nil
}

// Get 俱乐部详情
func (s *ClubService) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Club, error) {
	club, err := s.clubRepo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, fmt.Errorf("查询俱乐部失败: %w", err)
	}
	if club == nil {
		return nil, ErrNotFound
	}
	return club, nil
}

// GetBySlug 按 slug 查询（店铺页入口）
func (s *ClubService) GetBySlug(ctx context.Context, slug string, scope repository.Scope) (*model.Club, error) {
	club, err := s.clubRepo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)), scope)
	if err != nil {
		return nil, fmt.Errorf("查询俱乐部失败: %w", err)
	}
	if club == nil {
		return nil, ErrNotFound
	}
	return club, nil
}

// Create 创建俱乐部，未提供 slug 时由名称生成
func (s *ClubService) Create(ctx context.Context, req *dto.CreateClubReq) (*model.Club, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("El nombre es obligatorio")
	}

	slug := utils.Slugify(req.Slug)
	if strings.TrimSpace(req.Slug) == "" {
		slug = utils.Slugify(name)
	}
	if slug == "" {
		return nil, NewValidationError(msgInvalidClubSlug)
	}

	club := &model.Club{
		Name:               name,
		Slug:               slug,
		Description:        req.Description,
		LogoURL:            req.LogoURL,
		ClientType:         defaultString(req.ClientType, model.ClientTypeClub),
		BackgroundType:     defaultString(req.BackgroundType, model.BackgroundColor),
		BackgroundColor:    req.BackgroundColor,
		BackgroundImageURL: req.BackgroundImageURL,
		BackgroundOverlay:  req.BackgroundOverlay,
		NotificationEmail:  strings.TrimSpace(req.NotificationEmail),
		Sortable:           model.Sortable{Active: boolOr(req.Active, true)},
	}

	if req.OrderIndex != nil {
		club.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.clubRepo.NextOrderIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("计算排序失败: %w", err)
		}
		club.OrderIndex = next
	}

	if err := s.clubRepo.Create(ctx, club); err != nil {
		return nil, storeError(err, msgSlugTaken)
	}
	return club, nil
}

// Update 部分更新俱乐部
func (s *ClubService) Update(ctx context.Context, id int64, req *dto.UpdateClubReq) (*model.Club, error) {
	club, err := s.Get(ctx, id, repository.ScopeAdmin)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		club.Name = strings.TrimSpace(*req.Name)
		if club.Name == "" {
			return nil, NewValidationError("El nombre es obligatorio")
		}
	}
	if req.Slug != nil {
		// 显式传空字符串表示按名称重新生成
		slug := utils.Slugify(*req.Slug)
		if strings.TrimSpace(*req.Slug) == "" {
			slug = utils.Slugify(club.Name)
		}
		if slug == "" {
			return nil, NewValidationError(msgInvalidClubSlug)
		}
		club.Slug = slug
	}
	if req.Description != nil {
		club.Description = *req.Description
	}
	if req.LogoURL != nil {
		club.LogoURL = *req.LogoURL
	}
	if req.ClientType != nil {
		club.ClientType = defaultString(*req.ClientType, model.ClientTypeClub)
	}
	if req.BackgroundType != nil {
		club.BackgroundType = defaultString(*req.BackgroundType, model.BackgroundColor)
	}
	if req.BackgroundColor != nil {
		club.BackgroundColor = *req.BackgroundColor
	}
	if req.BackgroundImageURL != nil {
		club.BackgroundImageURL = *req.BackgroundImageURL
	}
	if req.BackgroundOverlay != nil {
		club.BackgroundOverlay = *req.BackgroundOverlay
	}
	if req.NotificationEmail != nil {
		club.NotificationEmail = strings.TrimSpace(*req.NotificationEmail)
	}
	if req.Active != nil {
		club.Active = *req.Active
	}
	if req.OrderIndex != nil {
		club.OrderIndex = *req.OrderIndex
	}

	if err := s.clubRepo.Update(ctx, club); err != nil {
		return nil, storeError(err, msgSlugTaken)
	}
	return club, nil
}

// Delete 删除俱乐部
func (s *ClubService) Delete(ctx context.Context, id int64) error {
	return storeError(s.clubRepo.Delete(ctx, id), "")
}

// Move 与相邻俱乐部交换位置
func (s *ClubService) Move(ctx context.Context, req *dto.SwapReq) error {
	return storeError(s.clubRepo.Move(ctx, req.ID, repository.MoveDirection(req.Direction)), "")
}

// ==================== 俱乐部商品 ====================

// ListProducts 俱乐部商品（按关联顺序）
func (s *ClubService) ListProducts(ctx context.Context, clubID int64, scope repository.Scope) ([]model.Product, error) {
	if _, err := s.Get(ctx, clubID, scope); err != nil {
		return nil, err
	}
	products, err := s.linkRepo.ListProducts(ctx, clubID, scope)
	if err != nil {
		return nil, fmt.Errorf("查询俱乐部商品失败: %w", err)
	}
	return products, nil
}

// SetProducts 替换俱乐部商品集合
func (s *ClubService) SetProducts(ctx context.Context, clubID int64, productIDs []int64) ([]model.Product, error) {
	if _, err := s.Get(ctx, clubID, repository.ScopeAdmin); err != nil {
		return nil, err
	}
	productIDs = uniqueIDs(productIDs)
	if err := s.ensureProductsExist(ctx, productIDs); err != nil {
		return nil, err
	}
	if err := s.linkRepo.ReplaceForClub(ctx, clubID, productIDs); err != nil {
		return nil, fmt.Errorf("更新俱乐部商品失败: %w", err)
	}
	return s.linkRepo.ListProducts(ctx, clubID, repository.ScopeAdmin)
}

// AddProduct 添加单个商品
func (s *ClubService) AddProduct(ctx context.Context, clubID, productID int64) error {
	if _, err := s.Get(ctx, clubID, repository.ScopeAdmin); err != nil {
		return err
	}
	if err := s.ensureProductsExist(ctx, []int64{productID}); err != nil {
		return err
	}
	return storeError(s.linkRepo.Add(ctx, clubID, productID), msgLinkExists)
}

// RemoveProduct 移除单个商品
func (s *ClubService) RemoveProduct(ctx context.Context, clubID, productID int64) error {
	return storeError(s.linkRepo.Remove(ctx, clubID, productID), "")
}

func (s *ClubService) ensureProductsExist(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	products, err := s.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("查询商品失败: %w", err)
	}
	if len(products) != len(ids) {
		return NewValidationError("Uno o más productos no existen")
	}
	return nil
}

func defaultString(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
