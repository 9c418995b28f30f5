package service

import (
	"context"
	"fmt"
	"strings"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
)

// CategoryService 分类服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, scope repository.Scope) ([]model.Category, error) {
	categories, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64, scope repository.Scope) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id, scope)
	if err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

func (s *CategoryService) Create(ctx context.Context, req *dto.CreateCategoryReq) (*model.Category, error) {
	category := &model.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Sortable:    model.Sortable{Active: boolOr(req.Active, true)},
	}
	if category.Name == "" {
		return nil, NewValidationError("El nombre es obligatorio")
	}

	if req.OrderIndex != nil {
		category.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("计算排序失败: %w", err)
		}
		category.OrderIndex = next
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("创建分类失败: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req *dto.UpdateCategoryReq) (*model.Category, error) {
	category, err := s.Get(ctx, id, repository.ScopeAdmin)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		category.Name = strings.TrimSpace(*req.Name)
		if category.Name == "" {
			return nil, NewValidationError("El nombre es obligatorio")
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ImageURL != nil {
		category.ImageURL = *req.ImageURL
	}
	if req.Active != nil {
		category.Active = *req.Active
	}
	if req.OrderIndex != nil {
		category.OrderIndex = *req.OrderIndex
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("更新分类失败: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return storeError(s.repo.Delete(ctx, id), "")
}

func (s *CategoryService) Move(ctx context.Context, req *dto.SwapReq) error {
	return storeError(s.repo.Move(ctx, req.ID, repository.MoveDirection(req.Direction)), "")
}
