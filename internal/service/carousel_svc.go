package service

import (
	"context"
	"fmt"
	"strings"

	"teamwear_shop/internal/api/dto"
	"teamwear_shop/internal/model"
	"teamwear_shop/internal/repository"
)

// CarouselService 首页轮播图
type CarouselService struct {
	repo repository.CarouselRepository
}

func NewCarouselService(repo repository.CarouselRepository) *CarouselService {
	return &CarouselService{repo: repo}
}

func (s *CarouselService) List(ctx context.Context, scope repository.Scope) ([]model.CarouselImage, error) {
	images, err := s.repo.List(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("查询轮播图失败: %w", err)
	}
	return images, nil
}

func (s *CarouselService) Create(ctx context.Context, req *dto.CreateCarouselReq) (*model.CarouselImage, error) {
	image := &model.CarouselImage{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		CTAText:     req.CTAText,
		CTALink:     req.CTALink,
		Sortable:    model.Sortable{Active: boolOr(req.Active, true)},
	}
	if image.ImageURL == "" {
		return nil, NewValidationError("La imagen es obligatoria")
	}

	if req.OrderIndex != nil {
		image.OrderIndex = *req.OrderIndex
	} else {
		next, err := s.repo.NextOrderIndex(ctx)
		if err != nil {
			return nil, fmt.Errorf("计算排序失败: %w", err)
		}
		image.OrderIndex = next
	}

	if err := s.repo.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("创建轮播图失败: %w", err)
	}
	return image, nil
}

func (s *CarouselService) Update(ctx context.Context, id int64, req *dto.UpdateCarouselReq) (*model.CarouselImage, error) {
	image, err := s.repo.GetByID(ctx, id, repository.ScopeAdmin)
	if err != nil {
		return nil, fmt.Errorf("查询轮播图失败: %w", err)
	}
	if image == nil {
		return nil, ErrNotFound
	}

	if req.Title != nil {
		image.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		image.Description = *req.Description
	}
	if req.ImageURL != nil {
		image.ImageURL = strings.TrimSpace(*req.ImageURL)
		if image.ImageURL == "" {
			return nil, NewValidationError("La imagen es obligatoria")
		}
	}
	if req.CTAText != nil {
		image.CTAText = *req.CTAText
	}
	if req.CTALink != nil {
		image.CTALink = *req.CTALink
	}
	if req.Active != nil {
		image.Active = *req.Active
	}
	if req.OrderIndex != nil {
		image.OrderIndex = *req.OrderIndex
	}

	if err := s.repo.Update(ctx, image); err != nil {
		return nil, fmt.Errorf("更新轮播图失败: %w", err)
	}
	return image, nil
}

func (s *CarouselService) Delete(ctx context.Context, id int64) error {
	return storeError(s.repo.Delete(ctx, id), "")
}

func (s *CarouselService) Move(ctx context.Context, req *dto.SwapReq) error {
	return storeError(s.repo.Move(ctx, req.ID, repository.MoveDirection(req.Direction)), "")
}
