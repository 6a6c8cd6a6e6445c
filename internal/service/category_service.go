package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lucontre/expense-tracker-pro-sub000/internal/dto"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/model"
	"github.com/lucontre/expense-tracker-pro-sub000/internal/repository"
)

// ── 分类模块业务错误 ──

var (
	ErrCategoryNotFound = errors.New("分类不存在")
	ErrCategoryInUse    = errors.New("分类下存在流水，无法删除")
	ErrCategoryExists   = errors.New("同类型下已存在同名分类")
)

// CategoryService 分类业务接口
type CategoryService interface {
	Create(ctx context.Context, userID string, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context, userID string, req *dto.CategoryListRequest) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, userID, categoryID string, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, userID, categoryID string) error
}

type categoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCategoryService 创建 CategoryService 实例
func NewCategoryService(repo *repository.Repository, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, logger: logger}
}

func (s *categoryService) Create(ctx context.Context, userID string, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := s.ensureNameFree(ctx, userID, req.Kind, req.Name, ""); err != nil {
		return nil, err
	}

	category := &model.Category{
		UserID: userID,
		Name:   req.Name,
		Kind:   req.Kind,
		Icon:   req.Icon,
		Color:  req.Color,
	}

	if err := s.repo.Category.Create(ctx, category); err != nil {
		s.logger.Error("创建分类失败", zap.Error(err))
		return nil, err
	}

	return toCategoryResponse(category), nil
}

func (s *categoryService) List(ctx context.Context, userID string, req *dto.CategoryListRequest) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.Category.List(ctx, userID, req.Kind)
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		result = append(result, *toCategoryResponse(&categories[i]))
	}
	return result, nil
}

func (s *categoryService) Update(ctx context.Context, userID, categoryID string, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.getOwned(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != category.Name {
		if err := s.ensureNameFree(ctx, userID, category.Kind, *req.Name, category.CategoryID); err != nil {
			return nil, err
		}
		category.Name = *req.Name
	}
	if req.Icon != nil {
		category.Icon = req.Icon
	}
	if req.Color != nil {
		category.Color = req.Color
	}

	if err := s.repo.Category.Update(ctx, category); err != nil {
		s.logger.Error("更新分类失败", zap.String("id", categoryID), zap.Error(err))
		return nil, err
	}

	return toCategoryResponse(category), nil
}

func (s *categoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if _, err := s.getOwned(ctx, userID, categoryID); err != nil {
		return err
	}

	// 有流水引用的分类不允许删除
	count, err := s.repo.Transaction.CountByCategory(ctx, categoryID)
	if err != nil {
		s.logger.Error("统计分类引用失败", zap.String("id", categoryID), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.repo.Category.Delete(ctx, categoryID); err != nil {
		s.logger.Error("删除分类失败", zap.String("id", categoryID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// ensureNameFree 校验同用户同类型下分类名唯一；excludeID 用于更新时排除自身
func (s *categoryService) ensureNameFree(ctx context.Context, userID, kind, name, excludeID string) error {
	categories, err := s.repo.Category.List(ctx, userID, kind)
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return err
	}
	for i := range categories {
		if categories[i].Name == name && categories[i].CategoryID != excludeID {
			return ErrCategoryExists
		}
	}
	return nil
}

// getOwned 加载分类并校验归属；他人的分类一律按不存在处理
func (s *categoryService) getOwned(ctx context.Context, userID, categoryID string) (*model.Category, error) {
	category, err := s.repo.Category.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("查询分类失败", zap.String("id", categoryID), zap.Error(err))
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func toCategoryResponse(category *model.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:    category.CategoryID,
		Name:  category.Name,
		Kind:  category.Kind,
		Icon:  category.Icon,
		Color: category.Color,
	}
}
