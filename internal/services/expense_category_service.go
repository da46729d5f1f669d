package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
)

const defaultCategoryColor = "#6c757d"

// expenseCategoryService handles expense category reference data.
type expenseCategoryService struct {
	db *gorm.DB
}

// NewExpenseCategoryService creates a new ExpenseCategoryServicer.
func NewExpenseCategoryService(db *gorm.DB) ExpenseCategoryServicer {
	return &expenseCategoryService{db: db}
}

// CreateCategory creates a new active category
func (s *expenseCategoryService) CreateCategory(name string, kind models.ExpenseKind, color string, displayOrder int) (*models.ExpenseCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if kind == "" {
		kind = models.KindOther
	}
	if color == "" {
		color = defaultCategoryColor
	}

	if err := s.ensureNameFree(name, ""); err != nil {
		return nil, err
	}

	category := &models.ExpenseCategory{
		Name:         name,
		Kind:         kind,
		Color:        color,
		Active:       true,
		DisplayOrder: displayOrder,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// ListCategories returns categories in display order.
func (s *expenseCategoryService) ListCategories(activeOnly bool) ([]models.ExpenseCategory, error) {
	q := s.db.Model(&models.ExpenseCategory{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var categories []models.ExpenseCategory
	if err := q.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if categories == nil {
		categories = []models.ExpenseCategory{}
	}
	return categories, nil
}

// UpdateCategory applies the non-nil fields.
func (s *expenseCategoryService) UpdateCategory(id string, name *string, color *string, active *bool, displayOrder *int) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := s.db.Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updates := map[string]interface{}{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if trimmed != category.Name {
			if err := s.ensureNameFree(trimmed, category.ID); err != nil {
				return nil, err
			}
		}
		updates["name"] = trimmed
		category.Name = trimmed
	}
	if color != nil {
		updates["color"] = *color
		category.Color = *color
	}
	if active != nil {
		updates["active"] = *active
		category.Active = *active
	}
	if displayOrder != nil {
		updates["display_order"] = *displayOrder
		category.DisplayOrder = *displayOrder
	}
	if len(updates) == 0 {
		return &category, nil
	}

	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func (s *expenseCategoryService) ensureNameFree(name, exceptID string) error {
	q := s.db.Model(&models.ExpenseCategory{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategoryName
	}
	return nil
}
