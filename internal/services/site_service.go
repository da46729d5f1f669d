package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "finflow/internal/errors"
	"finflow/internal/models"
	"finflow/internal/pagination"
)

// siteService handles construction sites.
type siteService struct {
	db *gorm.DB
}

// NewSiteService creates a new SiteServicer.
func NewSiteService(db *gorm.DB) SiteServicer {
	return &siteService{db: db}
}

func (s *siteService) CreateSite(reference, name, city string, status models.SiteStatus, plannedEnd *time.Time) (*models.ConstructionSite, error) {
	reference = strings.TrimSpace(reference)
	name = strings.TrimSpace(name)
	if reference == "" || name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reference and name are required")
	}
	if status == "" {
		status = models.SiteQuote
	}

	var count int64
	if err := s.db.Unscoped().Model(&models.ConstructionSite{}).Where("reference = ?", reference).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateSiteRef
	}

	site := &models.ConstructionSite{
		Reference:  reference,
		Name:       name,
		City:       strings.TrimSpace(city),
		Status:     status,
		PlannedEnd: plannedEnd,
	}
	if err := s.db.Create(site).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return site, nil
}

func (s *siteService) GetSite(id string) (*models.ConstructionSite, error) {
	var site models.ConstructionSite
	if err := s.db.Where("id = ?", id).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSiteNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &site, nil
}

func (s *siteService) ListSites(page pagination.PageRequest, status *models.SiteStatus) (*pagination.PageResponse[models.ConstructionSite], error) {
	q := s.db.Model(&models.ConstructionSite{})
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	result, err := pagination.Fetch[models.ConstructionSite](q, page, "reference ASC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
