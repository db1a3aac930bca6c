package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huangang/geoconfig/internal/models"
	"github.com/huangang/geoconfig/pkg/logger"
	"gorm.io/gorm"
)

// OverrideService is the override registry. Each (paramID, country) pair
// holds at most one override with its own version counter.
type OverrideService struct {
	db *gorm.DB
}

func NewOverrideService(db *gorm.DB) *OverrideService {
	return &OverrideService{db: db}
}

type AddOverrideRequest struct {
	Country string       `json:"country" binding:"required,country"`
	Value   models.Value `json:"value"`
}

type UpdateOverrideRequest struct {
	Value   models.Value `json:"value"`
	Version *int64       `json:"version" binding:"required,min=0"`
}

// NormalizeCountry upper-cases a country code for storage and lookup.
func NormalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

// List returns every override stored under paramID.
func (s *OverrideService) List(ctx context.Context, paramID string) (overrides []models.Override, err error) {
	defer func() { observe("list_overrides", err) }()

	if err := s.db.WithContext(ctx).Where("param_id = ?", paramID).Order("country ASC").Find(&overrides).Error; err != nil {
		return nil, internalError(err, "list overrides of %s", paramID)
	}
	if overrides == nil {
		overrides = []models.Override{}
	}
	return overrides, nil
}

// ListByCountry scans overrides of every param for one country.
func (s *OverrideService) ListByCountry(ctx context.Context, country string) ([]models.Override, error) {
	var overrides []models.Override
	if err := s.db.WithContext(ctx).Where("country = ?", NormalizeCountry(country)).Find(&overrides).Error; err != nil {
		return nil, internalError(err, "list overrides for %s", country)
	}
	return overrides, nil
}

// Add creates the override for (paramID, country) with version 0, failing
// with KindAlreadyExists when one is already stored.
func (s *OverrideService) Add(ctx context.Context, paramID, country string, value models.Value) (err error) {
	defer func() { observe("add_override", err) }()

	country = NormalizeCountry(country)
	if country == "" {
		return newError(KindInvalidArgument, "country is required")
	}
	if !value.IsDefined() {
		return newError(KindInvalidArgument, "value is required")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Override
		err := tx.Where("param_id = ? AND country = ?", paramID, country).First(&existing).Error
		if err == nil {
			return newError(KindAlreadyExists, "override for %s already exists", country)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return internalError(err, "look up override %s/%s", paramID, country)
		}

		override := models.Override{
			ParamID: paramID,
			Country: country,
			Value:   value,
		}
		if err := tx.Create(&override).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(KindAlreadyExists, "override for %s already exists", country)
			}
			return internalError(err, "create override %s/%s", paramID, country)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Str("param_id", paramID).Str("country", country).Msg("override created")
	return nil
}

// Update replaces the override value when the stored version equals
// req.Version and bumps the version.
func (s *OverrideService) Update(ctx context.Context, paramID, country string, req *UpdateOverrideRequest) (err error) {
	defer func() { observe("update_override", err) }()

	country = NormalizeCountry(country)
	if !req.Value.IsDefined() {
		return newError(KindInvalidArgument, "value is required")
	}
	if req.Version == nil {
		return newError(KindInvalidArgument, "version is required")
	}
	expected := *req.Version

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Override
		if err := tx.Where("param_id = ? AND country = ?", paramID, country).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "override not found for %s", country)
			}
			return internalError(err, "load override %s/%s", paramID, country)
		}
		if current.Version != expected {
			return newError(KindVersionConflict, "version mismatch (current=%d, you sent=%d)", current.Version, expected)
		}

		result := tx.Model(&models.Override{}).
			Where("param_id = ? AND country = ? AND version = ?", paramID, country, expected).
			Updates(map[string]interface{}{
				"value":      req.Value,
				"version":    gorm.Expr("version + ?", 1),
				"updated_at": tx.NowFunc(),
			})
		if result.Error != nil {
			return internalError(result.Error, "update override %s/%s", paramID, country)
		}
		if result.RowsAffected == 0 {
			return newError(KindVersionConflict, "override for %s was modified concurrently", country)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Str("param_id", paramID).Str("country", country).Int64("version", expected+1).Msg("override updated")
	return nil
}

// Delete removes the override if present; a missing override is not an error.
func (s *OverrideService) Delete(ctx context.Context, paramID, country string) (err error) {
	defer func() { observe("delete_override", err) }()

	country = NormalizeCountry(country)
	result := s.db.WithContext(ctx).Where("param_id = ? AND country = ?", paramID, country).Delete(&models.Override{})
	if result.Error != nil {
		return internalError(result.Error, "delete override %s/%s", paramID, country)
	}
	if result.RowsAffected > 0 {
		logger.Info().Str("param_id", paramID).Str("country", country).Msg("override deleted")
	}
	return nil
}
