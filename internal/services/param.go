package services

import (
	"context"
	"errors"
	"strings"

	"github.com/huangang/geoconfig/internal/models"
	"github.com/huangang/geoconfig/pkg/logger"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParamService is the parameter registry.
type ParamService struct {
	db *gorm.DB
}

func NewParamService(db *gorm.DB) *ParamService {
	return &ParamService{db: db}
}

type AddParamRequest struct {
	Key         string       `json:"key" binding:"required,max=200"`
	Value       models.Value `json:"value"`
	Description string       `json:"description" binding:"max=1000"`
}

type UpdateParamRequest struct {
	Value       models.Value `json:"value"`
	Description *string      `json:"description" binding:"omitempty,max=1000"`
	Version     *int64       `json:"version" binding:"required,min=0"`
}

type ListParamsRequest struct {
	Sort     SortOrder
	PageSize int
	Cursor   string
}

type ListParamsResponse struct {
	Items      []models.Param `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

// Add creates a param with version 0. Keys are unique: a second param with
// the same key is rejected with KindAlreadyExists.
func (s *ParamService) Add(ctx context.Context, req *AddParamRequest) (id string, err error) {
	defer func() { observe("add_param", err) }()

	if strings.TrimSpace(req.Key) == "" {
		return "", newError(KindInvalidArgument, "key is required")
	}
	if !req.Value.IsDefined() {
		return "", newError(KindInvalidArgument, "value is required")
	}

	param := models.Param{
		Key:         req.Key,
		Value:       req.Value,
		Description: req.Description,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Param{}).Where(map[string]interface{}{"key": req.Key}).Count(&count).Error; err != nil {
			return internalError(err, "look up config param %q", req.Key)
		}
		if count > 0 {
			return newError(KindAlreadyExists, "config param %q already exists", req.Key)
		}
		if err := tx.Create(&param).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(KindAlreadyExists, "config param %q already exists", req.Key)
			}
			return internalError(err, "create config param %q", req.Key)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info().Str("id", param.ID).Str("key", param.Key).Msg("config param created")
	return param.ID, nil
}

// GetByKey resolves a key to its param.
func (s *ParamService) GetByKey(ctx context.Context, key string) (*models.Param, error) {
	var param models.Param
	err := s.db.WithContext(ctx).Where(map[string]interface{}{"key": key}).First(&param).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "config param %q not found", key)
	}
	if err != nil {
		return nil, internalError(err, "load config param %q", key)
	}
	return &param, nil
}

// All returns every param in creation order.
func (s *ParamService) All(ctx context.Context) ([]models.Param, error) {
	var params []models.Param
	if err := s.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&params).Error; err != nil {
		return nil, internalError(err, "load config params")
	}
	return params, nil
}

// List returns one page of params ordered by creation time. NextCursor is
// set only when more params follow the page.
func (s *ParamService) List(ctx context.Context, req *ListParamsRequest) (resp *ListParamsResponse, err error) {
	defer func() { observe("list_params", err) }()

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	dir, cmp := "ASC", ">"
	switch req.Sort {
	case "", SortAsc:
	case SortDesc:
		dir, cmp = "DESC", "<"
	default:
		return nil, newError(KindInvalidArgument, "sort must be %q or %q", SortAsc, SortDesc)
	}

	db := s.db.WithContext(ctx)
	query := db.Model(&models.Param{})

	if req.Cursor != "" {
		id, err := DecodeCursor(req.Cursor)
		if err != nil {
			return nil, newError(KindInvalidArgument, "invalid cursor")
		}
		var anchor models.Param
		if err := db.Select("id", "created_at").Where("id = ?", id).First(&anchor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(KindInvalidArgument, "cursor does not match any config param")
			}
			return nil, internalError(err, "resolve cursor")
		}
		query = query.Where(
			"created_at "+cmp+" ? OR (created_at = ? AND id "+cmp+" ?)",
			anchor.CreatedAt, anchor.CreatedAt, anchor.ID,
		)
	}

	var params []models.Param
	if err := query.Order("created_at " + dir).Order("id " + dir).Limit(pageSize + 1).Find(&params).Error; err != nil {
		return nil, internalError(err, "list config params")
	}

	resp = &ListParamsResponse{Items: params}
	if len(params) > pageSize {
		resp.Items = params[:pageSize]
		resp.NextCursor = EncodeCursor(params[pageSize-1].ID)
	}
	if resp.Items == nil {
		resp.Items = []models.Param{}
	}
	return resp, nil
}

// Update writes a new value (and description, when given) if the stored
// version still equals req.Version, bumping the version by one. The read,
// the check and the write share one transaction; a mismatch leaves the
// record untouched.
func (s *ParamService) Update(ctx context.Context, key string, req *UpdateParamRequest) (err error) {
	defer func() { observe("update_param", err) }()

	if !req.Value.IsDefined() {
		return newError(KindInvalidArgument, "value is required")
	}
	if req.Version == nil {
		return newError(KindInvalidArgument, "version is required")
	}
	expected := *req.Version

	var updated models.Param
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(map[string]interface{}{"key": key}).First(&updated).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindNotFound, "config param %q not found", key)
			}
			return internalError(err, "load config param %q", key)
		}
		if updated.Version != expected {
			return newError(KindVersionConflict, "version mismatch (current=%d, you sent=%d)", updated.Version, expected)
		}

		updates := map[string]interface{}{
			"value":      req.Value,
			"version":    gorm.Expr("version + ?", 1),
			"updated_at": tx.NowFunc(),
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}

		result := tx.Model(&models.Param{}).
			Where("id = ? AND version = ?", updated.ID, expected).
			Updates(updates)
		if result.Error != nil {
			return internalError(result.Error, "update config param %q", key)
		}
		if result.RowsAffected == 0 {
			return newError(KindVersionConflict, "config param %q was modified concurrently", key)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Str("id", updated.ID).Str("key", key).Int64("version", expected+1).Msg("config param updated")
	return nil
}

// Delete removes a param by id. Deleting an unknown id is not an error and
// the param's overrides are left in place.
func (s *ParamService) Delete(ctx context.Context, id string) (err error) {
	defer func() { observe("delete_param", err) }()

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Param{})
	if result.Error != nil {
		return internalError(result.Error, "delete config param %s", id)
	}
	if result.RowsAffected > 0 {
		logger.Info().Str("id", id).Msg("config param deleted")
	}
	return nil
}
