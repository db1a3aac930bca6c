package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huangang/geoconfig/internal/middleware"
	"github.com/huangang/geoconfig/internal/services"
	"github.com/huangang/geoconfig/pkg/response"
)

// ParamPathKey is the single wildcard under /v1/config. It holds a param key
// for PATCH and a param id everywhere else.
const ParamPathKey = "param"

type ConfigHandler struct {
	params      *services.ParamService
	overrides   *services.OverrideService
	resolver    *services.ConfigResolver
	cacheMaxAge int
}

func NewConfigHandler(params *services.ParamService, overrides *services.OverrideService, cacheMaxAge int) *ConfigHandler {
	return &ConfigHandler{
		params:      params,
		overrides:   overrides,
		resolver:    services.NewConfigResolver(params, overrides),
		cacheMaxAge: cacheMaxAge,
	}
}

func isListQuery(c *gin.Context) bool {
	for _, name := range []string{"sort", "pageSize", "cursor"} {
		if _, ok := c.GetQuery(name); ok {
			return true
		}
	}
	return false
}

// GetConfig serves both the public resolved config and, when pagination
// parameters are present, the admin param listing.
// GET /v1/config
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	if isListQuery(c) {
		if !middleware.RequireAdmin(c) {
			return
		}
		h.listParams(c)
		return
	}

	config, err := h.resolver.GetConfig(c.Request.Context(), c.Query("country"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", h.cacheMaxAge))
	response.OK(c, config)
}

func (h *ConfigHandler) listParams(c *gin.Context) {
	req := services.ListParamsRequest{
		Sort:   services.SortOrder(c.Query("sort")),
		Cursor: c.Query("cursor"),
	}
	if raw := c.Query("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "pageSize must be an integer")
			return
		}
		req.PageSize = size
	}

	resp, err := h.params.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, resp)
}

// CreateParam handles POST /v1/config
func (h *ConfigHandler) CreateParam(c *gin.Context) {
	var req services.AddParamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !req.Value.IsDefined() {
		response.BadRequest(c, "key and value are required")
		return
	}

	id, err := h.params.Add(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

// UpdateParam handles PATCH /v1/config/:param where param is the key.
func (h *ConfigHandler) UpdateParam(c *gin.Context) {
	var req services.UpdateParamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !req.Value.IsDefined() {
		response.BadRequest(c, "value and version are required")
		return
	}

	if err := h.params.Update(c.Request.Context(), c.Param(ParamPathKey), &req); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteParam handles DELETE /v1/config/:param where param is the id.
func (h *ConfigHandler) DeleteParam(c *gin.Context) {
	if err := h.params.Delete(c.Request.Context(), c.Param(ParamPathKey)); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// ListOverrides handles GET /v1/config/:param/overrides
func (h *ConfigHandler) ListOverrides(c *gin.Context) {
	overrides, err := h.overrides.List(c.Request.Context(), c.Param(ParamPathKey))
	if err != nil {
		respondError(c, err)
		return
	}
	response.OK(c, overrides)
}

// CreateOverride handles POST /v1/config/:param/overrides
func (h *ConfigHandler) CreateOverride(c *gin.Context) {
	var req services.AddOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !req.Value.IsDefined() {
		response.BadRequest(c, "country and value are required")
		return
	}

	country := services.NormalizeCountry(req.Country)
	if err := h.overrides.Add(c.Request.Context(), c.Param(ParamPathKey), country, req.Value); err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, gin.H{"country": country})
}

// UpdateOverride handles PATCH /v1/config/:param/overrides/:country
func (h *ConfigHandler) UpdateOverride(c *gin.Context) {
	country, ok := countryParam(c)
	if !ok {
		return
	}

	var req services.UpdateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !req.Value.IsDefined() {
		response.BadRequest(c, "value and version are required")
		return
	}

	if err := h.overrides.Update(c.Request.Context(), c.Param(ParamPathKey), country, &req); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteOverride handles DELETE /v1/config/:param/overrides/:country
func (h *ConfigHandler) DeleteOverride(c *gin.Context) {
	country, ok := countryParam(c)
	if !ok {
		return
	}

	if err := h.overrides.Delete(c.Request.Context(), c.Param(ParamPathKey), country); err != nil {
		respondError(c, err)
		return
	}
	response.NoContent(c)
}

func countryParam(c *gin.Context) (string, bool) {
	country := c.Param("country")
	if !middleware.IsCountryCode(country) {
		response.BadRequest(c, "country must be a two-letter country code")
		return "", false
	}
	return services.NormalizeCountry(country), true
}
