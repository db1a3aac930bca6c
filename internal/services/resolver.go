package services

import (
	"context"

	"github.com/huangang/geoconfig/internal/models"
)

// ConfigResolver merges param defaults with the overrides of one country.
// Nothing is cached here; clients cache the HTTP response instead.
type ConfigResolver struct {
	params    *ParamService
	overrides *OverrideService
}

func NewConfigResolver(params *ParamService, overrides *OverrideService) *ConfigResolver {
	return &ConfigResolver{params: params, overrides: overrides}
}

// GetConfig returns the effective configuration keyed by param key. With an
// empty country only defaults are used. Overrides of deleted params are
// ignored.
func (r *ConfigResolver) GetConfig(ctx context.Context, country string) (config map[string]models.Value, err error) {
	defer func() { observe("get_config", err) }()

	params, err := r.params.All(ctx)
	if err != nil {
		return nil, err
	}

	overrideByParam := make(map[string]models.Value)
	if code := NormalizeCountry(country); code != "" {
		overrides, err := r.overrides.ListByCountry(ctx, code)
		if err != nil {
			return nil, err
		}
		for _, o := range overrides {
			overrideByParam[o.ParamID] = o.Value
		}
	}

	config = make(map[string]models.Value, len(params))
	for _, p := range params {
		value := p.Value
		if o, ok := overrideByParam[p.ID]; ok {
			value = o
		}
		config[p.Key] = value.Coerce()
	}
	return config, nil
}
