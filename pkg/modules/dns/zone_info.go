package dns

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type ZoneInfoConfig struct {
	APIKeyConfig `param:",squash"`

	Server  string `param:"server"`
	ID      string `param:"id"`
	Name    string `param:"name"`
	Account string `param:"account"`
}

var zoneInfoSpec = params.Spec{
	urlOption, skipTLSOption, apiKeyOption,
	{Name: "server", Aliases: []string{"server_id"}, Default: "localhost", Description: "PowerDNS server id"},
	{Name: "id", Aliases: []string{"zone_id"}, Description: "Match zones by id"},
	{Name: "name", Aliases: []string{"zone_name"}, Description: "Match zones by name"},
	{Name: "account", Description: "Match zones by account"},
}

type zoneInfoModule struct{}

func init() { module.Register(zoneInfoModule{}) }

func (zoneInfoModule) Name() string        { return collection + "zone_info" }
func (zoneInfoModule) Description() string { return "List zones known to PowerDNS Admin" }
func (zoneInfoModule) Spec() params.Spec   { return zoneInfoSpec }

func (zoneInfoModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg ZoneInfoConfig
	if err := zoneInfoSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ZoneInfo(ctx, cfg.provider(transport.FlagIsVerify, env.Logger), cfg)
}

// ZoneInfo lists the zones of a server. A zone is included once when it
// matches the id, name or account filter, checked in that order.
func ZoneInfo(ctx context.Context, provider cloudprovider.ZoneProvider, cfg ZoneInfoConfig) (module.Result, error) {
	zones, err := provider.ListZones(ctx, cfg.Server)
	if err != nil {
		return module.Result{}, err
	}
	if cfg.ID == "" && cfg.Name == "" && cfg.Account == "" {
		return module.Result{Key: "zones", Data: zones}, nil
	}

	matched := []cloudprovider.Zone{}
	for _, zone := range zones {
		switch {
		case cfg.ID != "" && zone.ID == cfg.ID:
			matched = append(matched, zone)
		case cfg.Name != "" && zone.Name == cfg.Name:
			matched = append(matched, zone)
		case cfg.Account != "" && zone.Account == cfg.Account:
			matched = append(matched, zone)
		}
	}
	return module.Result{Key: "zones", Data: matched}, nil
}
