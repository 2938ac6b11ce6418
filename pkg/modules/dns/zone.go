package dns

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/reconcile"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type ZoneConfig struct {
	APIKeyConfig `param:",squash"`

	ServerID   string `param:"pdns_server_id"`
	Name       string `param:"zone_name"`
	Kind       string `param:"zone_type"`
	SOAEditAPI string `param:"soa_edit_api"`
	Account    string `param:"account"`
	State      string `param:"state"`
}

var zoneSpec = params.Spec{
	urlOption, skipTLSOption, apiKeyOption,
	{Name: "pdns_server_id", Aliases: []string{"server_id"}, Default: "localhost", Description: "PowerDNS server id"},
	{Name: "zone_name", Aliases: []string{"name", "zone"}, Required: true, Description: "Zone name, usually with a trailing dot"},
	{Name: "zone_type", Default: "Native", Choices: []string{"Native", "Master", "Slave"}, Description: "Zone kind"},
	{Name: "soa_edit_api", Default: "DEFAULT", Choices: []string{"DEFAULT", "INCREASE", "EPOCH", "OFF"}, Description: "SOA-EDIT-API setting"},
	{Name: "account", Description: "Account owning the zone"},
	stateOption("present", "absent"),
}

type zoneModule struct{}

func init() { module.Register(zoneModule{}) }

func (zoneModule) Name() string        { return collection + "zone" }
func (zoneModule) Description() string { return "Manage zones through PowerDNS Admin" }
func (zoneModule) Spec() params.Spec   { return zoneSpec }

func (zoneModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg ZoneConfig
	if err := zoneSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReconcileZone(ctx, cfg.provider(transport.FlagIsVerify, env.Logger), cfg, env.Logger)
}

// ReconcileZone converges the zone named in cfg.
func ReconcileZone(ctx context.Context, provider cloudprovider.ZoneProvider, cfg ZoneConfig, logger logging.Logger) (module.Result, error) {
	outcome, err := reconcile.Reconcile[cloudprovider.Zone](ctx, reconcile.State(cfg.State), &zoneAdapter{provider: provider, cfg: cfg})
	if err != nil {
		return module.Result{}, err
	}
	logging.OrDiscard(logger).Info("zone reconciled", "zone", cfg.Name, "action", outcome.Action, "diff", outcome.Diff.Fields)
	return module.Result{Changed: outcome.Changed, Key: "zone", Data: outcome.Object}, nil
}

type zoneAdapter struct {
	provider cloudprovider.ZoneProvider
	cfg      ZoneConfig
}

func (a *zoneAdapter) Lookup(ctx context.Context) (*cloudprovider.Zone, error) {
	return a.provider.GetZone(ctx, a.cfg.ServerID, a.cfg.Name)
}

func (a *zoneAdapter) Create(ctx context.Context) (*cloudprovider.Zone, error) {
	return a.provider.CreateZone(ctx, a.cfg.ServerID, cloudprovider.ZoneCreate{
		Name:       a.cfg.Name,
		Type:       "Zone",
		Kind:       a.cfg.Kind,
		SOAEditAPI: a.cfg.SOAEditAPI,
		Account:    a.cfg.Account,
	})
}

func (a *zoneAdapter) Diff(observed *cloudprovider.Zone) reconcile.Diff {
	var d reconcile.Diff
	d.Compare("kind", a.cfg.Kind, observed.Kind)
	d.Compare("soa_edit_api", a.cfg.SOAEditAPI, observed.SOAEditAPI)
	d.Compare("account", a.cfg.Account, observed.Account)
	return d
}

func (a *zoneAdapter) Update(ctx context.Context, observed *cloudprovider.Zone, diff reconcile.Diff) (*cloudprovider.Zone, error) {
	var payload cloudprovider.ZoneUpdate
	merged := *observed
	if diff.Has("kind") {
		payload.Kind = a.cfg.Kind
		merged.Kind = a.cfg.Kind
	}
	if diff.Has("soa_edit_api") {
		payload.SOAEditAPI = a.cfg.SOAEditAPI
		merged.SOAEditAPI = a.cfg.SOAEditAPI
	}
	if diff.Has("account") {
		payload.Account = a.cfg.Account
		merged.Account = a.cfg.Account
	}
	if err := a.provider.UpdateZone(ctx, a.cfg.ServerID, observed.ID, payload); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (a *zoneAdapter) Delete(ctx context.Context, observed *cloudprovider.Zone) error {
	return a.provider.DeleteZone(ctx, a.cfg.ServerID, observed.ID)
}
