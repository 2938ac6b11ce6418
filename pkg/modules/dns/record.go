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

type RecordConfig struct {
	APIKeyConfig `param:",squash"`

	ServerID string `param:"pdns_server_id"`
	Zone     string `param:"zone"`
	Name     string `param:"record_name"`
	Type     string `param:"record_type"`
	Value    string `param:"record_value"`
	TTL      int    `param:"record_ttl"`
	State    string `param:"state"`
}

var recordSpec = params.Spec{
	urlOption, skipTLSOption, apiKeyOption,
	{Name: "pdns_server_id", Aliases: []string{"server_id"}, Default: "localhost", Description: "PowerDNS server id"},
	{Name: "zone", Aliases: []string{"zone_id"}, Required: true, Description: "Zone holding the record"},
	{Name: "record_name", Aliases: []string{"name", "record"}, Required: true, Description: "Record name"},
	{Name: "record_type", Aliases: []string{"type"}, Required: true, Description: "Record type, e.g. A or CNAME"},
	{Name: "record_value", Aliases: []string{"value"}, Required: true, Description: "Record content"},
	{Name: "record_ttl", Aliases: []string{"ttl"}, Type: params.Int, Default: 3600, Description: "Record TTL in seconds"},
	stateOption("present", "absent", "disabled"),
}

type recordModule struct{}

func init() { module.Register(recordModule{}) }

func (recordModule) Name() string        { return collection + "record" }
func (recordModule) Description() string { return "Manage DNS records through PowerDNS Admin" }
func (recordModule) Spec() params.Spec   { return recordSpec }

func (recordModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg RecordConfig
	if err := recordSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReconcileRecord(ctx, cfg.provider(transport.SkipVerify, env.Logger), cfg, env.Logger)
}

// ReconcileRecord converges the rrset of cfg's name and type to a single
// record. Writes are confirmed by reading the zone back.
func ReconcileRecord(ctx context.Context, provider cloudprovider.RecordProvider, cfg RecordConfig, logger logging.Logger) (module.Result, error) {
	outcome, err := reconcile.Reconcile[cloudprovider.RRSet](ctx, reconcile.State(cfg.State), &recordAdapter{provider: provider, cfg: cfg})
	if err != nil {
		return module.Result{}, err
	}
	logging.OrDiscard(logger).Info("record reconciled", "zone", cfg.Zone, "name", cfg.Name, "type", cfg.Type,
		"action", outcome.Action, "diff", outcome.Diff.Fields)
	return module.Result{Changed: outcome.Changed, Key: "record", Data: outcome.Object}, nil
}

type recordAdapter struct {
	provider cloudprovider.RecordProvider
	cfg      RecordConfig
}

func (a *recordAdapter) disabled() bool {
	return reconcile.State(a.cfg.State) == reconcile.Disabled
}

func (a *recordAdapter) Lookup(ctx context.Context) (*cloudprovider.RRSet, error) {
	zone, err := a.provider.GetZone(ctx, a.cfg.ServerID, a.cfg.Zone)
	if err != nil {
		return nil, err
	}
	return cloudprovider.FindRRSet(zone, a.cfg.Name, a.cfg.Type), nil
}

func (a *recordAdapter) Create(ctx context.Context) (*cloudprovider.RRSet, error) {
	return a.replace(ctx)
}

func (a *recordAdapter) Diff(observed *cloudprovider.RRSet) reconcile.Diff {
	var d reconcile.Diff
	if observed.TTL != a.cfg.TTL {
		d.Add("ttl")
	}
	if len(observed.Records) != 1 {
		d.Add("records")
		return d
	}
	d.Compare("content", a.cfg.Value, observed.Records[0].Content)
	if observed.Records[0].Disabled != a.disabled() {
		d.Add("disabled")
	}
	return d
}

func (a *recordAdapter) Update(ctx context.Context, _ *cloudprovider.RRSet, _ reconcile.Diff) (*cloudprovider.RRSet, error) {
	return a.replace(ctx)
}

func (a *recordAdapter) Delete(ctx context.Context, observed *cloudprovider.RRSet) error {
	return a.provider.PatchRRSets(ctx, a.cfg.ServerID, a.cfg.Zone, []cloudprovider.RRSet{{
		Name:       a.cfg.Name,
		Type:       a.cfg.Type,
		TTL:        a.cfg.TTL,
		ChangeType: cloudprovider.ChangeTypeDelete,
		Records:    []cloudprovider.Record{},
	}})
}

// replace writes the desired rrset and returns it as the server now holds
// it, or as it was sent when the read back does not find it.
func (a *recordAdapter) replace(ctx context.Context) (*cloudprovider.RRSet, error) {
	rrset := cloudprovider.RRSet{
		Name:       a.cfg.Name,
		Type:       a.cfg.Type,
		TTL:        a.cfg.TTL,
		ChangeType: cloudprovider.ChangeTypeReplace,
		Records:    []cloudprovider.Record{{Content: a.cfg.Value, Disabled: a.disabled()}},
	}
	if err := a.provider.PatchRRSets(ctx, a.cfg.ServerID, a.cfg.Zone, []cloudprovider.RRSet{rrset}); err != nil {
		return nil, err
	}

	zone, err := a.provider.GetZone(ctx, a.cfg.ServerID, a.cfg.Zone)
	if err != nil {
		return nil, err
	}
	if found := cloudprovider.FindRRSet(zone, a.cfg.Name, a.cfg.Type); found != nil {
		return found, nil
	}
	rrset.ChangeType = ""
	return &rrset, nil
}
