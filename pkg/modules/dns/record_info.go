package dns

import (
	"context"
	"fmt"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type RecordInfoConfig struct {
	APIKeyConfig `param:",squash"`

	ServerID string `param:"pdns_server_id"`
	Zone     string `param:"zone"`
	Record   string `param:"record"`
	Type     string `param:"record_type"`
}

var recordInfoSpec = params.Spec{
	urlOption, skipTLSOption, apiKeyOption,
	{Name: "pdns_server_id", Aliases: []string{"server_id"}, Default: "localhost", Description: "PowerDNS server id"},
	{Name: "zone", Aliases: []string{"zone_id"}, Required: true, Description: "Zone to read"},
	{Name: "record", Description: "Match rrsets by name"},
	{Name: "record_type", Description: "Match rrsets by type"},
}

type recordInfoModule struct{}

func init() { module.Register(recordInfoModule{}) }

func (recordInfoModule) Name() string        { return collection + "record_info" }
func (recordInfoModule) Description() string { return "List the rrsets of a zone" }
func (recordInfoModule) Spec() params.Spec   { return recordInfoSpec }

func (recordInfoModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg RecordInfoConfig
	if err := recordInfoSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return RecordInfo(ctx, cfg.provider(transport.FlagIsVerify, env.Logger), cfg)
}

// RecordInfo returns the rrsets of a zone matching the supplied name and type.
// A missing zone is an error rather than an empty list.
func RecordInfo(ctx context.Context, provider cloudprovider.RecordProvider, cfg RecordInfoConfig) (module.Result, error) {
	zone, err := provider.GetZone(ctx, cfg.ServerID, cfg.Zone)
	if err != nil {
		return module.Result{}, err
	}
	if zone == nil {
		return module.Result{}, fmt.Errorf("zone %s not found on server %s", cfg.Zone, cfg.ServerID)
	}

	matched := []cloudprovider.RRSet{}
	for _, rrset := range zone.RRSets {
		if cfg.Record != "" && !cloudprovider.SameName(rrset.Name, cfg.Record) {
			continue
		}
		if cfg.Type != "" && rrset.Type != cfg.Type {
			continue
		}
		matched = append(matched, rrset)
	}
	return module.Result{Key: "records", Data: matched}, nil
}
