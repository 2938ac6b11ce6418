package ipam

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type ReleaseAddressConfig struct {
	ConnectionConfig `param:",squash"`

	SubnetID int `param:"subnet_id"`
	IPID     int `param:"ip_id"`
}

var releaseAddressSpec = withConnection(false,
	params.Option{Name: "subnet_id", Aliases: []string{"subnet"}, Type: params.Int, Required: true, Description: "Subnet holding the address"},
	params.Option{Name: "ip_id", Aliases: []string{"address", "ip_address"}, Type: params.Int, Required: true, Description: "Id of the address to release"},
)

type releaseAddressModule struct{}

func init() { module.Register(releaseAddressModule{}) }

func (releaseAddressModule) Name() string        { return collection + "release_address" }
func (releaseAddressModule) Description() string { return "Release an IP address from phpIPAM" }
func (releaseAddressModule) Spec() params.Spec   { return releaseAddressSpec }

func (releaseAddressModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg ReleaseAddressConfig
	if err := releaseAddressSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReleaseAddress(ctx, cfg.client(transport.SkipVerify, env.Logger), cfg, env.Logger)
}

type AddressReleaser interface {
	ReleaseAddress(ctx context.Context, ipID, subnetID int) (map[string]any, error)
}

// ReleaseAddress deletes the address and echoes phpIPAM's answer whatever its
// status. The run never reports a change.
func ReleaseAddress(ctx context.Context, client AddressReleaser, cfg ReleaseAddressConfig, logger logging.Logger) (module.Result, error) {
	doc, err := client.ReleaseAddress(ctx, cfg.IPID, cfg.SubnetID)
	if err != nil {
		return module.Result{}, err
	}
	logging.OrDiscard(logger).Info("address release requested", "ip_id", cfg.IPID, "subnet_id", cfg.SubnetID, "success", doc["success"])
	return module.Result{Key: "ip_address", Data: doc}, nil
}
