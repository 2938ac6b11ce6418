package ipam

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/ipam/phpipam"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type ReserveAddressConfig struct {
	ConnectionConfig `param:",squash"`

	SubnetID    int    `param:"subnet_id"`
	IP          string `param:"ip"`
	Hostname    string `param:"hostname"`
	Description string `param:"description"`
	Tag         string `param:"tag"`
	IsGateway   bool   `param:"is_gateway"`
	PingExclude bool   `param:"ping_exclude"`
	PTRExclude  bool   `param:"ptr_exclude"`
	Owner       string `param:"owner"`
	Note        string `param:"note"`
}

var reserveAddressSpec = withConnection(true,
	params.Option{Name: "subnet_id", Aliases: []string{"subnet"}, Type: params.Int, Required: true, Description: "Subnet to reserve in"},
	params.Option{Name: "ip", Aliases: []string{"address", "ip_address"}, Required: true, Description: "Address to reserve"},
	params.Option{Name: "hostname", Description: "Hostname of the address"},
	params.Option{Name: "description", Description: "Address description"},
	params.Option{Name: "tag", Default: "reserved", Choices: phpipam.TagNames, Description: "Address state tag"},
	params.Option{Name: "is_gateway", Type: params.Bool, Description: "Mark the address as the subnet gateway"},
	params.Option{Name: "ping_exclude", Type: params.Bool, Description: "Exclude the address from ping checks"},
	params.Option{Name: "ptr_exclude", Type: params.Bool, Description: "Do not create a PTR record"},
	params.Option{Name: "owner", Description: "Address owner"},
	params.Option{Name: "note", Description: "Free-form note"},
)

type reserveAddressModule struct{}

func init() { module.Register(reserveAddressModule{}) }

func (reserveAddressModule) Name() string        { return collection + "reserve_address" }
func (reserveAddressModule) Description() string { return "Reserve an IP address in phpIPAM" }
func (reserveAddressModule) Spec() params.Spec   { return reserveAddressSpec }

func (reserveAddressModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg ReserveAddressConfig
	if err := reserveAddressSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReserveAddress(ctx, cfg.client(transport.FlagIsVerify, env.Logger), cfg, env.Logger)
}

type AddressReserver interface {
	ReserveAddress(ctx context.Context, req phpipam.AddressRequest) (map[string]any, error)
}

// ReserveAddress creates the address and hands back phpIPAM's answer as is.
// The run never reports a change, even when the address was created.
func ReserveAddress(ctx context.Context, client AddressReserver, cfg ReserveAddressConfig, logger logging.Logger) (module.Result, error) {
	tag, err := phpipam.ParseTag(cfg.Tag)
	if err != nil {
		return module.Result{}, err
	}
	doc, err := client.ReserveAddress(ctx, phpipam.AddressRequest{
		IP:          cfg.IP,
		SubnetID:    cfg.SubnetID,
		Hostname:    cfg.Hostname,
		Description: cfg.Description,
		Tag:         tag,
		IsGateway:   cfg.IsGateway,
		PingExclude: cfg.PingExclude,
		PTRExclude:  cfg.PTRExclude,
		Owner:       cfg.Owner,
		Note:        cfg.Note,
	})
	if err != nil {
		return module.Result{}, err
	}
	logging.OrDiscard(logger).Info("address reserve requested", "ip", cfg.IP, "subnet_id", cfg.SubnetID, "success", doc["success"])
	return module.Result{Key: "ip_address_id", Data: doc}, nil
}
