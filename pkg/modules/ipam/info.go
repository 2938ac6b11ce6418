package ipam

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type AddressInfoConfig struct {
	ConnectionConfig `param:",squash"`

	IP string `param:"ip"`
}

var addressInfoSpec = withConnection(true,
	params.Option{Name: "ip", Aliases: []string{"address", "ip_address"}, Required: true, Description: "Address to look up"},
)

type addressInfoModule struct{}

func (addressInfoModule) Name() string        { return collection + "address_info" }
func (addressInfoModule) Description() string { return "Look up an IP address in phpIPAM" }
func (addressInfoModule) Spec() params.Spec   { return addressInfoSpec }

func (addressInfoModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg AddressInfoConfig
	if err := addressInfoSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	data, err := cfg.client(transport.SkipVerify, env.Logger).SearchAddress(ctx, cfg.IP)
	if err != nil {
		return module.Result{}, err
	}
	return module.Result{Key: "address_info", Data: data}, nil
}

type FirstFreeAddressConfig struct {
	ConnectionConfig `param:",squash"`

	SubnetID string `param:"subnet_id"`
}

var firstFreeAddressSpec = withConnection(false,
	params.Option{Name: "subnet_id", Required: true, Description: "Subnet to search"},
)

type firstFreeAddressModule struct{}

func (firstFreeAddressModule) Name() string        { return collection + "first_free_address" }
func (firstFreeAddressModule) Description() string { return "Find a free phpIPAM address" }
func (firstFreeAddressModule) Spec() params.Spec   { return firstFreeAddressSpec }

func (firstFreeAddressModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg FirstFreeAddressConfig
	if err := firstFreeAddressSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	data, err := cfg.client(transport.FlagIsVerify, env.Logger).FirstFreeAddress(ctx, cfg.SubnetID)
	if err != nil {
		return module.Result{}, err
	}
	return module.Result{Key: "ip_address", Data: data}, nil
}

type SubnetInfoConfig struct {
	ConnectionConfig `param:",squash"`

	CIDR string `param:"cidr"`
}

var subnetInfoSpec = withConnection(true,
	params.Option{Name: "cidr", Aliases: []string{"subnet"}, Required: true, Description: "Subnet in CIDR notation"},
)

type subnetInfoModule struct{}

func (subnetInfoModule) Name() string        { return collection + "subnet_info" }
func (subnetInfoModule) Description() string { return "Look up a phpIPAM subnet by CIDR" }
func (subnetInfoModule) Spec() params.Spec   { return subnetInfoSpec }

func (subnetInfoModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg SubnetInfoConfig
	if err := subnetInfoSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	data, err := cfg.client(transport.SkipVerify, env.Logger).SubnetByCIDR(ctx, cfg.CIDR)
	if err != nil {
		return module.Result{}, err
	}
	return module.Result{Key: "subnet_info", Data: data}, nil
}

func init() {
	module.Register(addressInfoModule{})
	module.Register(firstFreeAddressModule{})
	module.Register(subnetInfoModule{})
}
