package dns

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type ServerInfoConfig struct {
	APIKeyConfig `param:",squash"`

	Server string `param:"server"`
}

var serverInfoSpec = params.Spec{
	urlOption, skipTLSOption, apiKeyOption,
	{Name: "server", Aliases: []string{"server_id"}, Description: "Match servers by id"},
}

type serverInfoModule struct{}

func init() { module.Register(serverInfoModule{}) }

func (serverInfoModule) Name() string        { return collection + "server_info" }
func (serverInfoModule) Description() string { return "List PowerDNS servers" }
func (serverInfoModule) Spec() params.Spec   { return serverInfoSpec }

func (serverInfoModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg ServerInfoConfig
	if err := serverInfoSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ServerInfo(ctx, cfg.provider(transport.SkipVerify, env.Logger), cfg)
}

// ServerInfo lists every server the API key can see.
func ServerInfo(ctx context.Context, provider cloudprovider.ServerProvider, cfg ServerInfoConfig) (module.Result, error) {
	servers, err := provider.ListServers(ctx)
	if err != nil {
		return module.Result{}, err
	}
	if cfg.Server == "" {
		return module.Result{Key: "servers", Data: servers}, nil
	}
	matched := []cloudprovider.Server{}
	for _, server := range servers {
		if server.ID == cfg.Server {
			matched = append(matched, server)
		}
	}
	return module.Result{Key: "servers", Data: matched}, nil
}
