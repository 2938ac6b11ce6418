package dns

import (
	"context"

	"github.com/larivierec/infra-modules/pkg/cloudprovider"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/transport"
)

type AccountInfoConfig struct {
	BasicAuthConfig `param:",squash"`

	Name    string `param:"name"`
	Contact string `param:"contact"`
	Mail    string `param:"mail"`
}

var accountInfoSpec = params.Spec{
	urlOption, skipTLSOption, usernameOption, passwordOption,
	{Name: "name", Description: "Match accounts by name"},
	{Name: "contact", Description: "Match accounts by contact"},
	{Name: "mail", Aliases: []string{"email"}, Description: "Match accounts by mail"},
}

type accountInfoModule struct{}

func init() { module.Register(accountInfoModule{}) }

func (accountInfoModule) Name() string        { return collection + "account_info" }
func (accountInfoModule) Description() string { return "List PowerDNS Admin accounts" }
func (accountInfoModule) Spec() params.Spec   { return accountInfoSpec }

func (accountInfoModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg AccountInfoConfig
	if err := accountInfoSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return AccountInfo(ctx, cfg.provider(transport.FlagIsVerify, env.Logger), cfg)
}

// AccountInfo lists accounts. Each supplied filter is checked on its own, so
// an account matching two filters is listed twice. Without filters every
// account is returned.
func AccountInfo(ctx context.Context, provider cloudprovider.AccountProvider, cfg AccountInfoConfig) (module.Result, error) {
	accounts, err := provider.ListAccounts(ctx)
	if err != nil {
		return module.Result{}, err
	}

	if cfg.Name == "" && cfg.Contact == "" && cfg.Mail == "" {
		return module.Result{Key: "accounts", Data: accounts}, nil
	}

	matched := []cloudprovider.Account{}
	for _, account := range accounts {
		if cfg.Name != "" && account.Name == cfg.Name {
			matched = append(matched, account)
		}
		if cfg.Contact != "" && account.Contact == cfg.Contact {
			matched = append(matched, account)
		}
		if cfg.Mail != "" && account.Mail == cfg.Mail {
			matched = append(matched, account)
		}
	}
	return module.Result{Key: "accounts", Data: matched}, nil
}
