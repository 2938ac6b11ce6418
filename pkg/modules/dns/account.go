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

type AccountConfig struct {
	BasicAuthConfig `param:",squash"`

	State       string `param:"state"`
	Name        string `param:"name"`
	Description string `param:"description"`
	Contact     string `param:"contact"`
	Mail        string `param:"mail"`
}

var accountSpec = params.Spec{
	urlOption, skipTLSOption, usernameOption, passwordOption,
	stateOption("present", "absent"),
	{Name: "name", Required: true, Description: "Account name"},
	{Name: "description", Description: "Account description"},
	{Name: "contact", Description: "Contact person"},
	{Name: "mail", Aliases: []string{"email"}, Description: "Contact mail address"},
}

type accountModule struct{}

func init() { module.Register(accountModule{}) }

func (accountModule) Name() string        { return collection + "account" }
func (accountModule) Description() string { return "Manage PowerDNS Admin accounts" }
func (accountModule) Spec() params.Spec   { return accountSpec }

func (accountModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg AccountConfig
	if err := accountSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReconcileAccount(ctx, cfg.provider(transport.SkipVerify, env.Logger), cfg, env.Logger)
}

// ReconcileAccount converges the account named in cfg.
func ReconcileAccount(ctx context.Context, provider cloudprovider.AccountProvider, cfg AccountConfig, logger logging.Logger) (module.Result, error) {
	outcome, err := reconcile.Reconcile[cloudprovider.Account](ctx, reconcile.State(cfg.State), &accountAdapter{provider: provider, cfg: cfg})
	if err != nil {
		return module.Result{}, err
	}
	logging.OrDiscard(logger).Info("account reconciled", "name", cfg.Name, "action", outcome.Action, "diff", outcome.Diff.Fields)
	return module.Result{Changed: outcome.Changed, Key: "account", Data: outcome.Object}, nil
}

type accountAdapter struct {
	provider cloudprovider.AccountProvider
	cfg      AccountConfig
}

func (a *accountAdapter) Lookup(ctx context.Context) (*cloudprovider.Account, error) {
	accounts, err := a.provider.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Name == a.cfg.Name {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

func (a *accountAdapter) Create(ctx context.Context) (*cloudprovider.Account, error) {
	return a.provider.CreateAccount(ctx, cloudprovider.AccountPayload{
		Name:        a.cfg.Name,
		Description: a.cfg.Description,
		Contact:     a.cfg.Contact,
		Mail:        a.cfg.Mail,
	})
}

func (a *accountAdapter) Diff(observed *cloudprovider.Account) reconcile.Diff {
	var d reconcile.Diff
	d.Compare("description", a.cfg.Description, observed.Description)
	d.Compare("contact", a.cfg.Contact, observed.Contact)
	d.Compare("mail", a.cfg.Mail, observed.Mail)
	return d
}

// Update sends the name plus the differing fields and answers with the
// observed account merged with them.
func (a *accountAdapter) Update(ctx context.Context, observed *cloudprovider.Account, diff reconcile.Diff) (*cloudprovider.Account, error) {
	payload := cloudprovider.AccountPayload{Name: a.cfg.Name}
	merged := *observed
	if diff.Has("description") {
		payload.Description = a.cfg.Description
		merged.Description = a.cfg.Description
	}
	if diff.Has("contact") {
		payload.Contact = a.cfg.Contact
		merged.Contact = a.cfg.Contact
	}
	if diff.Has("mail") {
		payload.Mail = a.cfg.Mail
		merged.Mail = a.cfg.Mail
	}
	if err := a.provider.UpdateAccount(ctx, observed.ID, payload); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (a *accountAdapter) Delete(ctx context.Context, observed *cloudprovider.Account) error {
	return a.provider.DeleteAccount(ctx, observed.ID)
}
