package virt

import (
	"context"
	"fmt"

	"github.com/larivierec/infra-modules/pkg/hyperv"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/reconcile"
)

type VMSwitchConfig struct {
	Name              string `param:"name"`
	State             string `param:"state"`
	SwitchType        string `param:"switchType"`
	AdapterName       string `param:"adapterName"`
	AllowManagementOS bool   `param:"allowManagementOS"`
}

var vmSwitchSpec = params.Spec{
	{Name: "name", Required: true, Description: "Name of the virtual switch"},
	{Name: "state", Default: "present", Choices: []string{"present", "absent"}, Description: "Desired state"},
	{Name: "switchType", Default: hyperv.SwitchInternal, Choices: []string{hyperv.SwitchInternal, hyperv.SwitchPrivate}, Description: "Switch type when no adapter is bound"},
	{Name: "adapterName", Description: "Physical adapter to bind, making the switch external"},
	{Name: "allowManagementOS", Type: params.Bool, Default: false, Description: "Share an external adapter with the host"},
}

type vmSwitchModule struct{}

func init() { module.Register(vmSwitchModule{}) }

func (vmSwitchModule) Name() string        { return collection + "vmswitch" }
func (vmSwitchModule) Description() string { return "Manage Hyper-V virtual switches" }
func (vmSwitchModule) Spec() params.Spec   { return vmSwitchSpec }

func (vmSwitchModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg VMSwitchConfig
	if err := vmSwitchSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReconcileVMSwitch(ctx, newClient(env.Logger), cfg, env.Logger)
}

type VMSwitchClient interface {
	GetVMSwitch(ctx context.Context, name string) (*hyperv.VMSwitch, error)
	NewVMSwitch(ctx context.Context, spec hyperv.VMSwitchSpec) error
	SetVMSwitch(ctx context.Context, name string, settings hyperv.VMSwitchSettings) error
	RemoveVMSwitch(ctx context.Context, name string) error
}

func ReconcileVMSwitch(ctx context.Context, client VMSwitchClient, cfg VMSwitchConfig, logger logging.Logger) (module.Result, error) {
	outcome, err := reconcile.Reconcile[hyperv.VMSwitch](ctx, reconcile.State(cfg.State), &vmSwitchAdapter{client: client, cfg: cfg})
	if err != nil {
		return module.Result{}, err
	}
	logging.OrDiscard(logger).Info("vmswitch reconciled", "name", cfg.Name, "action", outcome.Action, "diff", outcome.Diff.Fields)
	return module.Result{Changed: outcome.Changed, Key: "vmswitch", Data: outcome.Object}, nil
}

type vmSwitchAdapter struct {
	client VMSwitchClient
	cfg    VMSwitchConfig
}

// switchType is External whenever an adapter is named.
func (a *vmSwitchAdapter) switchType() string {
	if a.cfg.AdapterName != "" {
		return hyperv.SwitchExternal
	}
	return a.cfg.SwitchType
}

func (a *vmSwitchAdapter) Lookup(ctx context.Context) (*hyperv.VMSwitch, error) {
	return a.client.GetVMSwitch(ctx, a.cfg.Name)
}

func (a *vmSwitchAdapter) Create(ctx context.Context) (*hyperv.VMSwitch, error) {
	err := a.client.NewVMSwitch(ctx, hyperv.VMSwitchSpec{
		Name:              a.cfg.Name,
		SwitchType:        a.switchType(),
		AdapterName:       a.cfg.AdapterName,
		AllowManagementOS: a.cfg.AllowManagementOS,
	})
	if err != nil {
		return nil, err
	}
	return a.reread(ctx)
}

// Diff compares the type, and for external switches the management OS
// sharing. Internal switches always share with the host.
func (a *vmSwitchAdapter) Diff(observed *hyperv.VMSwitch) reconcile.Diff {
	var d reconcile.Diff
	d.Compare("switch_type", a.switchType(), observed.SwitchType)
	if a.switchType() == hyperv.SwitchExternal && a.cfg.AllowManagementOS != observed.AllowManagementOS {
		d.Add("allow_management_os")
	}
	return d
}

func (a *vmSwitchAdapter) Update(ctx context.Context, _ *hyperv.VMSwitch, diff reconcile.Diff) (*hyperv.VMSwitch, error) {
	var settings hyperv.VMSwitchSettings
	if diff.Has("switch_type") {
		settings.AdapterName = a.cfg.AdapterName
		if settings.AdapterName == "" {
			settings.SwitchType = a.cfg.SwitchType
		}
	}
	if diff.Has("allow_management_os") || settings.AdapterName != "" {
		allow := a.cfg.AllowManagementOS
		settings.AllowManagementOS = &allow
	}
	if err := a.client.SetVMSwitch(ctx, a.cfg.Name, settings); err != nil {
		return nil, err
	}
	return a.reread(ctx)
}

func (a *vmSwitchAdapter) Delete(ctx context.Context, _ *hyperv.VMSwitch) error {
	return a.client.RemoveVMSwitch(ctx, a.cfg.Name)
}

func (a *vmSwitchAdapter) reread(ctx context.Context) (*hyperv.VMSwitch, error) {
	sw, err := a.client.GetVMSwitch(ctx, a.cfg.Name)
	if err != nil {
		return nil, err
	}
	if sw == nil {
		return nil, fmt.Errorf("vmswitch %s not found after applying changes", a.cfg.Name)
	}
	return sw, nil
}
