package virt

import (
	"context"
	"errors"
	"fmt"

	"github.com/larivierec/infra-modules/pkg/hyperv"
	"github.com/larivierec/infra-modules/pkg/logging"
	"github.com/larivierec/infra-modules/pkg/module"
	"github.com/larivierec/infra-modules/pkg/params"
	"github.com/larivierec/infra-modules/pkg/reconcile"
)

type VHDConfig struct {
	Path     string `param:"path"`
	State    string `param:"state"`
	Size     string `param:"size"`
	CloneVHD string `param:"cloneVHD"`
	// DynamicExpansion is nil when not supplied, which means dynamic.
	DynamicExpansion *bool `param:"dynamicExpansion"`
	FixedSize        bool  `param:"fixedSize"`
}

var vhdSpec = params.Spec{
	{Name: "path", Required: true, Description: "Path to the VHDX file"},
	{Name: "state", Default: "present", Choices: []string{"present", "absent"}, Description: "Desired state"},
	{Name: "size", Description: "Size of the disk, e.g. 120GB"},
	{Name: "cloneVHD", Description: "Disk to copy instead of creating an empty one"},
	{Name: "dynamicExpansion", Type: params.Bool, Description: "Create an expandable disk (the default)"},
	{Name: "fixedSize", Type: params.Bool, Default: false, Description: "Create a fixed size disk"},
}

var errVHDSizeRequired = errors.New("size is required to create a vhd unless cloneVHD is set")

type vhdModule struct{}

func init() { module.Register(vhdModule{}) }

func (vhdModule) Name() string        { return collection + "vhd" }
func (vhdModule) Description() string { return "Manage Hyper-V virtual hard disks" }
func (vhdModule) Spec() params.Spec   { return vhdSpec }

func (vhdModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg VHDConfig
	if err := vhdSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReconcileVHD(ctx, newClient(env.Logger), cfg, env.Logger)
}

type VHDClient interface {
	GetVHD(ctx context.Context, path string) (*hyperv.VHD, error)
	NewVHD(ctx context.Context, spec hyperv.VHDSpec) error
	ResizeVHD(ctx context.Context, path string, sizeBytes uint64) error
	RemoveVHD(ctx context.Context, path string) error
}

func ReconcileVHD(ctx context.Context, client VHDClient, cfg VHDConfig, logger logging.Logger) (module.Result, error) {
	if cfg.FixedSize && cfg.DynamicExpansion != nil && *cfg.DynamicExpansion {
		return module.Result{}, params.Invalid(errors.New("parameters are mutually exclusive: dynamicExpansion, fixedSize"))
	}
	adapter := &vhdAdapter{client: client, cfg: cfg}
	if cfg.Size != "" {
		size, err := hyperv.ParseSize(cfg.Size)
		if err != nil {
			return module.Result{}, params.Invalid(fmt.Errorf("size: %w", err))
		}
		adapter.size = size
	}

	outcome, err := reconcile.Reconcile[hyperv.VHD](ctx, reconcile.State(cfg.State), adapter)
	if err != nil {
		return module.Result{}, err
	}
	logging.OrDiscard(logger).Info("vhd reconciled", "path", cfg.Path, "action", outcome.Action, "diff", outcome.Diff.Fields)
	return module.Result{Changed: outcome.Changed, Key: "vhd", Data: outcome.Object}, nil
}

type vhdAdapter struct {
	client VHDClient
	cfg    VHDConfig
	size   uint64
}

func (a *vhdAdapter) fixed() bool {
	return a.cfg.FixedSize || (a.cfg.DynamicExpansion != nil && !*a.cfg.DynamicExpansion)
}

func (a *vhdAdapter) Lookup(ctx context.Context) (*hyperv.VHD, error) {
	return a.client.GetVHD(ctx, a.cfg.Path)
}

func (a *vhdAdapter) Create(ctx context.Context) (*hyperv.VHD, error) {
	if a.cfg.CloneVHD == "" && a.size == 0 {
		return nil, params.Invalid(errVHDSizeRequired)
	}
	err := a.client.NewVHD(ctx, hyperv.VHDSpec{
		Path:      a.cfg.Path,
		SizeBytes: a.size,
		Fixed:     a.fixed(),
		Source:    a.cfg.CloneVHD,
	})
	if err != nil {
		return nil, err
	}
	vhd, err := a.reread(ctx)
	if err != nil {
		return nil, err
	}
	if a.cfg.CloneVHD != "" && !a.Diff(vhd).Empty() {
		return a.Update(ctx, vhd, reconcile.Diff{})
	}
	return vhd, nil
}

// Diff only considers size; the disk type cannot change in place.
func (a *vhdAdapter) Diff(observed *hyperv.VHD) reconcile.Diff {
	var d reconcile.Diff
	if a.size > 0 && a.size != observed.Size {
		d.Add("size")
	}
	return d
}

func (a *vhdAdapter) Update(ctx context.Context, _ *hyperv.VHD, _ reconcile.Diff) (*hyperv.VHD, error) {
	if err := a.client.ResizeVHD(ctx, a.cfg.Path, a.size); err != nil {
		return nil, err
	}
	return a.reread(ctx)
}

func (a *vhdAdapter) Delete(ctx context.Context, observed *hyperv.VHD) error {
	if observed.Attached {
		return params.Invalid(fmt.Errorf("vhd %s is attached to a vm", a.cfg.Path))
	}
	return a.client.RemoveVHD(ctx, a.cfg.Path)
}

func (a *vhdAdapter) reread(ctx context.Context) (*hyperv.VHD, error) {
	vhd, err := a.client.GetVHD(ctx, a.cfg.Path)
	if err != nil {
		return nil, err
	}
	if vhd == nil {
		return nil, fmt.Errorf("vhd %s not found after applying changes", a.cfg.Path)
	}
	return vhd, nil
}
