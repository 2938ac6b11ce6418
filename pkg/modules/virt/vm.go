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

const (
	vmPresent    = "present"
	vmAbsent     = "absent"
	vmStarted    = "started"
	vmStopped    = "stopped"
	vmPoweredOn  = "poweredon"
	vmPoweredOff = "poweredoff"
)

type VMConfig struct {
	Name                 string `param:"name"`
	State                string `param:"state"`
	Force                bool   `param:"force"`
	CPU                  int    `param:"cpu"`
	Memory               string `param:"memory"`
	Generation           int    `param:"generation"`
	NetworkSwitch        string `param:"networkSwitch"`
	DiskPath             string `param:"diskPath"`
	DiskSize             string `param:"diskSize"`
	BootDevice           string `param:"bootDevice"`
	CDROM                string `param:"cdrom"`
	LiveMigration        *bool  `param:"liveMigration"`
	NestedVirtualization *bool  `param:"nestedVirtualization"`
}

var vmSpec = params.Spec{
	{Name: "name", Required: true, Description: "Name of the VM"},
	{Name: "state", Default: vmPresent, Choices: []string{vmPresent, vmAbsent, vmStarted, vmStopped, vmPoweredOn, vmPoweredOff}, Description: "Desired state"},
	{Name: "force", Type: params.Bool, Default: false, Description: "Power off a running VM when removing or stopping it"},
	{Name: "cpu", Type: params.Int, Description: "Number of virtual processors"},
	{Name: "memory", Description: "Startup memory, e.g. 4GB"},
	{Name: "generation", Type: params.Int, Default: 2, Description: "VM generation, only used on creation"},
	{Name: "networkSwitch", Description: "Virtual switch to connect the first network adapter to"},
	{Name: "diskPath", Description: "VHDX to attach, created when missing and diskSize is set"},
	{Name: "diskSize", Description: "Size of the VHDX created at diskPath"},
	{Name: "bootDevice", Choices: []string{"Floppy", "CD", "IDE", "LegacyNetworkAdapter", "NetworkAdapter", "VHD"}, Description: "Boot device, only used on creation"},
	{Name: "cdrom", Description: "ISO image to insert"},
	{Name: "liveMigration", Type: params.Bool, Description: "Processor compatibility for migration"},
	{Name: "nestedVirtualization", Type: params.Bool, Description: "Expose virtualization extensions to the guest"},
}

type vmModule struct{}

func init() { module.Register(vmModule{}) }

func (vmModule) Name() string        { return collection + "vm" }
func (vmModule) Description() string { return "Manage Hyper-V virtual machines" }
func (vmModule) Spec() params.Spec   { return vmSpec }

func (vmModule) Run(ctx context.Context, env module.Env, raw map[string]any) (module.Result, error) {
	var cfg VMConfig
	if err := vmSpec.Decode(raw, &cfg); err != nil {
		return module.Result{}, err
	}
	return ReconcileVM(ctx, newClient(env.Logger), cfg, env.Logger)
}

type VMClient interface {
	GetVM(ctx context.Context, name string) (*hyperv.VM, error)
	NewVM(ctx context.Context, spec hyperv.VMSpec) error
	SetVM(ctx context.Context, name string, settings hyperv.VMSettings) error
	StartVM(ctx context.Context, name string) error
	StopVM(ctx context.Context, name string, turnOff bool) error
	RemoveVM(ctx context.Context, name string, turnOff bool) error
}

// ReconcileVM converges the VM's existence and configuration, then its power
// state for the started and stopped variants.
func ReconcileVM(ctx context.Context, client VMClient, cfg VMConfig, logger logging.Logger) (module.Result, error) {
	logger = logging.OrDiscard(logger)
	adapter, err := newVMAdapter(client, cfg)
	if err != nil {
		return module.Result{}, err
	}

	state := reconcile.Present
	if cfg.State == vmAbsent {
		state = reconcile.Absent
	}
	outcome, err := reconcile.Reconcile[hyperv.VM](ctx, state, adapter)
	if err != nil {
		return module.Result{}, err
	}
	logger.Info("vm reconciled", "name", cfg.Name, "action", outcome.Action, "diff", outcome.Diff.Fields)

	changed := outcome.Changed
	vm := outcome.Object
	if vm != nil && state == reconcile.Present {
		powered, err := convergePower(ctx, client, cfg, vm)
		if err != nil {
			return module.Result{}, err
		}
		if powered {
			logger.Info("vm power state changed", "name", cfg.Name, "state", vm.State)
			changed = true
		}
	}
	return module.Result{Changed: changed, Key: "vm", Data: vm}, nil
}

// convergePower starts or stops vm as cfg.State asks and records the new
// state on vm.
func convergePower(ctx context.Context, client VMClient, cfg VMConfig, vm *hyperv.VM) (bool, error) {
	switch cfg.State {
	case vmStarted, vmPoweredOn:
		if vm.State == hyperv.VMRunning {
			return false, nil
		}
		if err := client.StartVM(ctx, cfg.Name); err != nil {
			return false, err
		}
		vm.State = hyperv.VMRunning
		return true, nil
	case vmStopped, vmPoweredOff:
		if vm.State == hyperv.VMOff {
			return false, nil
		}
		if err := client.StopVM(ctx, cfg.Name, cfg.Force || cfg.State == vmPoweredOff); err != nil {
			return false, err
		}
		vm.State = hyperv.VMOff
		return true, nil
	}
	return false, nil
}

type vmAdapter struct {
	client   VMClient
	cfg      VMConfig
	memory   uint64
	diskSize uint64
}

func newVMAdapter(client VMClient, cfg VMConfig) (*vmAdapter, error) {
	a := &vmAdapter{client: client, cfg: cfg}
	var err error
	if cfg.Memory != "" {
		if a.memory, err = hyperv.ParseSize(cfg.Memory); err != nil {
			return nil, params.Invalid(fmt.Errorf("memory: %w", err))
		}
	}
	if cfg.DiskSize != "" {
		if a.diskSize, err = hyperv.ParseSize(cfg.DiskSize); err != nil {
			return nil, params.Invalid(fmt.Errorf("diskSize: %w", err))
		}
	}
	return a, nil
}

func (a *vmAdapter) Lookup(ctx context.Context) (*hyperv.VM, error) {
	return a.client.GetVM(ctx, a.cfg.Name)
}

func (a *vmAdapter) Create(ctx context.Context) (*hyperv.VM, error) {
	spec := hyperv.VMSpec{
		Name:           a.cfg.Name,
		Generation:     a.cfg.Generation,
		MemoryBytes:    a.memory,
		ProcessorCount: a.cfg.CPU,
		SwitchName:     a.cfg.NetworkSwitch,
		DiskPath:       a.cfg.DiskPath,
		DiskSizeBytes:  a.diskSize,
		BootDevice:     a.cfg.BootDevice,
		CDROM:          a.cfg.CDROM,
	}
	if a.cfg.LiveMigration != nil {
		spec.LiveMigration = *a.cfg.LiveMigration
	}
	if a.cfg.NestedVirtualization != nil {
		spec.NestedVirtualization = *a.cfg.NestedVirtualization
	}
	if err := a.client.NewVM(ctx, spec); err != nil {
		return nil, err
	}
	return a.reread(ctx)
}

func (a *vmAdapter) Diff(observed *hyperv.VM) reconcile.Diff {
	var d reconcile.Diff
	if a.cfg.CPU > 0 && a.cfg.CPU != observed.ProcessorCount {
		d.Add("cpu")
	}
	if a.memory > 0 && a.memory != observed.MemoryStartup {
		d.Add("memory")
	}
	d.Compare("networkSwitch", a.cfg.NetworkSwitch, observed.SwitchName)
	d.Compare("cdrom", a.cfg.CDROM, observed.DVDPath)
	if a.cfg.LiveMigration != nil && *a.cfg.LiveMigration != observed.LiveMigration {
		d.Add("liveMigration")
	}
	if a.cfg.NestedVirtualization != nil && *a.cfg.NestedVirtualization != observed.NestedVirtualization {
		d.Add("nestedVirtualization")
	}
	return d
}

func (a *vmAdapter) Update(ctx context.Context, _ *hyperv.VM, diff reconcile.Diff) (*hyperv.VM, error) {
	var settings hyperv.VMSettings
	if diff.Has("cpu") {
		settings.ProcessorCount = a.cfg.CPU
	}
	if diff.Has("memory") {
		settings.MemoryBytes = a.memory
	}
	if diff.Has("networkSwitch") {
		settings.SwitchName = a.cfg.NetworkSwitch
	}
	if diff.Has("cdrom") {
		settings.CDROM = a.cfg.CDROM
	}
	if diff.Has("liveMigration") {
		settings.LiveMigration = a.cfg.LiveMigration
	}
	if diff.Has("nestedVirtualization") {
		settings.NestedVirtualization = a.cfg.NestedVirtualization
	}
	if err := a.client.SetVM(ctx, a.cfg.Name, settings); err != nil {
		return nil, err
	}
	return a.reread(ctx)
}

func (a *vmAdapter) Delete(ctx context.Context, observed *hyperv.VM) error {
	running := observed.State != hyperv.VMOff
	if running && !a.cfg.Force {
		return params.Invalid(fmt.Errorf("vm %s is %s, set force to remove it", a.cfg.Name, observed.State))
	}
	return a.client.RemoveVM(ctx, a.cfg.Name, running)
}

func (a *vmAdapter) reread(ctx context.Context) (*hyperv.VM, error) {
	vm, err := a.client.GetVM(ctx, a.cfg.Name)
	if err != nil {
		return nil, err
	}
	if vm == nil {
		return nil, fmt.Errorf("vm %s not found after applying changes", a.cfg.Name)
	}
	return vm, nil
}
