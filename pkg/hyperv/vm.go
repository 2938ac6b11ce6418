package hyperv

import (
	"context"
	"fmt"
)

// VM power states as reported by Get-VM.
const (
	VMRunning = "Running"
	VMOff     = "Off"
)

type VM struct {
	Name                 string `json:"name"`
	ID                   string `json:"id"`
	State                string `json:"state"`
	Generation           int    `json:"generation"`
	ProcessorCount       int    `json:"processor_count"`
	MemoryStartup        uint64 `json:"memory_startup"`
	SwitchName           string `json:"switch_name"`
	DVDPath              string `json:"dvd_path"`
	NestedVirtualization bool   `json:"nested_virtualization"`
	LiveMigration        bool   `json:"live_migration"`
	Path                 string `json:"path"`
}

// VMSpec describes a VM to create. Zero values are left to Hyper-V defaults.
type VMSpec struct {
	Name       string
	Generation int
	// MemoryBytes is the startup memory.
	MemoryBytes    uint64
	ProcessorCount int
	SwitchName     string
	// DiskPath is attached when the file exists and created with DiskSizeBytes
	// otherwise.
	DiskPath             string
	DiskSizeBytes        uint64
	BootDevice           string
	CDROM                string
	LiveMigration        bool
	NestedVirtualization bool
}

// VMSettings lists the attributes to change on an existing VM. Zero values
// and nil pointers are left untouched.
type VMSettings struct {
	ProcessorCount       int
	MemoryBytes          uint64
	SwitchName           string
	CDROM                string
	LiveMigration        *bool
	NestedVirtualization *bool
}

func (s VMSettings) Empty() bool {
	return s == VMSettings{}
}

// GetVM returns nil, nil when no VM carries name.
func (c *Client) GetVM(ctx context.Context, name string) (*VM, error) {
	var s script
	s.add("$vm = Get-VM -Name %s -ErrorAction SilentlyContinue", Quote(name))
	s.add(`if ($vm) { $cpu = Get-VMProcessor -VM $vm; $nic = Get-VMNetworkAdapter -VM $vm | Select-Object -First 1; $dvd = Get-VMDvdDrive -VM $vm | Select-Object -First 1; ` +
		`[pscustomobject]@{ name = $vm.Name; id = $vm.Id.ToString(); state = $vm.State.ToString(); generation = $vm.Generation; ` +
		`processor_count = $vm.ProcessorCount; memory_startup = $vm.MemoryStartup; switch_name = [string]$nic.SwitchName; ` +
		`dvd_path = [string]$dvd.Path; nested_virtualization = [bool]$cpu.ExposeVirtualizationExtensions; ` +
		`live_migration = [bool]$cpu.CompatibilityForMigrationEnabled; path = $vm.Path } | ConvertTo-Json -Compress }`)

	var vm VM
	found, err := c.query(ctx, s.String(), &vm)
	if err != nil {
		return nil, fmt.Errorf("failed to get vm %s: %w", name, err)
	}
	if !found {
		return nil, nil
	}
	return &vm, nil
}

func (c *Client) NewVM(ctx context.Context, spec VMSpec) error {
	var s script
	args := fmt.Sprintf("-Name %s", Quote(spec.Name))
	if spec.Generation > 0 {
		args += fmt.Sprintf(" -Generation %d", spec.Generation)
	}
	if spec.MemoryBytes > 0 {
		args += fmt.Sprintf(" -MemoryStartupBytes %d", spec.MemoryBytes)
	}
	if spec.SwitchName != "" {
		args += fmt.Sprintf(" -SwitchName %s", Quote(spec.SwitchName))
	}
	if spec.BootDevice != "" {
		args += fmt.Sprintf(" -BootDevice %s", spec.BootDevice)
	}

	switch {
	case spec.DiskPath != "" && spec.DiskSizeBytes > 0:
		path := Quote(spec.DiskPath)
		s.add("if (Test-Path -LiteralPath %s) { New-VM %s -VHDPath %s | Out-Null } else { New-VM %s -NewVHDPath %s -NewVHDSizeBytes %d | Out-Null }",
			path, args, path, args, path, spec.DiskSizeBytes)
	case spec.DiskPath != "":
		s.add("New-VM %s -VHDPath %s | Out-Null", args, Quote(spec.DiskPath))
	default:
		s.add("New-VM %s -NoVHD | Out-Null", args)
	}

	if spec.ProcessorCount > 0 {
		s.add("Set-VMProcessor -VMName %s -Count %d", Quote(spec.Name), spec.ProcessorCount)
	}
	if spec.NestedVirtualization {
		s.add("Set-VMProcessor -VMName %s -ExposeVirtualizationExtensions $true", Quote(spec.Name))
	}
	if spec.LiveMigration {
		s.add("Set-VMProcessor -VMName %s -CompatibilityForMigrationEnabled $true", Quote(spec.Name))
	}
	if spec.CDROM != "" {
		s.add("Add-VMDvdDrive -VMName %s -Path %s", Quote(spec.Name), Quote(spec.CDROM))
	}

	if err := c.run(ctx, s.String()); err != nil {
		return fmt.Errorf("failed to create vm %s: %w", spec.Name, err)
	}
	return nil
}

func (c *Client) SetVM(ctx context.Context, name string, settings VMSettings) error {
	if settings.Empty() {
		return nil
	}
	vm := Quote(name)

	var s script
	set := ""
	if settings.ProcessorCount > 0 {
		set += fmt.Sprintf(" -ProcessorCount %d", settings.ProcessorCount)
	}
	if settings.MemoryBytes > 0 {
		set += fmt.Sprintf(" -MemoryStartupBytes %d", settings.MemoryBytes)
	}
	if set != "" {
		s.add("Set-VM -Name %s%s", vm, set)
	}
	if settings.NestedVirtualization != nil {
		s.add("Set-VMProcessor -VMName %s -ExposeVirtualizationExtensions %s", vm, boolLiteral(*settings.NestedVirtualization))
	}
	if settings.LiveMigration != nil {
		s.add("Set-VMProcessor -VMName %s -CompatibilityForMigrationEnabled %s", vm, boolLiteral(*settings.LiveMigration))
	}
	if settings.SwitchName != "" {
		sw := Quote(settings.SwitchName)
		s.add("if (Get-VMNetworkAdapter -VMName %s) { Connect-VMNetworkAdapter -VMName %s -SwitchName %s } else { Add-VMNetworkAdapter -VMName %s -SwitchName %s }",
			vm, vm, sw, vm, sw)
	}
	if settings.CDROM != "" {
		iso := Quote(settings.CDROM)
		s.add("if (Get-VMDvdDrive -VMName %s) { Set-VMDvdDrive -VMName %s -Path %s } else { Add-VMDvdDrive -VMName %s -Path %s }",
			vm, vm, iso, vm, iso)
	}

	if err := c.run(ctx, s.String()); err != nil {
		return fmt.Errorf("failed to update vm %s: %w", name, err)
	}
	return nil
}

func (c *Client) StartVM(ctx context.Context, name string) error {
	if err := c.run(ctx, "Start-VM -Name "+Quote(name)); err != nil {
		return fmt.Errorf("failed to start vm %s: %w", name, err)
	}
	return nil
}

// StopVM shuts the guest down, or powers it off when turnOff is set.
func (c *Client) StopVM(ctx context.Context, name string, turnOff bool) error {
	cmd := "Stop-VM -Name " + Quote(name) + " -Force"
	if turnOff {
		cmd += " -TurnOff"
	}
	if err := c.run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to stop vm %s: %w", name, err)
	}
	return nil
}

// RemoveVM deletes the VM configuration; disks are left on the host. A
// running VM is powered off first when turnOff is set.
func (c *Client) RemoveVM(ctx context.Context, name string, turnOff bool) error {
	var s script
	if turnOff {
		s.add("Stop-VM -Name %s -TurnOff -Force", Quote(name))
	}
	s.add("Remove-VM -Name %s -Force", Quote(name))
	if err := c.run(ctx, s.String()); err != nil {
		return fmt.Errorf("failed to remove vm %s: %w", name, err)
	}
	return nil
}
