package hyperv_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/larivierec/infra-modules/pkg/hyperv"
	"github.com/larivierec/infra-modules/pkg/hyperv/hypervtest"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestClient_GetVM(t *testing.T) {
	exec := &hypervtest.Executor{}
	exec.On("Get-VM -Name 'web01'", `{"name":"web01","state":"Running","generation":2,"processor_count":4,"memory_startup":4294967296,"switch_name":"VMNetwork"}`)
	client := hyperv.NewClient(exec, nil)

	vm, err := client.GetVM(context.Background(), "web01")
	assert.NilError(t, err)
	assert.Equal(t, vm.State, hyperv.VMRunning)
	assert.Equal(t, vm.ProcessorCount, 4)
	assert.Equal(t, vm.MemoryStartup, uint64(4<<30))

	missing, err := client.GetVM(context.Background(), "db01")
	assert.NilError(t, err)
	assert.Assert(t, missing == nil)
}

func TestClient_GetVMBadOutput(t *testing.T) {
	exec := &hypervtest.Executor{}
	exec.On("Get-VM", "WARNING: not json")

	_, err := hyperv.NewClient(exec, nil).GetVM(context.Background(), "web01")
	assert.ErrorContains(t, err, "error decoding powershell output")
}

func TestClient_NewVM(t *testing.T) {
	exec := &hypervtest.Executor{}
	err := hyperv.NewClient(exec, nil).NewVM(context.Background(), hyperv.VMSpec{
		Name:           "my-vm",
		Generation:     2,
		MemoryBytes:    4 << 30,
		ProcessorCount: 4,
		SwitchName:     "VMNetwork",
		DiskPath:       `C:\Temp\my_vm.vhdx`,
		DiskSizeBytes:  10 << 30,
	})
	assert.NilError(t, err)

	scripts := exec.Scripts()
	assert.Equal(t, len(scripts), 1)
	assert.Check(t, is.Contains(scripts[0], `if (Test-Path -LiteralPath 'C:\Temp\my_vm.vhdx')`))
	assert.Check(t, is.Contains(scripts[0], "New-VM -Name 'my-vm' -Generation 2 -MemoryStartupBytes 4294967296 -SwitchName 'VMNetwork' -NewVHDPath"))
	assert.Check(t, is.Contains(scripts[0], "-NewVHDSizeBytes 10737418240"))
	assert.Check(t, is.Contains(scripts[0], "Set-VMProcessor -VMName 'my-vm' -Count 4"))
}

func TestClient_NewVMWithoutDisk(t *testing.T) {
	exec := &hypervtest.Executor{}
	assert.NilError(t, hyperv.NewClient(exec, nil).NewVM(context.Background(), hyperv.VMSpec{Name: "old-vm", Generation: 1}))
	assert.Equal(t, exec.Scripts()[0], "New-VM -Name 'old-vm' -Generation 1 -NoVHD | Out-Null")
}

func TestClient_SetVM(t *testing.T) {
	exec := &hypervtest.Executor{}
	client := hyperv.NewClient(exec, nil)
	nested := true

	assert.NilError(t, client.SetVM(context.Background(), "web01", hyperv.VMSettings{}))
	assert.Equal(t, len(exec.Scripts()), 0)

	assert.NilError(t, client.SetVM(context.Background(), "web01", hyperv.VMSettings{ProcessorCount: 2, NestedVirtualization: &nested}))
	assert.Equal(t, exec.Scripts()[0],
		"Set-VM -Name 'web01' -ProcessorCount 2; Set-VMProcessor -VMName 'web01' -ExposeVirtualizationExtensions $true")
}

func TestClient_RemoveVM(t *testing.T) {
	exec := &hypervtest.Executor{}
	client := hyperv.NewClient(exec, nil)

	assert.NilError(t, client.RemoveVM(context.Background(), "web01", true))
	assert.Equal(t, exec.Scripts()[0], "Stop-VM -Name 'web01' -TurnOff -Force; Remove-VM -Name 'web01' -Force")
}

func TestClient_VHD(t *testing.T) {
	exec := &hypervtest.Executor{}
	exec.On("Get-VHD", `{"path":"C:\\Temp\\a.vhdx","format":"VHDX","type":"Dynamic","size":1073741824}`)
	client := hyperv.NewClient(exec, nil)
	ctx := context.Background()

	vhd, err := client.GetVHD(ctx, `C:\Temp\a.vhdx`)
	assert.NilError(t, err)
	assert.Equal(t, vhd.Type, "Dynamic")
	assert.Equal(t, vhd.Size, uint64(1<<30))

	assert.NilError(t, client.NewVHD(ctx, hyperv.VHDSpec{Path: `C:\Temp\b.vhdx`, SizeBytes: 1 << 30, Fixed: true}))
	assert.NilError(t, client.NewVHD(ctx, hyperv.VHDSpec{Path: `C:\Temp\c.vhdx`, Source: `C:\Temp\a.vhdx`}))
	assert.NilError(t, client.RemoveVHD(ctx, `C:\Temp\c.vhdx`))

	assert.DeepEqual(t, exec.Commands(), []string{
		`New-VHD -Path 'C:\Temp\b.vhdx' -SizeBytes 1073741824 -Fixed | Out-Null`,
		`Copy-Item -LiteralPath 'C:\Temp\a.vhdx' -Destination 'C:\Temp\c.vhdx'`,
		`Remove-Item -LiteralPath 'C:\Temp\c.vhdx'`,
	})
}

func TestClient_VMSwitch(t *testing.T) {
	exec := &hypervtest.Executor{}
	client := hyperv.NewClient(exec, nil)
	ctx := context.Background()

	assert.NilError(t, client.NewVMSwitch(ctx, hyperv.VMSwitchSpec{Name: "VMNetwork", AdapterName: "Ethernet Adapter 1", AllowManagementOS: true}))
	assert.NilError(t, client.NewVMSwitch(ctx, hyperv.VMSwitchSpec{Name: "Lab", SwitchType: hyperv.SwitchPrivate}))
	allow := false
	assert.NilError(t, client.SetVMSwitch(ctx, "VMNetwork", hyperv.VMSwitchSettings{AllowManagementOS: &allow}))

	assert.DeepEqual(t, exec.Commands(), []string{
		"New-VMSwitch -Name 'VMNetwork' -NetAdapterName 'Ethernet Adapter 1' -AllowManagementOS $true | Out-Null",
		"New-VMSwitch -Name 'Lab' -SwitchType Private | Out-Null",
		"Set-VMSwitch -Name 'VMNetwork' -AllowManagementOS $false",
	})
}

func TestClient_ErrorsAreWrapped(t *testing.T) {
	exec := &hypervtest.Executor{}
	exec.Fail("Remove-VMSwitch", errors.New("switch in use"))

	err := hyperv.NewClient(exec, nil).RemoveVMSwitch(context.Background(), "VMNetwork")
	assert.ErrorContains(t, err, "failed to remove vmswitch VMNetwork: switch in use")
	assert.Assert(t, strings.HasPrefix(exec.Scripts()[0], "Remove-VMSwitch -Name 'VMNetwork'"))
}
