package virt

import (
	"context"
	"strings"
	"testing"

	"github.com/larivierec/infra-modules/pkg/hyperv"
	"github.com/larivierec/infra-modules/pkg/hyperv/hypervtest"
	"github.com/larivierec/infra-modules/pkg/module"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func fakeHost(t *testing.T) *hypervtest.Executor {
	t.Helper()
	exec := &hypervtest.Executor{}
	old := newExecutor
	newExecutor = func() hyperv.Executor { return exec }
	t.Cleanup(func() { newExecutor = old })
	return exec
}

func run(t *testing.T, name string, raw map[string]any) (module.Result, error) {
	t.Helper()
	m := module.Get(name)
	assert.Assert(t, m != nil, "module %s not registered", name)
	return m.Run(context.Background(), module.Env{}, raw)
}

const (
	offVM     = `{"name":"my-vm","state":"Off","generation":2,"processor_count":4,"memory_startup":4294967296,"switch_name":"VMNetwork"}`
	runningVM = `{"name":"my-vm","state":"Running","generation":2,"processor_count":4,"memory_startup":4294967296,"switch_name":"VMNetwork"}`
)

func TestVM_Create(t *testing.T) {
	exec := fakeHost(t)
	exec.Once("Get-VM -Name 'my-vm'", "")
	exec.On("Get-VM -Name 'my-vm'", offVM)

	res, err := run(t, "hyperv.vm", map[string]any{
		"name": "my-vm", "memory": "4GB", "cpu": 4, "networkSwitch": "VMNetwork",
		"diskSize": "10GB", "diskPath": `C:\Temp\my_vm.vhdx`,
	})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.Equal(t, res.Data.(*hyperv.VM).ProcessorCount, 4)

	commands := exec.Commands()
	assert.Equal(t, len(commands), 1)
	assert.Check(t, is.Contains(commands[0], "New-VM -Name 'my-vm' -Generation 2 -MemoryStartupBytes 4294967296 -SwitchName 'VMNetwork'"))
	assert.Check(t, is.Contains(commands[0], "-NewVHDSizeBytes 10737418240"))
	assert.Check(t, is.Len(exec.Scripts(), 3))
}

func TestVM_ParameterNamesIgnoreCase(t *testing.T) {
	exec := fakeHost(t)
	exec.Once("Get-VM -Name 'mini-vm'", "")
	exec.On("Get-VM -Name 'mini-vm'", `{"name":"mini-vm","state":"Off","generation":2,"processor_count":2,"memory_startup":268435456}`)

	res, err := run(t, "hyperv.vm", map[string]any{
		"name": "mini-vm", "state": "present", "memory": "256MB", "cpu": 2, "diskpath": `C:\Temp\mini_vm.vhdx`,
	})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)

	commands := exec.Commands()
	assert.Equal(t, len(commands), 1)
	assert.Check(t, is.Contains(commands[0], `-VHDPath 'C:\Temp\mini_vm.vhdx'`))
}

func TestVM_CreateNotFoundAfterwards(t *testing.T) {
	fakeHost(t)

	_, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm"})
	assert.ErrorContains(t, err, "vm my-vm not found after applying changes")
}

func TestVM_PresentIsIdempotent(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VM -Name 'my-vm'", offVM)

	res, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "memory": "4GB", "cpu": 4, "networkSwitch": "VMNetwork"})
	assert.NilError(t, err)
	assert.Assert(t, !res.Changed)
	assert.Check(t, is.Len(exec.Commands(), 0))
}

func TestVM_UpdateOnlyDifferences(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VM -Name 'my-vm'", offVM)

	res, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "cpu": 8, "memory": "4GB", "nestedVirtualization": true})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{
		"Set-VM -Name 'my-vm' -ProcessorCount 8; Set-VMProcessor -VMName 'my-vm' -ExposeVirtualizationExtensions $true",
	})
}

func TestVM_Started(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VM -Name 'my-vm'", offVM)

	res, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "state": "started"})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.Equal(t, res.Data.(*hyperv.VM).State, hyperv.VMRunning)
	assert.DeepEqual(t, exec.Commands(), []string{"Start-VM -Name 'my-vm'"})
}

func TestVM_StoppedWhenAlreadyOff(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VM -Name 'my-vm'", offVM)

	res, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "state": "stopped"})
	assert.NilError(t, err)
	assert.Assert(t, !res.Changed)
	assert.Check(t, is.Len(exec.Commands(), 0))
}

func TestVM_PoweredOffTurnsOff(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VM -Name 'my-vm'", runningVM)

	res, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "state": "poweredoff"})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{"Stop-VM -Name 'my-vm' -Force -TurnOff"})
}

func TestVM_AbsentRunningNeedsForce(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VM -Name 'my-vm'", runningVM)

	_, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "state": "absent"})
	assert.ErrorContains(t, err, "vm my-vm is Running, set force to remove it")
	assert.Check(t, is.Len(exec.Commands(), 0))

	res, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "state": "absent", "force": "yes"})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{"Stop-VM -Name 'my-vm' -TurnOff -Force; Remove-VM -Name 'my-vm' -Force"})
}

func TestVM_AbsentWhenMissing(t *testing.T) {
	exec := fakeHost(t)

	res, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "state": "absent"})
	assert.NilError(t, err)
	assert.Assert(t, !res.Changed)
	assert.Check(t, is.Len(exec.Commands(), 0))
}

func TestVM_InvalidMemory(t *testing.T) {
	exec := fakeHost(t)

	_, err := run(t, "hyperv.vm", map[string]any{"name": "my-vm", "memory": "lots"})
	assert.ErrorContains(t, err, `memory: invalid size "lots"`)
	assert.Equal(t, module.Category(err), module.ErrorUser)
	assert.Check(t, is.Len(exec.Scripts(), 0))
}

func TestVHD_RequiresSizeOrClone(t *testing.T) {
	fakeHost(t)

	_, err := run(t, "hyperv.vhd", map[string]any{"path": `C:\Temp\a.vhdx`})
	assert.ErrorIs(t, err, errVHDSizeRequired)
	assert.Equal(t, module.Category(err), module.ErrorUser)
}

func TestVHD_OversizedIsUserError(t *testing.T) {
	exec := fakeHost(t)

	_, err := run(t, "hyperv.vhd", map[string]any{"path": `C:\Temp\a.vhdx`, "size": "20000000TB"})
	assert.ErrorContains(t, err, "size: size \"20000000TB\" is too large")
	assert.Equal(t, module.Category(err), module.ErrorUser)
	assert.Check(t, is.Len(exec.Scripts(), 0))
}

func TestVHD_CloneResizes(t *testing.T) {
	exec := fakeHost(t)
	exec.Once("Get-VHD", "")
	exec.On("Get-VHD", `{"path":"C:\\Temp\\b.vhdx","format":"VHDX","type":"Dynamic","size":1073741824}`)

	res, err := run(t, "hyperv.vhd", map[string]any{"path": `C:\Temp\b.vhdx`, "cloneVHD": `C:\Temp\base.vhdx`, "size": "2GB"})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{
		`Copy-Item -LiteralPath 'C:\Temp\base.vhdx' -Destination 'C:\Temp\b.vhdx'`,
		`Resize-VHD -Path 'C:\Temp\b.vhdx' -SizeBytes 2147483648`,
	})
}

func TestVHD_MutuallyExclusive(t *testing.T) {
	exec := fakeHost(t)

	_, err := run(t, "hyperv.vhd", map[string]any{"path": `C:\Temp\a.vhdx`, "size": "1GB", "fixedSize": true, "dynamicExpansion": true})
	assert.ErrorContains(t, err, "mutually exclusive")
	assert.Equal(t, module.Category(err), module.ErrorUser)
	assert.Check(t, is.Len(exec.Scripts(), 0))
}

func TestVHD_Resize(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VHD", `{"path":"C:\\Temp\\a.vhdx","format":"VHDX","type":"Dynamic","size":1073741824}`)

	res, err := run(t, "hyperv.vhd", map[string]any{"path": `C:\Temp\a.vhdx`, "size": "2GB"})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{`Resize-VHD -Path 'C:\Temp\a.vhdx' -SizeBytes 2147483648`})

	res, err = run(t, "hyperv.vhd", map[string]any{"path": `C:\Temp\a.vhdx`, "size": "1GB"})
	assert.NilError(t, err)
	assert.Assert(t, !res.Changed)
}

func TestVHD_AbsentAttachedFails(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VHD", `{"path":"C:\\Temp\\a.vhdx","attached":true}`)

	_, err := run(t, "hyperv.vhd", map[string]any{"path": `C:\Temp\a.vhdx`, "state": "absent"})
	assert.ErrorContains(t, err, "is attached to a vm")
	assert.Equal(t, module.Category(err), module.ErrorUser)
	assert.Check(t, is.Len(exec.Commands(), 0))
}

func TestVMSwitch_ExternalManagementOS(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VMSwitch", `{"name":"VMNetwork","switch_type":"External","allow_management_os":false}`)

	res, err := run(t, "hyperv.vmswitch", map[string]any{"name": "VMNetwork", "adapterName": "Ethernet Adapter 1", "allowManagementOS": true})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{"Set-VMSwitch -Name 'VMNetwork' -AllowManagementOS $true"})
}

func TestVMSwitch_InternalIgnoresManagementOS(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VMSwitch", `{"name":"Lab","switch_type":"Internal","allow_management_os":true}`)

	res, err := run(t, "hyperv.vmswitch", map[string]any{"name": "Lab"})
	assert.NilError(t, err)
	assert.Assert(t, !res.Changed)
}

func TestVMSwitch_ChangeType(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VMSwitch", `{"name":"Lab","switch_type":"Internal","allow_management_os":true}`)

	res, err := run(t, "hyperv.vmswitch", map[string]any{"name": "Lab", "switchType": "Private"})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{"Set-VMSwitch -Name 'Lab' -SwitchType Private"})
}

func TestVMSwitch_Delete(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VMSwitch", `{"name":"Lab","switch_type":"Private"}`)

	res, err := run(t, "hyperv.vmswitch", map[string]any{"name": "Lab", "state": "absent"})
	assert.NilError(t, err)
	assert.Assert(t, res.Changed)
	assert.DeepEqual(t, exec.Commands(), []string{"Remove-VMSwitch -Name 'Lab' -Force"})
}

func TestInfoModules(t *testing.T) {
	exec := fakeHost(t)
	exec.On("Get-VM -Name 'my-vm'", offVM)

	res, err := run(t, "hyperv.vm_info", map[string]any{"name": "my-vm"})
	assert.NilError(t, err)
	assert.Equal(t, res.Key, "vm")
	assert.Equal(t, res.Data.(*hyperv.VM).State, hyperv.VMOff)

	res, err = run(t, "hyperv.vmswitch_info", map[string]any{"name": "missing"})
	assert.NilError(t, err)
	assert.Equal(t, res.Key, "vmswitch")
	assert.Assert(t, res.Data.(*hyperv.VMSwitch) == nil)

	_, err = run(t, "hyperv.vhd_info", map[string]any{})
	assert.ErrorContains(t, err, "missing required arguments: path")

	for _, s := range exec.Scripts() {
		assert.Assert(t, !strings.Contains(s, "New-"))
	}
}
